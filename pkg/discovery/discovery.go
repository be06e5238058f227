package discovery

import "github.com/amirimatin/go-raftclient/pkg/protocol"

// Provider abstracts how the initial cluster peer set is provided to a
// client session. The protocol itself does not define peer discovery; these
// backends are the injection point for whatever the deployment uses.
// Future implementations may include service registries or dynamic sources.
type Provider interface {
    Peers() []protocol.Peer
}
