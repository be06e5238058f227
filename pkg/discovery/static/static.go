package static

import (
    "strings"

    "github.com/amirimatin/go-raftclient/pkg/discovery"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
)

type staticPeers struct {
    peers []protocol.Peer
}

func (s *staticPeers) Peers() []protocol.Peer { return append([]protocol.Peer(nil), s.peers...) }

// New returns a Provider that always returns the given peers.
func New(peers ...protocol.Peer) discovery.Provider {
    cleaned := make([]protocol.Peer, 0, len(peers))
    for _, p := range peers {
        if p.ID != "" {
            cleaned = append(cleaned, p)
        }
    }
    return &staticPeers{peers: cleaned}
}

// ParseEntry converts one "id=host:port" entry into a peer. A bare
// "host:port" is accepted too; the address then doubles as the ID.
func ParseEntry(entry string) (protocol.Peer, bool) {
    entry = strings.TrimSpace(entry)
    if entry == "" {
        return protocol.Peer{}, false
    }
    if id, addr, ok := strings.Cut(entry, "="); ok {
        id = strings.TrimSpace(id)
        addr = strings.TrimSpace(addr)
        if id == "" {
            return protocol.Peer{}, false
        }
        if addr == "" {
            return protocol.NewPeer(protocol.PeerID(id)), true
        }
        return protocol.NewPeerWithAddr(protocol.PeerID(id), addr), true
    }
    return protocol.NewPeerWithAddr(protocol.PeerID(entry), entry), true
}

// Parse converts a comma-separated list of entries into peers.
func Parse(csv string) []protocol.Peer {
    if csv == "" {
        return nil
    }
    parts := strings.Split(csv, ",")
    out := make([]protocol.Peer, 0, len(parts))
    for _, p := range parts {
        if peer, ok := ParseEntry(p); ok {
            out = append(out, peer)
        }
    }
    return out
}
