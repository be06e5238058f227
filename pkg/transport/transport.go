package transport

import "context"

// Wire-level request/reply shapes shared by all transport implementations
// (HTTP/JSON and gRPC with a JSON codec). Using plain structs with json tags
// avoids import cycles on protocol types and keeps codegen out of the build.

// RPCMessage is the routing envelope present on every request and echoed on
// every reply.
type RPCMessage struct {
    RequestorID string `json:"requestorId"`
    ReplierID   string `json:"replierId"`
}

// PeerEntry encodes a cluster member. Addr is omitted entirely when the peer
// carries no address; an empty string is a present-but-empty address.
type PeerEntry struct {
    ID   string  `json:"id"`
    Addr *string `json:"addr,omitempty"`
}

// ClientRequest is the wire form of a command submission. Message is always
// present; a zero-length payload encodes as an empty value, never as null.
type ClientRequest struct {
    RPC     RPCMessage `json:"rpc"`
    Message []byte     `json:"message"`
}

// SetConfigurationRequest is the wire form of a membership change. Peers is
// the complete desired membership, in order.
type SetConfigurationRequest struct {
    RPC   RPCMessage  `json:"rpc"`
    Peers []PeerEntry `json:"peers"`
}

// NotLeaderEntry is the redirect payload of a reply from a non-leader.
type NotLeaderEntry struct {
    SuggestedLeader *PeerEntry  `json:"suggestedLeader,omitempty"`
    Peers           []PeerEntry `json:"peers"`
}

// ClientReply is the wire form of a reply. NotLeader is omitted for replies
// from the leader.
type ClientReply struct {
    RPC       RPCMessage      `json:"rpc"`
    Success   bool            `json:"success"`
    NotLeader *NotLeaderEntry `json:"notLeader,omitempty"`
}

// RPCClient performs protocol calls against a single target address per call.
// Implementations carry bytes and transport faults only; outcome
// classification and envelope validation happen above, in pkg/client.
// Calls block until a reply or a transport fault is available; deadlines and
// cancellation are supplied by the caller through ctx.
type RPCClient interface {
    SubmitRequest(ctx context.Context, addr string, req ClientRequest) (ClientReply, error)
    SetConfiguration(ctx context.Context, addr string, req SetConfigurationRequest) (ClientReply, error)
}

// SubmitFunc handles a command submission on the server side.
type SubmitFunc func(ctx context.Context, req ClientRequest) (ClientReply, error)

// SetConfigurationFunc handles a membership change on the server side.
type SetConfigurationFunc func(ctx context.Context, req SetConfigurationRequest) (ClientReply, error)

// RPCServer exposes the client protocol endpoints of one cluster member.
type RPCServer interface {
    Start(ctx context.Context, submit SubmitFunc, setConf SetConfigurationFunc) error
    Addr() string
    Stop(ctx context.Context) error
}
