package protocol

// NotLeaderInfo is the redirect payload of a reply from a server that is not
// the current leader. SuggestedLeader is nil when the contacted server does
// not know who the leader is (e.g., mid-election). Peers is the contacted
// server's current view of the membership, in order, so the caller can pick
// another target even without a suggestion.
type NotLeaderInfo struct {
    SuggestedLeader *Peer
    Peers           []Peer
}

// ClientReply is the outcome of a single round trip. Exactly one of three
// conditions holds:
//
//   - Success is true: the leader serviced the request.
//   - NotLeader is set: the contacted server is not the leader; Success is
//     false and the request was not serviced. This is a valid reply, not an
//     error.
//   - Success is false and NotLeader is nil: the leader serviced the request
//     and rejected it for application reasons opaque to this layer.
//
// Transport-level failures never produce a ClientReply; they surface as
// errors from the protocol client.
type ClientReply struct {
    Envelope  Envelope
    Success   bool
    NotLeader *NotLeaderInfo
}

// IsNotLeader reports whether the reply is a redirect.
func (r ClientReply) IsNotLeader() bool { return r.NotLeader != nil }

// Rejected reports whether the leader serviced the request and turned it
// down for domain reasons.
func (r ClientReply) Rejected() bool { return !r.Success && r.NotLeader == nil }
