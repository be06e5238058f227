package protocol

import "fmt"

// Envelope carries the routing metadata present on every request and echoed
// verbatim on every reply: who is asking and who is expected to answer.
type Envelope struct {
    RequestorID PeerID
    ReplierID   PeerID
}

// Equal reports field-wise equality of two envelopes.
func (e Envelope) Equal(o Envelope) bool { return e == o }

func (e Envelope) String() string {
    return fmt.Sprintf("%s->%s", e.RequestorID, e.ReplierID)
}

// Validate checks that both parties are named.
func (e Envelope) Validate() error {
    if e.RequestorID == "" {
        return fmt.Errorf("protocol: empty requestor id")
    }
    if e.ReplierID == "" {
        return fmt.Errorf("protocol: empty replier id")
    }
    return nil
}

// ClientRequest submits an opaque command to the cluster. The replier named
// in the envelope must be the server the caller actually contacts; whether
// that server is the leader is discovered from the reply.
type ClientRequest struct {
    Envelope Envelope
    Message  Message
}

// NewClientRequest builds a command submission from requestor to replier.
func NewClientRequest(requestor, replier PeerID, msg Message) ClientRequest {
    return ClientRequest{Envelope: Envelope{RequestorID: requestor, ReplierID: replier}, Message: msg}
}

// Validate checks the request is well-formed enough to put on the wire.
func (r ClientRequest) Validate() error { return r.Envelope.Validate() }

// SetConfigurationRequest proposes a full replacement of the cluster
// membership. Peers is the complete desired membership in order, not a delta;
// validation of quorum sizes is the server's concern.
type SetConfigurationRequest struct {
    Envelope Envelope
    Peers    []Peer
}

// NewSetConfigurationRequest builds a membership change submission.
func NewSetConfigurationRequest(requestor, replier PeerID, peers []Peer) SetConfigurationRequest {
    return SetConfigurationRequest{Envelope: Envelope{RequestorID: requestor, ReplierID: replier}, Peers: peers}
}

// Validate checks the request is well-formed enough to put on the wire. The
// peer list itself is passed through unchanged; only structural validity of
// the entries is checked here.
func (r SetConfigurationRequest) Validate() error {
    if err := r.Envelope.Validate(); err != nil {
        return err
    }
    for i, p := range r.Peers {
        if p.ID == "" {
            return fmt.Errorf("protocol: peer %d has empty id", i)
        }
    }
    return nil
}
