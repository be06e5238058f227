package protocol

import "fmt"

// PeerID uniquely identifies a cluster member. IDs are opaque strings chosen
// at deployment time; the protocol attaches no meaning to their contents.
type PeerID string

// Peer is the identity and (optionally) the advisory address of a cluster
// member. Addr is how the member can be reached over the wire transport; it
// may be nil when the address is resolved out-of-band. A nil Addr is distinct
// from an empty address string.
type Peer struct {
    ID   PeerID
    Addr *string
}

// NewPeer returns a peer with no address.
func NewPeer(id PeerID) Peer { return Peer{ID: id} }

// NewPeerWithAddr returns a peer reachable at addr (host:port).
func NewPeerWithAddr(id PeerID, addr string) Peer {
    return Peer{ID: id, Addr: &addr}
}

// Address returns the advisory address and whether one is set.
func (p Peer) Address() (string, bool) {
    if p.Addr == nil {
        return "", false
    }
    return *p.Addr, true
}

// Equal reports whether two peers refer to the same member. Peers compare by
// ID only; the address is advisory and does not participate in identity.
func (p Peer) Equal(o Peer) bool { return p.ID == o.ID }

func (p Peer) String() string {
    if addr, ok := p.Address(); ok {
        return fmt.Sprintf("%s(%s)", p.ID, addr)
    }
    return string(p.ID)
}

// PeerIDs returns the IDs of peers in order.
func PeerIDs(peers []Peer) []PeerID {
    out := make([]PeerID, len(peers))
    for i, p := range peers {
        out[i] = p.ID
    }
    return out
}

// FindPeer returns the first peer with the given ID, if present.
func FindPeer(peers []Peer, id PeerID) (Peer, bool) {
    for _, p := range peers {
        if p.ID == id {
            return p, true
        }
    }
    return Peer{}, false
}
