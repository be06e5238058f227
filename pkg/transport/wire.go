package transport

import "github.com/amirimatin/go-raftclient/pkg/protocol"

// Conversions between protocol value objects and their wire shapes. These are
// total in both directions: decoding never invents domain information, and
// encoding never drops any.

// ToWirePeer encodes a peer, preserving address absence.
func ToWirePeer(p protocol.Peer) PeerEntry {
    e := PeerEntry{ID: string(p.ID)}
    if addr, ok := p.Address(); ok {
        a := addr
        e.Addr = &a
    }
    return e
}

// FromWirePeer decodes a peer entry. A missing addr field stays absent.
func FromWirePeer(e PeerEntry) protocol.Peer {
    if e.Addr == nil {
        return protocol.NewPeer(protocol.PeerID(e.ID))
    }
    return protocol.NewPeerWithAddr(protocol.PeerID(e.ID), *e.Addr)
}

// ToWirePeers encodes a peer list in order.
func ToWirePeers(peers []protocol.Peer) []PeerEntry {
    out := make([]PeerEntry, len(peers))
    for i, p := range peers {
        out[i] = ToWirePeer(p)
    }
    return out
}

// FromWirePeers decodes a peer list in order.
func FromWirePeers(entries []PeerEntry) []protocol.Peer {
    out := make([]protocol.Peer, len(entries))
    for i, e := range entries {
        out[i] = FromWirePeer(e)
    }
    return out
}

// ToWireRPC encodes the routing envelope.
func ToWireRPC(e protocol.Envelope) RPCMessage {
    return RPCMessage{RequestorID: string(e.RequestorID), ReplierID: string(e.ReplierID)}
}

// FromWireRPC decodes the routing envelope.
func FromWireRPC(m RPCMessage) protocol.Envelope {
    return protocol.Envelope{RequestorID: protocol.PeerID(m.RequestorID), ReplierID: protocol.PeerID(m.ReplierID)}
}

// ToWireClientRequest encodes a command submission. The message payload is
// always materialized, so a zero-length message stays a present, empty value.
func ToWireClientRequest(r protocol.ClientRequest) ClientRequest {
    return ClientRequest{RPC: ToWireRPC(r.Envelope), Message: r.Message.Content()}
}

// FromWireClientRequest decodes a command submission.
func FromWireClientRequest(w ClientRequest) protocol.ClientRequest {
    return protocol.ClientRequest{Envelope: FromWireRPC(w.RPC), Message: protocol.NewMessage(w.Message)}
}

// ToWireSetConfigurationRequest encodes a membership change.
func ToWireSetConfigurationRequest(r protocol.SetConfigurationRequest) SetConfigurationRequest {
    return SetConfigurationRequest{RPC: ToWireRPC(r.Envelope), Peers: ToWirePeers(r.Peers)}
}

// FromWireSetConfigurationRequest decodes a membership change.
func FromWireSetConfigurationRequest(w SetConfigurationRequest) protocol.SetConfigurationRequest {
    return protocol.SetConfigurationRequest{Envelope: FromWireRPC(w.RPC), Peers: FromWirePeers(w.Peers)}
}

// ToWireReply encodes a reply, including the redirect payload when present.
func ToWireReply(r protocol.ClientReply) ClientReply {
    w := ClientReply{RPC: ToWireRPC(r.Envelope), Success: r.Success}
    if r.NotLeader != nil {
        nl := &NotLeaderEntry{Peers: ToWirePeers(r.NotLeader.Peers)}
        if r.NotLeader.SuggestedLeader != nil {
            sl := ToWirePeer(*r.NotLeader.SuggestedLeader)
            nl.SuggestedLeader = &sl
        }
        w.NotLeader = nl
    }
    return w
}

// FromWireReply decodes a reply. When a redirect payload is present, Success
// is normalized to false: a redirect and a serviced request are mutually
// exclusive outcomes.
func FromWireReply(w ClientReply) protocol.ClientReply {
    r := protocol.ClientReply{Envelope: FromWireRPC(w.RPC), Success: w.Success}
    if w.NotLeader != nil {
        nl := &protocol.NotLeaderInfo{Peers: FromWirePeers(w.NotLeader.Peers)}
        if w.NotLeader.SuggestedLeader != nil {
            sl := FromWirePeer(*w.NotLeader.SuggestedLeader)
            nl.SuggestedLeader = &sl
        }
        r.NotLeader = nl
        r.Success = false
    }
    return r
}
