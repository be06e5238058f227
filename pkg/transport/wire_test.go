package transport

import (
    "encoding/json"
    "strings"
    "testing"

    "github.com/amirimatin/go-raftclient/pkg/protocol"
)

func TestPeerRoundTrip_WithAddress(t *testing.T) {
    p := protocol.NewPeerWithAddr("s1", "10.0.0.1:9000")
    got := FromWirePeer(ToWirePeer(p))
    if !got.Equal(p) {
        t.Fatalf("peer identity lost: got %v want %v", got, p)
    }
    addr, ok := got.Address()
    if !ok || addr != "10.0.0.1:9000" {
        t.Fatalf("address lost: ok=%v addr=%q", ok, addr)
    }
}

func TestPeerRoundTrip_AddressAbsentNotEmpty(t *testing.T) {
    p := protocol.NewPeer("s2")
    b, err := json.Marshal(ToWirePeer(p))
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if strings.Contains(string(b), "addr") {
        t.Fatalf("absent address must be omitted on the wire, got %s", b)
    }
    var e PeerEntry
    if err := json.Unmarshal(b, &e); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    got := FromWirePeer(e)
    if _, ok := got.Address(); ok {
        t.Fatalf("absent address decoded as present")
    }
}

func TestPeerRoundTrip_EmptyAddressStaysPresent(t *testing.T) {
    p := protocol.NewPeerWithAddr("s3", "")
    b, err := json.Marshal(ToWirePeer(p))
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    var e PeerEntry
    if err := json.Unmarshal(b, &e); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    addr, ok := FromWirePeer(e).Address()
    if !ok || addr != "" {
        t.Fatalf("present empty address lost: ok=%v addr=%q", ok, addr)
    }
}

func TestEmptyMessageFidelity(t *testing.T) {
    req := protocol.NewClientRequest("c1", "s1", protocol.NewMessage(nil))
    b, err := json.Marshal(ToWireClientRequest(req))
    if err != nil {
        t.Fatalf("marshal: %v", err)
    }
    if strings.Contains(string(b), `"message":null`) {
        t.Fatalf("empty message encoded as null: %s", b)
    }
    var w ClientRequest
    if err := json.Unmarshal(b, &w); err != nil {
        t.Fatalf("unmarshal: %v", err)
    }
    got := FromWireClientRequest(w)
    if !got.Message.Equal(protocol.NewMessage([]byte{})) {
        t.Fatalf("zero-length message did not round-trip")
    }
    if got.Message.Content() == nil {
        t.Fatalf("decoded content must not be nil")
    }
}

func TestClientRequestRoundTrip(t *testing.T) {
    req := protocol.NewClientRequest("c1", "s1", protocol.NewMessage([]byte("set x=1")))
    got := FromWireClientRequest(ToWireClientRequest(req))
    if got.Envelope != req.Envelope {
        t.Fatalf("envelope mismatch: got %v want %v", got.Envelope, req.Envelope)
    }
    if !got.Message.Equal(req.Message) {
        t.Fatalf("message mismatch")
    }
}

func TestSetConfigurationRoundTrip(t *testing.T) {
    peers := []protocol.Peer{
        protocol.NewPeerWithAddr("s1", "10.0.0.1:9000"),
        protocol.NewPeer("s2"),
        protocol.NewPeerWithAddr("s3", "10.0.0.3:9000"),
    }
    req := protocol.NewSetConfigurationRequest("c1", "s1", peers)
    got := FromWireSetConfigurationRequest(ToWireSetConfigurationRequest(req))
    if len(got.Peers) != 3 {
        t.Fatalf("peer count: got %d", len(got.Peers))
    }
    for i := range peers {
        if !got.Peers[i].Equal(peers[i]) {
            t.Fatalf("peer %d: got %v want %v", i, got.Peers[i], peers[i])
        }
    }
    if _, ok := got.Peers[1].Address(); ok {
        t.Fatalf("s2 address must stay absent")
    }
}

func TestReplyRoundTrip_Redirect(t *testing.T) {
    leader := protocol.NewPeerWithAddr("s1", "10.0.0.1:9000")
    reply := protocol.ClientReply{
        Envelope: protocol.Envelope{RequestorID: "c1", ReplierID: "s2"},
        NotLeader: &protocol.NotLeaderInfo{
            SuggestedLeader: &leader,
            Peers:           []protocol.Peer{leader, protocol.NewPeer("s2"), protocol.NewPeer("s3")},
        },
    }
    got := FromWireReply(ToWireReply(reply))
    if !got.IsNotLeader() {
        t.Fatalf("redirect lost")
    }
    if got.NotLeader.SuggestedLeader == nil || got.NotLeader.SuggestedLeader.ID != "s1" {
        t.Fatalf("suggested leader lost: %v", got.NotLeader.SuggestedLeader)
    }
    if len(got.NotLeader.Peers) != 3 {
        t.Fatalf("known peers lost: %v", got.NotLeader.Peers)
    }
}

func TestReplyRoundTrip_NoSuggestedLeader(t *testing.T) {
    reply := protocol.ClientReply{
        Envelope:  protocol.Envelope{RequestorID: "c1", ReplierID: "s2"},
        NotLeader: &protocol.NotLeaderInfo{Peers: []protocol.Peer{protocol.NewPeer("s1")}},
    }
    got := FromWireReply(ToWireReply(reply))
    if !got.IsNotLeader() || got.NotLeader.SuggestedLeader != nil {
        t.Fatalf("absent suggested leader did not round-trip: %+v", got.NotLeader)
    }
}

func TestFromWireReply_NormalizesSuccessOnRedirect(t *testing.T) {
    // A reply claiming both success and a redirect is contradictory; the
    // redirect wins and success is forced false.
    w := ClientReply{
        RPC:       RPCMessage{RequestorID: "c1", ReplierID: "s2"},
        Success:   true,
        NotLeader: &NotLeaderEntry{Peers: []PeerEntry{{ID: "s1"}}},
    }
    got := FromWireReply(w)
    if got.Success {
        t.Fatalf("success must be false when redirect present")
    }
    if !got.IsNotLeader() {
        t.Fatalf("redirect lost")
    }
}
