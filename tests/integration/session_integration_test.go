//go:build integration

package integration

import (
    "context"
    "errors"
    "fmt"
    "net"
    "testing"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/bootstrap"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
    "github.com/amirimatin/go-raftclient/pkg/session"
    "github.com/amirimatin/go-raftclient/pkg/transport"
    rpcgrpc "github.com/amirimatin/go-raftclient/pkg/transport/grpc"
    "github.com/amirimatin/go-raftclient/pkg/transport/httpjson"
)

// fakeNode plays a consensus server for the client side under test: one node
// acts as leader and services requests, the others redirect to it.
type fakeNode struct {
    id     string
    srv    transport.RPCServer
    leader func() string // id of the current leader
    nodes  func() map[string]string // id -> addr of all live nodes
}

func (n *fakeNode) peersEntries() []transport.PeerEntry {
    m := n.nodes()
    out := make([]transport.PeerEntry, 0, len(m))
    for id, addr := range m {
        a := addr
        out = append(out, transport.PeerEntry{ID: id, Addr: &a})
    }
    return out
}

func (n *fakeNode) reply(rpc transport.RPCMessage) transport.ClientReply {
    leaderID := n.leader()
    if n.id == leaderID {
        return transport.ClientReply{RPC: rpc, Success: true}
    }
    info := &transport.NotLeaderEntry{Peers: n.peersEntries()}
    if addr, ok := n.nodes()[leaderID]; ok {
        a := addr
        info.SuggestedLeader = &transport.PeerEntry{ID: leaderID, Addr: &a}
    }
    return transport.ClientReply{RPC: rpc, Success: false, NotLeader: info}
}

func (n *fakeNode) submit(ctx context.Context, req transport.ClientRequest) (transport.ClientReply, error) {
    return n.reply(req.RPC), nil
}

func (n *fakeNode) setConf(ctx context.Context, req transport.SetConfigurationRequest) (transport.ClientReply, error) {
    return n.reply(req.RPC), nil
}

type cluster struct {
    nodes   map[string]*fakeNode
    addrs   map[string]string
    leader  string
}

func startCluster(t *testing.T, ctx context.Context, proto string, ids ...string) *cluster {
    t.Helper()
    c := &cluster{nodes: map[string]*fakeNode{}, addrs: map[string]string{}, leader: ids[0]}
    for _, id := range ids {
        n := &fakeNode{
            id:     id,
            leader: func() string { return c.leader },
            nodes:  func() map[string]string { return c.addrs },
        }
        var srv transport.RPCServer
        switch proto {
        case "grpc":
            srv = rpcgrpc.NewServer("127.0.0.1:0")
        default:
            srv = httpjson.NewServer("127.0.0.1:0", nil)
        }
        if err := srv.Start(ctx, n.submit, n.setConf); err != nil {
            t.Fatalf("start %s: %v", id, err)
        }
        n.srv = srv
        c.nodes[id] = n
        c.addrs[id] = srv.Addr()
    }
    return c
}

func (c *cluster) seedsCSV() string {
    out := ""
    for id, addr := range c.addrs {
        if out != "" { out += "," }
        out += fmt.Sprintf("%s=%s", id, addr)
    }
    return out
}

func newSession(t *testing.T, c *cluster, proto string) (*session.Session, func()) {
    t.Helper()
    sess, cleanup, err := bootstrap.Build(bootstrap.Config{
        RequestorID: "it-client",
        Proto:       proto,
        CallTimeout: 2 * time.Second,
        SeedsCSV:    c.seedsCSV(),
        MaxAttempts: 6,
        Backoff:     20 * time.Millisecond,
    })
    if err != nil { t.Fatalf("bootstrap: %v", err) }
    return sess, cleanup
}

func testRedirectToLeader(t *testing.T, proto string) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    c := startCluster(t, ctx, proto, "s1", "s2", "s3")
    c.leader = "s3"

    sess, cleanup := newSession(t, c, proto)
    defer cleanup()

    reply, err := sess.Submit(ctx, protocol.NewMessage([]byte("write-1")))
    if err != nil { t.Fatalf("submit: %v", err) }
    if !reply.Success { t.Fatalf("expected success: %#v", reply) }
    if reply.Envelope.ReplierID != "s3" {
        t.Fatalf("expected leader s3 to answer, got %s", reply.Envelope.ReplierID)
    }
    if leader, ok := sess.Leader(); !ok || leader.ID != "s3" {
        t.Fatalf("leader hint not cached: %v %v", leader, ok)
    }
}

func TestRedirectToLeaderHTTP(t *testing.T) { testRedirectToLeader(t, "http") }
func TestRedirectToLeaderGRPC(t *testing.T) { testRedirectToLeader(t, "grpc") }

func TestLeaderChangeBetweenCalls(t *testing.T) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    c := startCluster(t, ctx, "http", "s1", "s2", "s3")
    c.leader = "s1"

    sess, cleanup := newSession(t, c, "http")
    defer cleanup()

    reply, err := sess.Submit(ctx, protocol.NewMessage([]byte("a")))
    if err != nil { t.Fatalf("first submit: %v", err) }
    if reply.Envelope.ReplierID != "s1" { t.Fatalf("expected s1, got %s", reply.Envelope.ReplierID) }

    // Leadership moves; the cached hint goes stale and must be recovered
    // from the redirect of the old leader's successor view.
    c.leader = "s2"
    reply, err = sess.Submit(ctx, protocol.NewMessage([]byte("b")))
    if err != nil { t.Fatalf("second submit: %v", err) }
    if reply.Envelope.ReplierID != "s2" { t.Fatalf("expected s2, got %s", reply.Envelope.ReplierID) }
}

func TestSetConfigurationFollowsRedirect(t *testing.T) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    c := startCluster(t, ctx, "http", "s1", "s2")
    c.leader = "s2"

    sess, cleanup := newSession(t, c, "http")
    defer cleanup()

    newPeers := []protocol.Peer{
        protocol.NewPeerWithAddr("s1", c.addrs["s1"]),
        protocol.NewPeerWithAddr("s2", c.addrs["s2"]),
        protocol.NewPeerWithAddr("s4", "127.0.0.1:9524"),
    }
    reply, err := sess.SetConfiguration(ctx, newPeers)
    if err != nil { t.Fatalf("set configuration: %v", err) }
    if !reply.Success || reply.Envelope.ReplierID != "s2" {
        t.Fatalf("unexpected reply: %#v", reply)
    }
}

func TestDeadNodeIsSkipped(t *testing.T) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()
    c := startCluster(t, ctx, "http", "s1", "s2")
    c.leader = "s2"
    // A peer that refuses connections is part of the seed list.
    c.addrs["s0"] = "127.0.0.1:1"

    sess, cleanup, err := bootstrap.Build(bootstrap.Config{
        RequestorID: "it-client",
        CallTimeout: 1 * time.Second,
        SeedsCSV:    fmt.Sprintf("s0=127.0.0.1:1,s1=%s,s2=%s", c.nodes["s1"].srv.Addr(), c.nodes["s2"].srv.Addr()),
        MaxAttempts: 6,
        Backoff:     20 * time.Millisecond,
    })
    if err != nil { t.Fatalf("bootstrap: %v", err) }
    defer cleanup()

    reply, err := sess.Submit(ctx, protocol.NewMessage([]byte("x")))
    if err != nil { t.Fatalf("submit: %v", err) }
    if !reply.Success || reply.Envelope.ReplierID != "s2" {
        t.Fatalf("unexpected reply: %#v", reply)
    }
}

func TestAllNodesDownExhaustsRetries(t *testing.T) {
    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    sess, cleanup, err := bootstrap.Build(bootstrap.Config{
        RequestorID: "it-client",
        CallTimeout: 500 * time.Millisecond,
        SeedsCSV:    "s1=127.0.0.1:1,s2=127.0.0.1:2",
        MaxAttempts: 3,
        Backoff:     10 * time.Millisecond,
    })
    if err != nil { t.Fatalf("bootstrap: %v", err) }
    defer cleanup()

    _, err = sess.Submit(ctx, protocol.NewMessage([]byte("x")))
    if !errors.Is(err, session.ErrRetriesExhausted) {
        t.Fatalf("expected ErrRetriesExhausted, got %v", err)
    }
    // The dial failure keeps its identity through the retry wrapper.
    var ne net.Error
    if !errors.As(err, &ne) {
        t.Fatalf("expected a net error in the chain, got %v", err)
    }
}
