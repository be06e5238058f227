package session

import (
    "context"
    "errors"
    "fmt"
    "log"
    "sync"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/client"
    "github.com/amirimatin/go-raftclient/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-raftclient/pkg/observability/metrics"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
)

var (
    // ErrNoPeers is returned when the session has no reachable peer to try.
    ErrNoPeers = errors.New("session: no reachable peers")
    // ErrRetriesExhausted is returned when the attempt bound is reached
    // without a final reply. It wraps the last underlying cause.
    ErrRetriesExhausted = errors.New("session: retries exhausted")
)

// errRedirected marks an attempt that ended in a NotLeader redirect, so
// exhaustion reports something more useful than a nil cause.
var errRedirected = errors.New("session: redirected")

// Options tunes the retry policy.
type Options struct {
    // MaxAttempts bounds per-target attempts for a single call. Default 8.
    MaxAttempts int
    // Backoff is the base delay between attempts, doubled per attempt and
    // capped at 2s. Default 100ms.
    Backoff time.Duration
    // Logger for operational messages. Default log.Default().
    Logger *log.Logger
}

func (o *Options) setDefaults() {
    if o.MaxAttempts <= 0 { o.MaxAttempts = 8 }
    if o.Backoff <= 0 { o.Backoff = 100 * time.Millisecond }
    if o.Logger == nil { o.Logger = log.Default() }
}

// Session layers redirect-and-retry behavior on top of the stateless protocol
// client. It owns the state the client deliberately does not: the known peer
// set, a cached leader hint and a round-robin cursor.
//
// Policy: a suggested leader from a NotLeader reply is tried next; without a
// suggestion (mid-election) the session rotates round-robin through the known
// peer set; a transport fault demotes the current target and rotates. Known
// peers are refreshed from every redirect payload. Attempts are bounded and
// separated by exponential backoff honoring ctx cancellation.
type Session struct {
    cli       *client.Client
    requestor protocol.PeerID
    opts      Options

    mu     sync.Mutex
    peers  []protocol.Peer
    leader *protocol.Peer
    next   int
}

// New constructs a session for the given requestor identity and initial peer
// set. The peer set usually comes from a discovery.Provider; it is refreshed
// from NotLeader replies as the cluster reconfigures.
func New(cli *client.Client, requestor protocol.PeerID, peers []protocol.Peer, opts Options) (*Session, error) {
    if requestor == "" {
        return nil, errors.New("session: empty requestor id")
    }
    if len(peers) == 0 {
        return nil, ErrNoPeers
    }
    opts.setDefaults()
    s := &Session{cli: cli, requestor: requestor, opts: opts}
    s.peers = append([]protocol.Peer(nil), peers...)
    obsmetrics.KnownPeers.Set(float64(len(s.peers)))
    return s, nil
}

// Submit sends a command, retrying across peers until the leader services it
// (success or domain rejection), the attempt bound is hit, or ctx is done.
func (s *Session) Submit(ctx context.Context, msg protocol.Message) (protocol.ClientReply, error) {
    return s.do(ctx, func(cctx context.Context, target protocol.Peer) (protocol.ClientReply, error) {
        req := protocol.NewClientRequest(s.requestor, target.ID, msg)
        return s.cli.Submit(cctx, target, req)
    })
}

// SetConfiguration proposes newPeers as the full replacement membership,
// with the same redirect-and-retry behavior as Submit. Note that targets are
// still drawn from the session's current view, not from newPeers: the change
// must be accepted by the present leader.
func (s *Session) SetConfiguration(ctx context.Context, newPeers []protocol.Peer) (protocol.ClientReply, error) {
    return s.do(ctx, func(cctx context.Context, target protocol.Peer) (protocol.ClientReply, error) {
        req := protocol.NewSetConfigurationRequest(s.requestor, target.ID, newPeers)
        return s.cli.SetConfiguration(cctx, target, req)
    })
}

// KnownPeers returns a copy of the session's current peer view.
func (s *Session) KnownPeers() []protocol.Peer {
    s.mu.Lock()
    defer s.mu.Unlock()
    return append([]protocol.Peer(nil), s.peers...)
}

// Leader returns the cached leader hint, if any.
func (s *Session) Leader() (protocol.Peer, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.leader == nil {
        return protocol.Peer{}, false
    }
    return *s.leader, true
}

func (s *Session) do(ctx context.Context, call func(context.Context, protocol.Peer) (protocol.ClientReply, error)) (protocol.ClientReply, error) {
    var lastErr error
    for attempt := 0; attempt < s.opts.MaxAttempts; attempt++ {
        if attempt > 0 {
            if err := s.wait(ctx, attempt); err != nil {
                return protocol.ClientReply{}, err
            }
        }
        target, ok := s.pickTarget()
        if !ok {
            if lastErr != nil {
                return protocol.ClientReply{}, fmt.Errorf("%w: %v", ErrNoPeers, lastErr)
            }
            return protocol.ClientReply{}, ErrNoPeers
        }
        obsmetrics.SessionAttempts.Inc()
        reply, err := call(ctx, target)
        switch {
        case err != nil:
            if ctx.Err() != nil {
                return protocol.ClientReply{}, err
            }
            lastErr = err
            s.demote(target)
            logutil.Warnf(s.opts.Logger, "attempt %d at %s failed: %v", attempt+1, target, err)
        case reply.IsNotLeader():
            lastErr = errRedirected
            s.observeRedirect(target, reply.NotLeader)
        default:
            // Serviced by the leader: success or domain rejection, both final.
            return reply, nil
        }
    }
    obsmetrics.SessionExhausted.Inc()
    return protocol.ClientReply{}, fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, s.opts.MaxAttempts, lastErr)
}

func (s *Session) wait(ctx context.Context, attempt int) error {
    d := s.opts.Backoff << (attempt - 1)
    if d > 2*time.Second { d = 2 * time.Second }
    select {
    case <-ctx.Done():
        return ctx.Err()
    case <-time.After(d):
        return nil
    }
}

// pickTarget prefers the cached leader hint, then rotates round-robin through
// known peers that carry an address.
func (s *Session) pickTarget() (protocol.Peer, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.leader != nil {
        if _, ok := s.leader.Address(); ok {
            return *s.leader, true
        }
        s.leader = nil
    }
    for i := 0; i < len(s.peers); i++ {
        p := s.peers[s.next%len(s.peers)]
        s.next++
        if _, ok := p.Address(); ok {
            return p, true
        }
    }
    return protocol.Peer{}, false
}

// demote clears the leader hint when the failing target was it.
func (s *Session) demote(target protocol.Peer) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.leader != nil && s.leader.Equal(target) {
        s.leader = nil
    }
}

// observeRedirect refreshes the peer view and leader hint from a NotLeader
// payload. A suggested leader without an address is resolved against the
// advertised peer list; if it still has none, the hint is discarded and the
// session falls back to rotation.
func (s *Session) observeRedirect(from protocol.Peer, info *protocol.NotLeaderInfo) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if len(info.Peers) > 0 {
        s.peers = append([]protocol.Peer(nil), info.Peers...)
        // Keep rotating: resume after the peer that redirected us.
        s.next = 0
        for i, p := range s.peers {
            if p.Equal(from) {
                s.next = i + 1
                break
            }
        }
        obsmetrics.KnownPeers.Set(float64(len(s.peers)))
    }
    s.leader = nil
    suggested := "none"
    if sl := info.SuggestedLeader; sl != nil {
        cand := *sl
        if _, ok := cand.Address(); !ok {
            if p, found := protocol.FindPeer(s.peers, cand.ID); found {
                cand = p
            }
        }
        if _, ok := cand.Address(); ok && !cand.Equal(from) {
            s.leader = &cand
            suggested = "yes"
        }
    }
    obsmetrics.Redirects.WithLabelValues(suggested).Inc()
    logutil.Infof(s.opts.Logger, "redirected away from %s (leader hint: %v)", from.ID, s.leader)
}
