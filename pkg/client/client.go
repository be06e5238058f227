package client

import (
    "context"
    "fmt"
    "log"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/internal/logutil"
    obsmetrics "github.com/amirimatin/go-raftclient/pkg/observability/metrics"
    "github.com/amirimatin/go-raftclient/pkg/observability/tracing"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
    "github.com/amirimatin/go-raftclient/pkg/transport"
)

const (
    methodSubmit  = "submit"
    methodSetConf = "set_configuration"

    outcomeOK        = "ok"
    outcomeRejected  = "rejected"
    outcomeNotLeader = "not_leader"
    outcomeTransport = "transport_error"
    outcomeMalformed = "malformed_reply"
)

// Client sends typed requests to one cluster member per call over an injected
// RPC transport and classifies the outcome. It holds no request state and
// never retries: a NotLeader reply is returned as data for the caller (or a
// session, see pkg/session) to act on, while transport faults and malformed
// replies come back as errors. Calls are safe for concurrent use.
type Client struct {
    rpc    transport.RPCClient
    logger *log.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger used for operational messages.
func WithLogger(l *log.Logger) Option {
    return func(c *Client) { c.logger = l }
}

// New constructs a Client over the given transport.
func New(rpc transport.RPCClient, opts ...Option) *Client {
    c := &Client{rpc: rpc, logger: log.Default()}
    for _, o := range opts {
        o(c)
    }
    obsmetrics.Register()
    return c
}

// Submit sends a command submission to target and returns the reply as
// received. The request envelope must name target as the replier; picking the
// target is the caller's responsibility. A reply carrying a NotLeader
// redirect is a successful round trip, not an error.
func (c *Client) Submit(ctx context.Context, target protocol.Peer, req protocol.ClientRequest) (protocol.ClientReply, error) {
    addr, err := c.checkTarget(target, req.Envelope)
    if err != nil {
        return protocol.ClientReply{}, err
    }
    if err := req.Validate(); err != nil {
        return protocol.ClientReply{}, err
    }
    ctx, end := tracing.StartSpan(ctx, "client.submit")
    defer end()
    start := time.Now()
    wrep, err := c.rpc.SubmitRequest(ctx, addr, transport.ToWireClientRequest(req))
    obsmetrics.RequestSeconds.WithLabelValues(methodSubmit).Observe(time.Since(start).Seconds())
    return c.finish(methodSubmit, target, req.Envelope, wrep, err)
}

// SetConfiguration sends a membership change to target, proposing the
// request's peer list as the new committed membership. The contract and
// failure model match Submit; the peer list is passed through unchanged, and
// quorum-size sanity checks are the server's concern.
func (c *Client) SetConfiguration(ctx context.Context, target protocol.Peer, req protocol.SetConfigurationRequest) (protocol.ClientReply, error) {
    addr, err := c.checkTarget(target, req.Envelope)
    if err != nil {
        return protocol.ClientReply{}, err
    }
    if err := req.Validate(); err != nil {
        return protocol.ClientReply{}, err
    }
    ctx, end := tracing.StartSpan(ctx, "client.set_configuration")
    defer end()
    start := time.Now()
    wrep, err := c.rpc.SetConfiguration(ctx, addr, transport.ToWireSetConfigurationRequest(req))
    obsmetrics.RequestSeconds.WithLabelValues(methodSetConf).Observe(time.Since(start).Seconds())
    return c.finish(methodSetConf, target, req.Envelope, wrep, err)
}

func (c *Client) checkTarget(target protocol.Peer, env protocol.Envelope) (string, error) {
    if env.ReplierID != target.ID {
        return "", fmt.Errorf("%w: envelope names %s, target is %s", ErrTargetMismatch, env.ReplierID, target.ID)
    }
    addr, ok := target.Address()
    if !ok {
        return "", fmt.Errorf("%w: %s", ErrNoAddress, target.ID)
    }
    return addr, nil
}

// finish classifies a completed call. Transport faults and envelope-echo
// violations are errors; everything else, including redirects and domain
// rejections, is data.
func (c *Client) finish(method string, target protocol.Peer, sent protocol.Envelope, wrep transport.ClientReply, err error) (protocol.ClientReply, error) {
    if err != nil {
        obsmetrics.Requests.WithLabelValues(method, outcomeTransport).Inc()
        logutil.Warnf(c.logger, "%s to %s failed: %v", method, target, err)
        return protocol.ClientReply{}, classifyTransport(target, err)
    }
    reply := transport.FromWireReply(wrep)
    if !reply.Envelope.Equal(sent) {
        obsmetrics.Requests.WithLabelValues(method, outcomeMalformed).Inc()
        logutil.Errorf(c.logger, "%s to %s: reply envelope %s does not echo %s", method, target, reply.Envelope, sent)
        return protocol.ClientReply{}, &MalformedReplyError{Want: sent, Got: reply.Envelope}
    }
    switch {
    case reply.IsNotLeader():
        obsmetrics.Requests.WithLabelValues(method, outcomeNotLeader).Inc()
        if sl := reply.NotLeader.SuggestedLeader; sl != nil {
            logutil.Infof(c.logger, "%s: %s is not leader, suggested %s", method, target.ID, sl)
        } else {
            logutil.Infof(c.logger, "%s: %s is not leader, no suggestion (%d known peers)", method, target.ID, len(reply.NotLeader.Peers))
        }
    case reply.Success:
        obsmetrics.Requests.WithLabelValues(method, outcomeOK).Inc()
    default:
        obsmetrics.Requests.WithLabelValues(method, outcomeRejected).Inc()
    }
    return reply, nil
}
