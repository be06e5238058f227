package grpc

import (
    "context"
    "crypto/tls"
    "sync"
    "time"

    "google.golang.org/grpc"
    "google.golang.org/grpc/backoff"
    "google.golang.org/grpc/credentials"
    "google.golang.org/grpc/credentials/insecure"
    "google.golang.org/grpc/keepalive"

    "github.com/amirimatin/go-raftclient/pkg/transport"
)

// Client implements transport.RPCClient over gRPC with a JSON codec. One
// Client serves any number of target addresses; connections are pooled per
// address by a ConnManager. No retries happen at this layer: a failed call
// surfaces its fault to pkg/client for classification.
type Client struct {
    tlsCfg *tls.Config
    cm     *ConnManager

    mu sync.Mutex
}

// NewClient constructs a new Client. Deadlines are the caller's business:
// every call runs under the ctx it is given, nothing more.
func NewClient() *Client {
    // conn manager wired lazily after the dialer is configured (including TLS)
    return &Client{}
}

// UseTLS sets TLS config for the client.
func (c *Client) UseTLS(cfg *tls.Config) *Client { c.tlsCfg = cfg; return c }

// Close releases all pooled connections.
func (c *Client) Close() {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.cm != nil {
        c.cm.Close()
        c.cm = nil
    }
}

func (c *Client) dialCtx(ctx context.Context, target string) (*grpc.ClientConn, error) {
    // Use JSON codec and set content subtype accordingly.
    opts := []grpc.DialOption{
        grpc.WithDefaultCallOptions(grpc.ForceCodec(jsonCodec{}), grpc.CallContentSubtype("json")),
        grpc.WithConnectParams(grpc.ConnectParams{Backoff: backoff.DefaultConfig, MinConnectTimeout: 500 * time.Millisecond}),
        grpc.WithKeepaliveParams(keepalive.ClientParameters{Time: 20 * time.Second, Timeout: 5 * time.Second, PermitWithoutStream: true}),
        grpc.WithBlock(),
    }
    if c.tlsCfg != nil {
        opts = append(opts, grpc.WithTransportCredentials(credentials.NewTLS(c.tlsCfg)))
    } else {
        opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
    }
    return grpc.DialContext(ctx, target, opts...)
}

func (c *Client) SubmitRequest(ctx context.Context, addr string, req transport.ClientRequest) (transport.ClientReply, error) {
    var resp transport.ClientReply
    cc, rel, err := c.getConn(ctx, addr)
    if err != nil { return resp, err }
    defer rel()
    if err := cc.Invoke(ctx, "/raft.v1.Client/Submit", &req, &resp); err != nil { return resp, err }
    return resp, nil
}

func (c *Client) SetConfiguration(ctx context.Context, addr string, req transport.SetConfigurationRequest) (transport.ClientReply, error) {
    var resp transport.ClientReply
    cc, rel, err := c.getConn(ctx, addr)
    if err != nil { return resp, err }
    defer rel()
    if err := cc.Invoke(ctx, "/raft.v1.Client/SetConfiguration", &req, &resp); err != nil { return resp, err }
    return resp, nil
}

var _ transport.RPCClient = (*Client)(nil)

// getConn returns a managed connection, creating a manager if absent.
func (c *Client) getConn(ctx context.Context, addr string) (*grpc.ClientConn, func(), error) {
    c.mu.Lock()
    if c.cm == nil {
        c.cm = NewConnManager(30*time.Second, c.dialCtx)
    }
    cm := c.cm
    c.mu.Unlock()
    return cm.Get(ctx, addr)
}
