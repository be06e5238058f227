package httpjson

import (
    "bytes"
    "context"
    "crypto/tls"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/transport"
)

// Client is a thin HTTP client for the raft client API. It supports optional
// TLS configuration. It does not retry: retry policy belongs to the session
// layer, which needs to see every individual fault to rotate targets.
type Client struct {
    httpc     *http.Client
    transport *http.Transport
    isTLS     bool
}

// NewClient constructs a new Client with the given per-call timeout ceiling.
// Callers still control each call with ctx.
func NewClient(timeout time.Duration) *Client {
    if timeout <= 0 { timeout = 3 * time.Second }
    tr := &http.Transport{}
    return &Client{httpc: &http.Client{Timeout: timeout, Transport: tr}, transport: tr}
}

// UseTLS sets the TLS config for the underlying HTTP client and switches the
// request scheme to https.
func (c *Client) UseTLS(cfg *tls.Config) *Client {
    if c.transport != nil { c.transport.TLSClientConfig = cfg }
    c.isTLS = cfg != nil
    return c
}

func (c *Client) scheme() string {
    if c.isTLS { return "https" }
    return "http"
}

func (c *Client) post(ctx context.Context, addr, path string, in interface{}, out *transport.ClientReply) error {
    url := fmt.Sprintf("%s://%s%s", c.scheme(), addr, path)
    body, err := json.Marshal(in)
    if err != nil { return err }
    httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
    if err != nil { return err }
    httpReq.Header.Set("Content-Type", "application/json")
    resp, err := c.httpc.Do(httpReq)
    if err != nil { return err }
    defer resp.Body.Close()
    b, err := io.ReadAll(resp.Body)
    if err != nil { return err }
    // Replies travel as 200 regardless of outcome; redirects and rejections
    // are data, not HTTP errors.
    if resp.StatusCode != http.StatusOK {
        return fmt.Errorf("%s status %d: %s", path, resp.StatusCode, string(b))
    }
    return json.Unmarshal(b, out)
}

func (c *Client) SubmitRequest(ctx context.Context, addr string, req transport.ClientRequest) (transport.ClientReply, error) {
    var out transport.ClientReply
    err := c.post(ctx, addr, "/v1/submit", req, &out)
    return out, err
}

func (c *Client) SetConfiguration(ctx context.Context, addr string, req transport.SetConfigurationRequest) (transport.ClientReply, error) {
    var out transport.ClientReply
    err := c.post(ctx, addr, "/v1/configuration", req, &out)
    return out, err
}

var _ transport.RPCClient = (*Client)(nil)
