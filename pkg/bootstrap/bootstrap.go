package bootstrap

import (
    "crypto/tls"
    "fmt"
    "log"
    "strings"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/client"
    "github.com/amirimatin/go-raftclient/pkg/discovery"
    dDNS "github.com/amirimatin/go-raftclient/pkg/discovery/dns"
    dFile "github.com/amirimatin/go-raftclient/pkg/discovery/file"
    dStatic "github.com/amirimatin/go-raftclient/pkg/discovery/static"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
    tlsx "github.com/amirimatin/go-raftclient/pkg/security/tlsconfig"
    "github.com/amirimatin/go-raftclient/pkg/session"
    "github.com/amirimatin/go-raftclient/pkg/transport"
    rpcgrpc "github.com/amirimatin/go-raftclient/pkg/transport/grpc"
    "github.com/amirimatin/go-raftclient/pkg/transport/httpjson"
)

// Config defines high-level inputs to assemble a client session with sensible
// defaults. Applications embed the client by providing this structure and
// calling Build.
type Config struct {
    // Identity of the requestor, echoed back in every reply envelope.
    RequestorID string

    // Wire protocol: "http" (default) or "grpc".
    Proto string

    // Per-call timeout for the HTTP transport. The gRPC transport is fully
    // ctx-driven and ignores this.
    CallTimeout time.Duration

    // Discovery settings
    DiscoveryKind string        // "static" (default), "dns", or "file"
    SeedsCSV      string        // used when DiscoveryKind=static
    DNSNamesCSV   string        // used when kind=dns
    DNSPort       int           // used when kind=dns (A/AAAA)
    DiscRefresh   time.Duration // cache/refresh duration for discovery
    FilePath      string        // used when kind=file
    FileEnv       string        // used when kind=file

    // Session retry tuning
    MaxAttempts int
    Backoff     time.Duration

    // TLS (optional)
    TLSEnable     bool
    TLSCA         string
    TLSCert       string
    TLSKey        string
    TLSServerName string
    TLSSkipVerify bool

    // Logger (optional). If nil, log.Default() is used.
    Logger *log.Logger
}

// Build assembles a session.Session from Config. The returned session owns no
// background goroutines; closing the underlying transport is done via the
// returned cleanup func.
func Build(cfg Config) (*session.Session, func(), error) {
    if cfg.Logger == nil { cfg.Logger = log.Default() }
    if cfg.RequestorID == "" {
        return nil, nil, fmt.Errorf("bootstrap: RequestorID is required")
    }

    // Discovery backend
    var disc discovery.Provider
    switch cfg.DiscoveryKind {
    case "dns":
        names := splitCSV(cfg.DNSNamesCSV)
        opts := dDNS.Options{Names: names, Port: cfg.DNSPort}
        if cfg.DiscRefresh > 0 { opts.Refresh = cfg.DiscRefresh }
        disc = dDNS.New(opts)
    case "file":
        opts := dFile.Options{Path: cfg.FilePath, Env: cfg.FileEnv}
        if cfg.DiscRefresh > 0 { opts.Refresh = cfg.DiscRefresh }
        disc = dFile.New(opts)
    default:
        seeds := dStatic.Parse(cfg.SeedsCSV)
        disc = dStatic.New(seeds...)
    }

    var cliTLS *tls.Config
    if cfg.TLSEnable {
        topts := tlsx.Options{Enable: true, CAFile: cfg.TLSCA, CertFile: cfg.TLSCert, KeyFile: cfg.TLSKey, InsecureSkipVerify: cfg.TLSSkipVerify, ServerName: cfg.TLSServerName}
        // Prefer hot-reload configs to allow manual rotation by replacing files
        c, err := topts.ClientHotReload()
        if err != nil { return nil, nil, err }
        cliTLS = c
    }

    var rpc transport.RPCClient
    cleanup := func() {}
    switch cfg.Proto {
    case "grpc":
        c := rpcgrpc.NewClient()
        if cliTLS != nil { c.UseTLS(cliTLS) }
        rpc = c
        cleanup = c.Close
    default:
        c := httpjson.NewClient(cfg.CallTimeout)
        if cliTLS != nil { c.UseTLS(cliTLS) }
        rpc = c
    }

    cli := client.New(rpc, client.WithLogger(cfg.Logger))
    peers := disc.Peers()
    sopts := session.Options{Logger: cfg.Logger}
    if cfg.MaxAttempts > 0 { sopts.MaxAttempts = cfg.MaxAttempts }
    if cfg.Backoff > 0 { sopts.Backoff = cfg.Backoff }
    sess, err := session.New(cli, protocol.PeerID(cfg.RequestorID), peers, sopts)
    if err != nil {
        cleanup()
        return nil, nil, err
    }
    return sess, cleanup, nil
}

func splitCSV(s string) []string {
    var out []string
    for _, part := range strings.Split(s, ",") {
        if p := strings.TrimSpace(part); p != "" {
            out = append(out, p)
        }
    }
    return out
}
