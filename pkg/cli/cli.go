package cli

import (
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/spf13/cobra"

    "github.com/amirimatin/go-raftclient/pkg/bootstrap"
    tracing "github.com/amirimatin/go-raftclient/pkg/observability/tracing"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
    dStatic "github.com/amirimatin/go-raftclient/pkg/discovery/static"
    "github.com/amirimatin/go-raftclient/pkg/transport"
)

// AddAll attaches client subcommands (submit/reconfigure/peers) to the
// provided root command.
func AddAll(root *cobra.Command) {
    root.AddCommand(NewSubmitCmd())
    root.AddCommand(NewReconfigureCmd())
    root.AddCommand(NewPeersCmd())
}

// sessionFlags holds the flags shared by every command that opens a session.
type sessionFlags struct {
    id, proto, discoveryKind, seeds, dnsNames, filePath, fileEnv string
    dnsPort                                                      int
    discRefresh, timeout, backoff                                time.Duration
    attempts                                                     int
    tlsEnable, tlsSkip, traceEnable                              bool
    tlsCA, tlsCert, tlsKey, tlsServerName                        string
}

func (f *sessionFlags) register(cmd *cobra.Command) {
    cmd.Flags().StringVar(&f.id, "id", "", "requestor id (required)")
    cmd.Flags().StringVar(&f.proto, "proto", "http", "wire protocol: http|grpc")
    cmd.Flags().StringVar(&f.discoveryKind, "discovery", "static", "discovery backend: static|dns|file")
    cmd.Flags().StringVar(&f.seeds, "peers", "", "comma-separated peers (id=host:port) — used by discovery=static")
    cmd.Flags().StringVar(&f.dnsNames, "dns-names", "", "comma-separated DNS names or SRV records (e.g., _raft._tcp.example.com)")
    cmd.Flags().IntVar(&f.dnsPort, "dns-port", 9520, "port used for A/AAAA lookups")
    cmd.Flags().DurationVar(&f.discRefresh, "disc-refresh", 5*time.Second, "discovery refresh/cache duration")
    cmd.Flags().StringVar(&f.filePath, "file-path", "", "path or glob to a file with peers (one per line or CSV)")
    cmd.Flags().StringVar(&f.fileEnv, "file-env", "", "ENV var name containing CSV peers; overrides file when set")
    cmd.Flags().DurationVar(&f.timeout, "timeout", 3*time.Second, "per-call timeout (http transport)")
    cmd.Flags().IntVar(&f.attempts, "attempts", 0, "max attempts before giving up (0 = default)")
    cmd.Flags().DurationVar(&f.backoff, "backoff", 0, "base backoff between attempts (0 = default)")
    cmd.Flags().BoolVar(&f.tlsEnable, "tls-enable", false, "enable mTLS for the transport")
    cmd.Flags().StringVar(&f.tlsCA, "tls-ca", "", "path to CA cert (PEM)")
    cmd.Flags().StringVar(&f.tlsCert, "tls-cert", "", "path to client certificate (PEM)")
    cmd.Flags().StringVar(&f.tlsKey, "tls-key", "", "path to client private key (PEM)")
    cmd.Flags().BoolVar(&f.tlsSkip, "tls-skip-verify", false, "skip server cert verification (DEV ONLY)")
    cmd.Flags().StringVar(&f.tlsServerName, "tls-server-name", "", "expected server name (for TLS validation)")
    cmd.Flags().BoolVar(&f.traceEnable, "trace", false, "enable OpenTelemetry stdout tracing (dev)")
}

func (f *sessionFlags) config() bootstrap.Config {
    return bootstrap.Config{
        RequestorID:   f.id,
        Proto:         f.proto,
        CallTimeout:   f.timeout,
        DiscoveryKind: f.discoveryKind,
        SeedsCSV:      f.seeds,
        DNSNamesCSV:   f.dnsNames,
        DNSPort:       f.dnsPort,
        DiscRefresh:   f.discRefresh,
        FilePath:      f.filePath,
        FileEnv:       f.fileEnv,
        MaxAttempts:   f.attempts,
        Backoff:       f.backoff,
        TLSEnable:     f.tlsEnable,
        TLSCA:         f.tlsCA,
        TLSCert:       f.tlsCert,
        TLSKey:        f.tlsKey,
        TLSServerName: f.tlsServerName,
        TLSSkipVerify: f.tlsSkip,
        Logger:        log.Default(),
    }
}

func (f *sessionFlags) tracingShutdown() func() {
    if !f.traceEnable {
        return func() {}
    }
    shutdown, err := tracing.Setup(true)
    if err != nil {
        log.Printf("tracing setup error: %v", err)
        return func() {}
    }
    return func() { _ = shutdown(context.Background()) }
}

// NewSubmitCmd returns the "submit" command: send one command payload to the
// cluster leader and print the reply as JSON.
func NewSubmitCmd() *cobra.Command {
    var f sessionFlags
    var payload, payloadFile string
    cmd := &cobra.Command{
        Use:   "submit",
        Short: "Submit a command to the cluster leader",
        RunE: func(cmd *cobra.Command, args []string) error {
            if f.id == "" { return fmt.Errorf("missing -id") }
            defer f.tracingShutdown()()
            data, err := readPayload(payload, payloadFile)
            if err != nil { return err }

            sess, cleanup, err := bootstrap.Build(f.config())
            if err != nil { return err }
            defer cleanup()

            ctx, cancel := signalContext()
            defer cancel()
            reply, err := sess.Submit(ctx, protocol.NewMessage(data))
            if err != nil { return fmt.Errorf("submit error: %w", err) }
            return printReply(reply)
        },
    }
    f.register(cmd)
    cmd.Flags().StringVar(&payload, "data", "", "command payload (string)")
    cmd.Flags().StringVar(&payloadFile, "data-file", "", "read payload from file ('-' for stdin)")
    return cmd
}

// NewReconfigureCmd returns the "reconfigure" command: propose a full
// replacement membership and print the reply as JSON.
func NewReconfigureCmd() *cobra.Command {
    var f sessionFlags
    var newPeersCSV string
    cmd := &cobra.Command{
        Use:   "reconfigure",
        Short: "Propose a new cluster membership",
        RunE: func(cmd *cobra.Command, args []string) error {
            if f.id == "" { return fmt.Errorf("missing -id") }
            if newPeersCSV == "" { return fmt.Errorf("missing -new-peers") }
            defer f.tracingShutdown()()
            newPeers := dStatic.Parse(newPeersCSV)
            if len(newPeers) == 0 { return fmt.Errorf("no valid peers in -new-peers") }

            sess, cleanup, err := bootstrap.Build(f.config())
            if err != nil { return err }
            defer cleanup()

            ctx, cancel := signalContext()
            defer cancel()
            reply, err := sess.SetConfiguration(ctx, newPeers)
            if err != nil { return fmt.Errorf("reconfigure error: %w", err) }
            return printReply(reply)
        },
    }
    f.register(cmd)
    cmd.Flags().StringVar(&newPeersCSV, "new-peers", "", "comma-separated replacement membership (id=host:port)")
    return cmd
}

// NewPeersCmd returns the "peers" command: print the resolved peer view.
func NewPeersCmd() *cobra.Command {
    var f sessionFlags
    cmd := &cobra.Command{
        Use:   "peers",
        Short: "Print the resolved peer view as JSON",
        RunE: func(cmd *cobra.Command, args []string) error {
            if f.id == "" { return fmt.Errorf("missing -id") }
            sess, cleanup, err := bootstrap.Build(f.config())
            if err != nil { return err }
            defer cleanup()
            entries := transport.ToWirePeers(sess.KnownPeers())
            return json.NewEncoder(os.Stdout).Encode(entries)
        },
    }
    f.register(cmd)
    return cmd
}

func readPayload(payload, payloadFile string) ([]byte, error) {
    if payloadFile != "" {
        if payloadFile == "-" {
            return io.ReadAll(os.Stdin)
        }
        return os.ReadFile(payloadFile)
    }
    return []byte(payload), nil
}

func printReply(reply protocol.ClientReply) error {
    return json.NewEncoder(os.Stdout).Encode(transport.ToWireReply(reply))
}

func signalContext() (context.Context, context.CancelFunc) {
    ctx, cancel := context.WithCancel(context.Background())
    go func() {
        ch := make(chan os.Signal, 1)
        signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
        <-ch
        cancel()
    }()
    return ctx, cancel
}
