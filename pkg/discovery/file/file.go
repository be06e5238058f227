package file

import (
    "bufio"
    "os"
    "path/filepath"
    "sort"
    "strings"
    "sync"
    "time"

    "github.com/amirimatin/go-raftclient/pkg/discovery"
    "github.com/amirimatin/go-raftclient/pkg/discovery/static"
    "github.com/amirimatin/go-raftclient/pkg/protocol"
)

// Options configures file/ENV-based peer provisioning. Files contain one
// "id=host:port" (or bare "host:port") entry per line or comma-separated.
type Options struct {
    // Path to a peer file, or a glob matching several.
    Path string
    // Env overrides the file when the variable is set and non-empty.
    Env string
    // Refresh controls cache staleness; if zero, defaults to 5s.
    Refresh time.Duration
}

type impl struct {
    opts  Options
    mu    sync.Mutex
    last  time.Time
    mtime time.Time
    cache []protocol.Peer
}

func New(opts Options) discovery.Provider {
    if opts.Refresh <= 0 { opts.Refresh = 5 * time.Second }
    return &impl{opts: opts}
}

func (i *impl) Peers() []protocol.Peer {
    i.mu.Lock(); defer i.mu.Unlock()
    // ENV takes precedence
    if v := strings.TrimSpace(os.Getenv(i.opts.Env)); i.opts.Env != "" && v != "" {
        return static.Parse(v)
    }
    if i.opts.Path == "" {
        return nil
    }
    stat, err := os.Stat(i.opts.Path)
    now := time.Now()
    if err == nil {
        // If file changed or cache is stale, reload
        if stat.ModTime().After(i.mtime) || now.Sub(i.last) >= i.opts.Refresh {
            i.cache = loadFile(i.opts.Path)
            i.last = now
            i.mtime = stat.ModTime()
        }
        return append([]protocol.Peer(nil), i.cache...)
    }
    // try glob
    matches, _ := filepath.Glob(i.opts.Path)
    if len(matches) > 0 {
        set := make(map[string]protocol.Peer)
        for _, m := range matches {
            for _, p := range loadFile(m) { set[string(p.ID)] = p }
        }
        ids := make([]string, 0, len(set))
        for id := range set { ids = append(ids, id) }
        sort.Strings(ids)
        out := make([]protocol.Peer, 0, len(ids))
        for _, id := range ids { out = append(out, set[id]) }
        i.cache = out
        i.last = now
        return append([]protocol.Peer(nil), i.cache...)
    }
    return append([]protocol.Peer(nil), i.cache...)
}

func loadFile(path string) []protocol.Peer {
    f, err := os.Open(path)
    if err != nil { return nil }
    defer f.Close()
    var peers []protocol.Peer
    seen := make(map[protocol.PeerID]struct{})
    s := bufio.NewScanner(f)
    for s.Scan() {
        line := strings.TrimSpace(s.Text())
        if line == "" || strings.HasPrefix(line, "#") { continue }
        // allow comma-separated per line
        for _, p := range static.Parse(line) {
            if _, ok := seen[p.ID]; ok { continue }
            seen[p.ID] = struct{}{}
            peers = append(peers, p)
        }
    }
    if err := s.Err(); err != nil { return nil }
    sort.Slice(peers, func(a, b int) bool { return peers[a].ID < peers[b].ID })
    return peers
}
