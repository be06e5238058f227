package dns

import (
    "strings"
    "testing"
    "time"
)

func TestParseSRVName(t *testing.T) {
    s, p, n := parseSRVName("_raft._tcp.example.com")
    if s != "raft" || p != "tcp" || n != "example.com" {
        t.Fatalf("parseSRVName failed: got (%q,%q,%q)", s, p, n)
    }
    s, p, n = parseSRVName("bad.srv")
    if s != "" || p != "" || n != "" {
        t.Fatalf("expected empty parts for bad input, got (%q,%q,%q)", s, p, n)
    }
}

func TestPassthroughHostPort(t *testing.T) {
    d := New(Options{Names: []string{"1.2.3.4:9520"}, Refresh: 5 * time.Millisecond})
    got := d.Peers()
    if len(got) != 1 || got[0].ID != "1.2.3.4:9520" {
        t.Fatalf("unexpected peers: %#v", got)
    }
    if addr, ok := got[0].Address(); !ok || addr != "1.2.3.4:9520" {
        t.Fatalf("address must mirror the entry: %#v", got[0])
    }
}

func TestLookupHostLocalhost(t *testing.T) {
    d := New(Options{Names: []string{"localhost"}, Port: 12345, Refresh: 5 * time.Millisecond})
    got := d.Peers()
    if len(got) == 0 {
        t.Fatalf("expected at least one resolved peer, got %#v", got)
    }
    // Accept IPv4 or IPv6 formatting
    ok := false
    for _, p := range got {
        if a, has := p.Address(); has && (strings.HasSuffix(a, ":12345") || strings.HasSuffix(a, "]:12345")) {
            ok = true
            break
        }
    }
    if !ok {
        t.Fatalf("expected port suffix in any result, got %#v", got)
    }
}
