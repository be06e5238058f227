package static

import "testing"

func TestParse(t *testing.T) {
    cases := []struct {
        in       string
        wantIDs  []string
        wantAddr []string
    }{
        {"", nil, nil},
        {"s1=a:1", []string{"s1"}, []string{"a:1"}},
        {" s1=a:1 , s2=b:2 ", []string{"s1", "s2"}, []string{"a:1", "b:2"}},
        {",,a:1, ,s2=b:2,", []string{"a:1", "s2"}, []string{"a:1", "b:2"}},
        {"s1=", []string{"s1"}, []string{""}},
    }
    for _, c := range cases {
        got := Parse(c.in)
        if len(got) != len(c.wantIDs) {
            t.Fatalf("[%q] len mismatch: got %d want %d", c.in, len(got), len(c.wantIDs))
        }
        for i := range got {
            if string(got[i].ID) != c.wantIDs[i] {
                t.Fatalf("[%q] item %d id: got %q want %q", c.in, i, got[i].ID, c.wantIDs[i])
            }
            addr, ok := got[i].Address()
            if c.wantAddr[i] == "" {
                if ok {
                    t.Fatalf("[%q] item %d: expected absent address, got %q", c.in, i, addr)
                }
            } else if addr != c.wantAddr[i] {
                t.Fatalf("[%q] item %d addr: got %q want %q", c.in, i, addr, c.wantAddr[i])
            }
        }
    }
}

func TestNew(t *testing.T) {
    p1, _ := ParseEntry("s1=a:1")
    p2, _ := ParseEntry("s2=b:2")
    d := New(p1, p2)
    got := d.Peers()
    if len(got) != 2 || got[0].ID != "s1" || got[1].ID != "s2" {
        t.Fatalf("unexpected peers: %#v", got)
    }
    // Ensure returned slice is a copy
    got[0].ID = "x"
    got2 := d.Peers()
    if got2[0].ID != "s1" {
        t.Fatalf("expected defensive copy, got %#v", got2)
    }
}
