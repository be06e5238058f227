package client

import (
    "context"
    "errors"
    "fmt"
    "net"
    "os"

    "github.com/amirimatin/go-raftclient/pkg/protocol"
)

var (
    // ErrNoAddress is returned when the target peer carries no address and
    // none can be derived.
    ErrNoAddress = errors.New("client: target peer has no address")
    // ErrTargetMismatch is returned when the request envelope names a replier
    // other than the peer being contacted.
    ErrTargetMismatch = errors.New("client: envelope replier does not match target")
)

// TransportError reports that the round trip could not be completed at all:
// the request may or may not have reached the server, and no reply was
// decoded. The original cause is preserved for diagnostics and errors.Is /
// errors.As matching.
type TransportError struct {
    Target protocol.Peer
    Err    error
}

func (e *TransportError) Error() string {
    return fmt.Sprintf("client: transport failure contacting %s: %v", e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedReplyError reports a reply that was received but violates the
// envelope echo invariant: a conforming reply carries exactly the request's
// requestor and replier IDs.
type MalformedReplyError struct {
    Want protocol.Envelope
    Got  protocol.Envelope
}

func (e *MalformedReplyError) Error() string {
    return fmt.Sprintf("client: malformed reply: envelope %s does not echo request %s", e.Got, e.Want)
}

// classifyTransport maps a transport-level failure into the client's error
// taxonomy. When the cause chain already contains a recognized I/O-style
// fault, that exact fault is surfaced so callers can match on it directly;
// anything else is wrapped in a TransportError carrying the original cause.
// No domain information is invented either way.
func classifyTransport(target protocol.Peer, err error) error {
    if err == nil {
        return nil
    }
    if fault, ok := ioFault(err); ok {
        return fault
    }
    return &TransportError{Target: target, Err: err}
}

// ioFault walks the unwrap chain looking for a fault the caller already knows
// how to handle: net errors, syscall-level I/O errors, and context
// cancellation or deadline expiry.
func ioFault(err error) (error, bool) {
    for e := err; e != nil; e = errors.Unwrap(e) {
        if e == context.Canceled || e == context.DeadlineExceeded {
            return e, true
        }
        if ne, ok := e.(net.Error); ok {
            return ne, true
        }
        if se, ok := e.(*os.SyscallError); ok {
            return se, true
        }
    }
    return nil, false
}
