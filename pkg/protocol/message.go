package protocol

// Message is the opaque content of a client command. The cluster applies it
// to the replicated state machine without interpreting it. A zero-length
// message is a valid value and is not the same as "no message".
type Message struct {
    content []byte
}

var emptyMessage = Message{content: []byte{}}

// NewMessage wraps b as a message. A nil or empty slice yields the canonical
// empty message; the caller keeps ownership of b and must not mutate it
// afterwards.
func NewMessage(b []byte) Message {
    if len(b) == 0 {
        return emptyMessage
    }
    return Message{content: b}
}

// Content returns the payload bytes. Never nil.
func (m Message) Content() []byte {
    if m.content == nil {
        return []byte{}
    }
    return m.content
}

// Len returns the payload length in bytes.
func (m Message) Len() int { return len(m.content) }

// Equal reports whether two messages carry identical payloads.
func (m Message) Equal(o Message) bool {
    if len(m.content) != len(o.content) {
        return false
    }
    for i := range m.content {
        if m.content[i] != o.content[i] {
            return false
        }
    }
    return true
}
