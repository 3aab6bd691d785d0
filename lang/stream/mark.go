package stream

import "fmt"

// A Mark is a nested scope over a Stream that records every consumed
// character. Closing a mark without accepting regurgitates the record in
// reverse, restoring the source to its pre-mark state. Marks nest freely; an
// inner mark sees its parent mark, not the raw stream, as its source.
type Mark struct {
	src      Stream
	consumed []byte
}

var _ Stream = (*Mark)(nil)

// NewMark returns a mark scope over src.
func NewMark(src Stream) *Mark {
	return &Mark{src: src}
}

func (m *Mark) Getc() (byte, error) {
	c, err := m.src.Getc()
	if err != nil {
		return 0, err
	}
	m.consumed = append(m.consumed, c)
	return c, nil
}

func (m *Mark) Regurg(c byte) {
	n := len(m.consumed)
	if n == 0 || m.consumed[n-1] != c {
		panic(fmt.Sprintf("stream: regurgitated %q does not match last consumed", c))
	}
	m.consumed = m.consumed[:n-1]
	m.src.Regurg(c)
}

// Accept commits everything consumed since the mark was created (or last
// accepted); a later Close will not push those characters back.
func (m *Mark) Accept() {
	m.consumed = m.consumed[:0]
}

// Close regurgitates any unaccepted consumed characters, in reverse order.
func (m *Mark) Close() {
	for i := len(m.consumed) - 1; i >= 0; i-- {
		m.src.Regurg(m.consumed[i])
	}
	m.consumed = nil
}

func (m *Mark) Where() string { return m.src.Where() }
