package value

// hashSample bounds how many leading bytes feed the string hash. The
// resulting collision rate is acceptable for the hash-table sizes the
// libraries use; equality still compares the full bytes.
const hashSample = 32

// Str is the string variant: immutable text paired with a hash computed once
// at construction. Equality compares length, then hash, then bytes.
type Str struct {
	s    string
	hash uint32
}

var _ Value = (*Str)(nil)

// NewStr returns the string value for s.
func NewStr(s string) *Str {
	return &Str{s: s, hash: hashString(s)}
}

func (s *Str) String() string { return `"` + s.s + `"` }
func (s *Str) Type() string   { return "string" }
func (s *Str) Truth() bool    { return len(s.s) > 0 }

// Text returns the raw string contents.
func (s *Str) Text() string { return s.s }

// Hash returns the precomputed hash.
func (s *Str) Hash() uint32 { return s.hash }

// Len returns the length in bytes.
func (s *Str) Len() int { return len(s.s) }

// Equal reports whether two strings hold the same bytes, comparing length
// and hash before contents.
func (s *Str) Equal(o *Str) bool {
	if s == o {
		return true
	}
	return len(s.s) == len(o.s) && s.hash == o.hash && s.s == o.s
}

// hashString is the Jenkins one-at-a-time hash over at most hashSample
// leading bytes.
func hashString(s string) uint32 {
	n := len(s)
	if n > hashSample {
		n = hashSample
	}
	var h uint32
	for i := 0; i < n; i++ {
		h += uint32(s[i])
		h += h << 10
		h ^= h >> 6
	}
	h += h << 3
	h ^= h >> 11
	h += h << 15
	return h
}
