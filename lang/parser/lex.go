package parser

import (
	"strconv"

	"github.com/dmattp/bang/lang/stream"
)

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isIdentChar(c byte) bool { return isAlpha(c) || isDigit(c) || c == '_' }

// eatWhitespace consumes any run of whitespace and reports whether it got
// any.
func eatWhitespace(s stream.Stream) bool {
	got := false
	for {
		c, err := s.Getc()
		if err != nil {
			return got
		}
		if !isSpace(c) {
			s.Regurg(c)
			return got
		}
		got = true
	}
}

// eatWord consumes the reserved word if it appears at the head of the
// stream, bounded by a non-identifier character.
func eatWord(s stream.Stream, word string) bool {
	m := stream.NewMark(s)
	defer m.Close()

	for i := 0; i < len(word); i++ {
		c, err := m.Getc()
		if err != nil || c != word[i] {
			return false
		}
	}
	// reject a longer identifier that merely starts with the word
	if c, err := m.Getc(); err == nil {
		if isIdentChar(c) {
			return false
		}
		m.Regurg(c)
	}
	m.Accept()
	return true
}

// tryIdentifier matches [A-Za-z_][A-Za-z0-9_]*, with interior hyphens
// permitted when followed by a letter.
func tryIdentifier(s stream.Stream) (string, bool) {
	m := stream.NewMark(s)
	defer m.Close()

	var name []byte
	for {
		c, err := m.Getc()
		if err != nil {
			break
		}
		if len(name) == 0 {
			if !isAlpha(c) && c != '_' {
				m.Regurg(c)
				break
			}
			name = append(name, c)
			m.Accept()
			continue
		}
		if isIdentChar(c) {
			name = append(name, c)
			m.Accept()
			continue
		}
		if c == '-' {
			c2, err2 := m.Getc()
			if err2 == nil && isAlpha(c2) {
				name = append(name, '-', c2)
				m.Accept()
				continue
			}
			if err2 == nil {
				m.Regurg(c2)
			}
			m.Regurg('-')
			break
		}
		m.Regurg(c)
		break
	}
	return string(name), len(name) > 0
}

// tryNumber matches digits with an optional single decimal point; the point
// must be followed by a digit or it is left in the stream.
func tryNumber(s stream.Stream) (float64, bool) {
	m := stream.NewMark(s)
	defer m.Close()

	var buf []byte
	for {
		c, err := m.Getc()
		if err != nil {
			break
		}
		if !isDigit(c) {
			m.Regurg(c)
			break
		}
		buf = append(buf, c)
		m.Accept()
	}
	if len(buf) == 0 {
		return 0, false
	}

	if c, err := m.Getc(); err == nil {
		if c == '.' {
			c2, err2 := m.Getc()
			if err2 == nil && isDigit(c2) {
				buf = append(buf, '.', c2)
				m.Accept()
				for {
					c3, err3 := m.Getc()
					if err3 != nil {
						break
					}
					if !isDigit(c3) {
						m.Regurg(c3)
						break
					}
					buf = append(buf, c3)
					m.Accept()
				}
			} else {
				if err2 == nil {
					m.Regurg(c2)
				}
				m.Regurg('.')
			}
		} else {
			m.Regurg(c)
		}
	}

	f, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// tryString matches a literal delimited by matching ' or " quotes, with no
// escapes. Hitting end of input inside the literal raises ErrEOF.
func tryString(s stream.Stream) (string, bool, error) {
	m := stream.NewMark(s)
	defer m.Close()

	delim, err := m.Getc()
	if err != nil {
		return "", false, nil
	}
	if delim != '\'' && delim != '"' {
		m.Regurg(delim)
		return "", false, nil
	}

	var content []byte
	for {
		c, err := m.Getc()
		if err != nil {
			return "", false, err // unterminated literal: ErrEOF unwinds
		}
		if c == delim {
			m.Accept()
			return string(content), true, nil
		}
		content = append(content, c)
	}
}
