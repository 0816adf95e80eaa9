package pgn

import (
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// suffixNAGs maps move suffix annotations to their standard NAG codes.
var suffixNAGs = map[string]uint8{
	"!":  1,
	"?":  2,
	"!!": 3,
	"??": 4,
	"!?": 5,
	"?!": 6,
}

// resultTokens terminate the movetext of a game.
var resultTokens = map[string]bool{
	"1-0":     true,
	"0-1":     true,
	"1/2-1/2": true,
	"*":       true,
}

// ReadGame lexes one game from r and drives v with its events.
//
// Malformed individual tokens are dropped; only structural damage
// (unterminated comments or tag pairs, unreadable input) is an error.
func ReadGame(r io.Reader, v Visitor) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading pgn input")
	}

	s := &scanner{data: data, line: 1}
	return s.run(v)
}

type scanner struct {
	data []byte
	pos  int
	line int
}

func (s *scanner) run(v Visitor) error {
	v.BeginGame()

	depth := 0
	movesSeen := false

loop:
	for {
		s.skipSpace()
		if s.eof() {
			break
		}

		switch c := s.peek(); {
		case c == '%' && s.atLineStart():
			s.skipLine()

		case c == '[':
			if movesSeen {
				// Tag section of the next game; this one is over.
				break loop
			}
			key, value, err := s.scanTagPair()
			if err != nil {
				return err
			}
			v.Header(key, value)

		case c == '{':
			text, err := s.scanBraceComment()
			if err != nil {
				return err
			}
			v.Comment(text)

		case c == ';':
			v.Comment(s.scanLineComment())

		case c == '(':
			s.next()
			if v.BeginVariation() {
				if err := s.skipVariation(); err != nil {
					return err
				}
				continue
			}
			depth++

		case c == ')':
			s.next()
			if depth == 0 {
				// Unmatched bracket; drop it and carry on.
				continue
			}
			depth--
			v.EndVariation()

		case c == '$':
			s.next()
			if code, ok := s.scanNAG(); ok {
				v.NAG(code)
			}

		default:
			tok := s.scanToken()
			if tok == "" {
				s.next() // lone punctuation byte
				continue
			}
			if resultTokens[tok] {
				break loop
			}
			san, suffix := splitMoveToken(tok)
			if san == "" {
				continue // move number or unusable token
			}
			v.Move(san)
			movesSeen = true
			if nag, ok := suffixNAGs[suffix]; ok {
				v.NAG(nag)
			}
		}
	}

	for depth > 0 {
		v.EndVariation()
		depth--
	}
	v.EndGame()

	return nil
}

// splitMoveToken strips move-number glue and suffix annotations from a
// movetext token. It returns an empty san for tokens that carry no move,
// such as bare move numbers and null moves.
func splitMoveToken(tok string) (san, suffix string) {
	j := len(tok)
	for j > 0 && (tok[j-1] == '!' || tok[j-1] == '?') {
		j--
	}
	tok, suffix = tok[:j], tok[j:]

	// Move-number glue always includes the dots: "1.e4", "12...Nf6".
	// A leading digit without dots belongs to the token ("0-0").
	i := 0
	for i < len(tok) && isDigit(tok[i]) {
		i++
	}
	switch {
	case i == len(tok):
		tok = "" // bare number
	case i > 0 && tok[i] == '.':
		for i < len(tok) && tok[i] == '.' {
			i++
		}
		tok = tok[i:]
	}

	switch tok {
	case "", "--", "Z0":
		return "", ""
	case "0-0":
		tok = "O-O"
	case "0-0-0":
		tok = "O-O-O"
	}

	return tok, suffix
}

func (s *scanner) eof() bool { return s.pos >= len(s.data) }

func (s *scanner) peek() byte { return s.data[s.pos] }

func (s *scanner) next() byte {
	c := s.data[s.pos]
	s.pos++
	if c == '\n' {
		s.line++
	}
	return c
}

func (s *scanner) atLineStart() bool {
	return s.pos == 0 || s.data[s.pos-1] == '\n'
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.next()
	}
}

func (s *scanner) skipLine() {
	for !s.eof() && s.peek() != '\n' {
		s.next()
	}
}

// scanToken reads a run of bytes up to whitespace or a structural delimiter.
func (s *scanner) scanToken() string {
	start := s.pos
	for !s.eof() && !isSpace(s.peek()) && !isDelimiter(s.peek()) {
		s.next()
	}
	return string(s.data[start:s.pos])
}

// scanTagPair reads a `[Key "value"]` line. Values support \" and \\ escapes.
func (s *scanner) scanTagPair() (string, string, error) {
	line := s.line
	s.next() // '['
	s.skipSpace()

	start := s.pos
	for !s.eof() && !isSpace(s.peek()) && s.peek() != '"' && s.peek() != ']' {
		s.next()
	}
	key := string(s.data[start:s.pos])
	s.skipSpace()

	if s.eof() || s.peek() != '"' {
		return "", "", errors.Errorf("line %d: tag pair %q has no quoted value", line, key)
	}
	s.next() // opening quote

	var value strings.Builder
	for {
		if s.eof() {
			return "", "", errors.Errorf("line %d: unterminated tag value", line)
		}
		c := s.next()
		if c == '"' {
			break
		}
		if c == '\\' && !s.eof() && (s.peek() == '"' || s.peek() == '\\') {
			c = s.next()
		}
		value.WriteByte(c)
	}

	s.skipSpace()
	if s.eof() || s.peek() != ']' {
		return "", "", errors.Errorf("line %d: unterminated tag pair %q", line, key)
	}
	s.next() // ']'

	return key, value.String(), nil
}

func (s *scanner) scanBraceComment() (string, error) {
	line := s.line
	s.next() // '{'

	start := s.pos
	for {
		if s.eof() {
			return "", errors.Errorf("line %d: unterminated comment", line)
		}
		if s.peek() == '}' {
			break
		}
		s.next()
	}
	text := string(s.data[start:s.pos])
	s.next() // '}'

	return collapseSpace(text), nil
}

func (s *scanner) scanLineComment() string {
	s.next() // ';'
	start := s.pos
	s.skipLine()
	return collapseSpace(string(s.data[start:s.pos]))
}

func (s *scanner) scanNAG() (uint8, bool) {
	start := s.pos
	for !s.eof() && isDigit(s.peek()) {
		s.next()
	}
	code, err := strconv.Atoi(string(s.data[start:s.pos]))
	if err != nil || code < 1 || code > 255 {
		return 0, false
	}
	return uint8(code), true
}

// skipVariation consumes a skipped variation up to its matching ')'.
// Brackets inside brace comments do not count. Running out of input is
// tolerated, matching the handling of dangling open variations elsewhere.
func (s *scanner) skipVariation() error {
	depth := 1
	for !s.eof() {
		switch s.next() {
		case '{':
			for !s.eof() && s.peek() != '}' {
				s.next()
			}
			if !s.eof() {
				s.next()
			}
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return nil
}

func collapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '{', '}', ';', '[', ']', '$':
		return true
	}
	return false
}
