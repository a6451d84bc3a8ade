// Package scanner implements the scanner that transforms source bytes into a
// sequence of lexical tokens.
package scanner

import (
	"fmt"
	"strconv"

	"github.com/mna/lotus/lang/token"
)

// ScanTokens is a helper function that tokenizes src and returns the full
// list of tokens, terminated by an EOF token. Lexical errors are reported
// through errh with the 1-based line and a message; scanning continues past
// them.
func ScanTokens(src []byte, errh func(line int, msg string)) []token.Value {
	var s Scanner
	s.Init(src, errh)

	var toks []token.Value
	for {
		var val token.Value
		tok := s.Scan(&val)
		toks = append(toks, val)
		if tok == token.EOF {
			break
		}
	}
	return toks
}

// Scanner tokenizes source bytes for the parser to consume.
type Scanner struct {
	// immutable state after Init
	src []byte
	err func(line int, msg string)

	// mutable scanning state
	start int // start offset of the token being scanned
	cur   int // reading offset
	line  int // current 1-based line
}

// Init initializes the scanner to tokenize a new source. The error handler
// may be nil, in which case lexical errors are silently dropped.
func (s *Scanner) Init(src []byte, errHandler func(int, string)) {
	s.src = src
	s.err = errHandler
	s.start = 0
	s.cur = 0
	s.line = 1
}

func (s *Scanner) errorf(format string, args ...any) {
	if s.err != nil {
		s.err(s.line, fmt.Sprintf(format, args...))
	}
}

func (s *Scanner) atEnd() bool { return s.cur >= len(s.src) }

// advance only if the current byte matches expected.
func (s *Scanner) advanceIf(expected byte) bool {
	if s.atEnd() || s.src[s.cur] != expected {
		return false
	}
	s.cur++
	return true
}

func (s *Scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.src[s.cur]
}

func (s *Scanner) peekNext() byte {
	if s.cur+1 >= len(s.src) {
		return 0
	}
	return s.src[s.cur+1]
}

func (s *Scanner) lexeme() string { return string(s.src[s.start:s.cur]) }

// make a Value for the token being scanned, using the raw source lexeme.
func (s *Scanner) value(tok token.Token) token.Value {
	return token.Value{Type: tok, Raw: s.lexeme(), Line: s.line}
}

// Scan returns the next token in the source, storing its value in tokVal.
// Once the source is exhausted it returns EOF forever.
func (s *Scanner) Scan(tokVal *token.Value) token.Token {
	for !s.atEnd() {
		s.start = s.cur
		c := s.src[s.cur]
		s.cur++

		switch c {
		case '(':
			*tokVal = s.value(token.LPAREN)
		case ')':
			*tokVal = s.value(token.RPAREN)
		case '{':
			*tokVal = s.value(token.LBRACE)
		case '}':
			*tokVal = s.value(token.RBRACE)
		case ',':
			*tokVal = s.value(token.COMMA)
		case '.':
			*tokVal = s.value(token.DOT)
		case '-':
			*tokVal = s.value(token.MINUS)
		case '+':
			*tokVal = s.value(token.PLUS)
		case ';':
			*tokVal = s.value(token.SEMICOLON)
		case '*':
			*tokVal = s.value(token.STAR)
		case '?':
			*tokVal = s.value(token.QUESTION)
		case ':':
			*tokVal = s.value(token.COLON)
		case '%':
			*tokVal = s.value(token.PERCENT)

		case '!':
			if s.advanceIf('=') {
				*tokVal = s.value(token.BANGEQ)
			} else {
				*tokVal = s.value(token.BANG)
			}
		case '<':
			if s.advanceIf('=') {
				*tokVal = s.value(token.LE)
			} else {
				*tokVal = s.value(token.LT)
			}
		case '>':
			if s.advanceIf('=') {
				*tokVal = s.value(token.GE)
			} else {
				*tokVal = s.value(token.GT)
			}
		case '=':
			if s.advanceIf('=') {
				*tokVal = s.value(token.EQEQ)
			} else {
				*tokVal = s.value(token.EQ)
			}

		case '/':
			if s.advanceIf('/') {
				// line comment, runs to the end of the line
				for !s.atEnd() && s.src[s.cur] != '\n' {
					s.cur++
				}
				continue
			}
			if s.advanceIf('*') {
				// block comment, not nested; running to EOF is accepted silently
				s.blockComment()
				continue
			}
			*tokVal = s.value(token.SLASH)

		case '"':
			if !s.shortString(tokVal) {
				continue
			}

		case ' ', '\r', '\t':
			continue
		case '\n':
			s.line++
			continue

		default:
			switch {
			case isDigit(c):
				s.number(c, tokVal)
			case isAlpha(c):
				s.ident(tokVal)
			default:
				s.errorf("unexpected character: '%c'", c)
				continue
			}
		}
		return tokVal.Type
	}

	s.start = s.cur
	*tokVal = token.Value{Type: token.EOF, Line: s.line}
	return token.EOF
}

func (s *Scanner) blockComment() {
	for !s.atEnd() {
		if s.src[s.cur] == '\n' {
			s.line++
		}
		if s.advanceIf('*') {
			if s.advanceIf('/') {
				return
			}
			continue
		}
		s.cur++
	}
}

// shortString scans a double-quoted string literal. Strings may span lines
// and carry no escape sequences. It reports false if the literal is
// unterminated, in which case no token is produced.
func (s *Scanner) shortString(tokVal *token.Value) bool {
	for !s.atEnd() && s.src[s.cur] != '"' {
		if s.src[s.cur] == '\n' {
			s.line++
		}
		s.cur++
	}
	if s.atEnd() {
		s.errorf("unterminated string")
		return false
	}
	s.cur++ // closing quote
	val := s.value(token.STRING)
	val.String = string(s.src[s.start+1 : s.cur-1])
	*tokVal = val
	return true
}

func (s *Scanner) number(first byte, tokVal *token.Value) {
	if first == '0' && !s.atEnd() && isDigit(s.src[s.cur]) {
		s.errorf("multidigit number with leading zero")
	}

	for !s.atEnd() && isDigit(s.src[s.cur]) {
		s.cur++
	}
	// a fractional part requires digits on both sides of the dot
	if s.peek() == '.' && isDigit(s.peekNext()) {
		s.cur++
		for !s.atEnd() && isDigit(s.src[s.cur]) {
			s.cur++
		}
	}

	val := s.value(token.NUMBER)
	f, err := strconv.ParseFloat(val.Raw, 64)
	if err != nil {
		// a digits-and-dot lexeme can only fail the range check
		s.errorf("number literal value out of range")
	}
	val.Float = f
	*tokVal = val
}

func (s *Scanner) ident(tokVal *token.Value) {
	for !s.atEnd() && (isAlnum(s.src[s.cur]) || s.src[s.cur] == '_') {
		s.cur++
	}
	val := s.value(token.LookupKw(s.lexeme()))
	*tokVal = val
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }
