package core

import "strconv"

// parserState is the Escape Parser's two states (§4.1).
type parserState int

const (
	stateGround parserState = iota
	stateEscape
)

// escBufSize bounds the buffered escape sequence (BUFSIZE in §4.1).
const escBufSize = 1024

// Parser is the byte-by-byte escape-sequence state machine of §4.1. It
// owns no screen state itself; every dispatched action mutates the
// Buffer Manager it was constructed with.
type Parser struct {
	buf   *Buffer
	state parserState
	esc   []byte
}

// NewParser creates a Parser driving the given Buffer Manager.
func NewParser(b *Buffer) *Parser {
	return &Parser{buf: b, state: stateGround, esc: make([]byte, 0, escBufSize)}
}

// Feed processes a byte stream read from the PTY, one byte at a time,
// applying actions to the Buffer Manager in byte order (§5).
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		p.feedByte(b)
	}
}

func (p *Parser) feedByte(c byte) {
	if p.state == stateEscape {
		p.feedEscape(c)
		return
	}
	p.feedGround(c)
}

// feedGround implements the ground-state byte handling table of §4.1.
func (p *Parser) feedGround(c byte) {
	switch {
	case c == 0x1b:
		p.state = stateEscape
		p.esc = p.esc[:0]
	case c == 0x0a:
		p.buf.LineFeed()
	case c == 0x0d:
		p.buf.CarriageReturn()
	case c == 0x08:
		p.buf.Backspace()
	case c >= 0x20 && c <= 0x7e:
		p.buf.WritePrintable(c)
	default:
		// Silently ignored (§4.1).
	}
}

// feedEscape buffers one escape byte and dispatches on termination.
//
// The source description terminates on a letter or one of '?', '@'.
// Applied literally to every buffered byte, '?' would end sequences
// like "[?1049h" after only two bytes, since '?' always appears as a
// private-mode marker immediately after '[' rather than as a final
// byte — no entry in the dispatch table of §4.1 ends with '?'. That
// reading would make every '?'-prefixed DECSET/DECRST entry
// undispatchable, contradicting the dispatch table itself. '?' is
// therefore treated as an ordinary intermediate byte here; only a
// letter or '@' (the final byte of "ESC [ n @") terminates, plus a '7'
// or '8' directly after ESC, which completes ESC 7 / ESC 8 on its own.
func (p *Parser) feedEscape(c byte) {
	if len(p.esc) >= escBufSize-1 {
		p.state = stateGround
		p.esc = p.esc[:0]
		return
	}
	p.esc = append(p.esc, c)
	if isEscapeTerminator(c) || (len(p.esc) == 1 && (c == '7' || c == '8')) {
		p.dispatch(p.esc)
		p.state = stateGround
		p.esc = p.esc[:0]
	}
}

func isEscapeTerminator(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z') || c == '@'
}

// dispatch applies a terminated escape sequence (leading ESC already
// stripped by the caller's buffering) to the Buffer Manager. Unknown
// sequences are dropped silently (§4.1, §7).
func (p *Parser) dispatch(seq []byte) {
	if len(seq) == 0 {
		return
	}
	if seq[0] != '[' {
		switch string(seq) {
		case "7":
			p.buf.SaveCursor()
		case "8":
			p.buf.RestoreCursor()
		}
		return
	}

	body := seq[1:]
	if len(body) == 0 {
		return
	}
	if body[0] == '?' {
		p.dispatchPrivate(body[1:])
		return
	}
	p.dispatchCSI(body)
}

// dispatchPrivate handles "ESC [ ? <n> h/l" DECSET/DECRST sequences.
func (p *Parser) dispatchPrivate(body []byte) {
	if len(body) == 0 {
		return
	}
	final := body[len(body)-1]
	on := final == 'h'
	if final != 'h' && final != 'l' {
		return
	}
	n, _ := strconv.Atoi(string(body[:len(body)-1]))
	switch n {
	case 7:
		p.buf.SetWrap(on)
	case 25:
		// No-op: cursor visibility is a renderer concern (§4.1).
	case 1000:
		if on {
			p.buf.SetMouseMode(1000)
		} else {
			p.buf.SetMouseMode(0)
		}
	case 1002:
		if on {
			p.buf.SetMouseMode(1002)
		} else {
			p.buf.SetMouseMode(0)
		}
	case 1003:
		if on {
			p.buf.SetMouseMode(1003)
		} else {
			p.buf.SetMouseMode(0)
		}
	case 1049:
		if on {
			p.buf.EnterAlt()
		} else {
			p.buf.ExitAlt()
		}
	case 1:
		// No-op: application cursor keys are an Input Encoder concern.
	}
}

// dispatchCSI handles the non-private CSI sequences of §4.1's table.
func (p *Parser) dispatchCSI(body []byte) {
	final := body[len(body)-1]
	params := string(body[:len(body)-1])

	switch final {
	case 'J':
		switch params {
		case "", "0":
			p.buf.ClearBelow()
		case "2":
			p.buf.ClearScreen()
		case "1":
			p.buf.ClearAbove()
		}
	case 'K':
		p.buf.ClearToEOL()
	case 'H':
		if params == "" {
			p.buf.CursorHome()
			return
		}
		row, col := parsePair(params, 1, 1)
		p.buf.SetCursorPos(row, col)
	case 'A':
		p.buf.MoveUp(parseCount(params))
	case 'B':
		p.buf.MoveDown(parseCount(params))
	case 'C':
		p.buf.MoveRight(parseCount(params))
	case 'D':
		p.buf.MoveLeft(parseCount(params))
	case 'm':
		if params == "" {
			p.buf.ApplySGR(0)
			return
		}
		for _, code := range parseList(params) {
			p.buf.ApplySGR(code)
		}
	case 'r':
		top, bottom := parsePair(params, 1, p.buf.Rows())
		p.buf.SetScrollRegion(top-1, bottom-1)
	case '@':
		p.buf.InsertBlanks(parseCount(params))
	}
}

// parseCount parses a single optional numeric parameter, defaulting
// to 1 when absent or non-positive (§4.1's "n" cursor-movement params).
func parseCount(s string) int {
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 1
	}
	return n
}

// parseList splits a semicolon-separated SGR parameter list, parsed
// left to right (§4.1). An empty entry parses as 0; a non-numeric
// entry is skipped.
func parseList(s string) []int {
	var out []int
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			field := s[start:i]
			if field == "" {
				out = append(out, 0)
			} else if n, err := strconv.Atoi(field); err == nil {
				out = append(out, n)
			}
			start = i + 1
		}
	}
	return out
}

// parsePair parses "a;b", defaulting either side when absent.
func parsePair(s string, defA, defB int) (int, int) {
	a, b := defA, defB
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ';' {
			field := s[:i]
			if field != "" {
				if n, err := strconv.Atoi(field); err == nil {
					a = n
				}
			}
			if i < len(s) {
				rest := s[i+1:]
				if rest != "" {
					if n, err := strconv.Atoi(rest); err == nil {
						b = n
					}
				}
			}
			break
		}
	}
	return a, b
}
