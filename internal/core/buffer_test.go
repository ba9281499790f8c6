package core

import "testing"

func rowString(b *Buffer, row int) string {
	g := b.Active()
	out := make([]byte, b.Cols())
	for c := 0; c < b.Cols(); c++ {
		ch := g.Cell(row, c).Ch
		if ch == 0 {
			ch = ' '
		}
		out[c] = ch
	}
	return string(out)
}

func feed(b *Buffer, s string) {
	p := NewParser(b)
	p.Feed([]byte(s))
}

// Scenario 1: "Hi\n" -> row0 "Hi      ", cursor (1,0), scrollback empty.
func TestScenarioBasicLineFeed(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "Hi\n")

	if got := rowString(b, 0); got != "Hi      " {
		t.Fatalf("row0 = %q, want %q", got, "Hi      ")
	}
	row, col := b.Cursor()
	if row != 1 || col != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", row, col)
	}
	if b.ScrollbackLen() != 0 {
		t.Fatalf("scrollback len = %d, want 0", b.ScrollbackLen())
	}
}

// Scenario 2: "ABCDEFGH" + "X" with wrap=true -> row0 "ABCDEFGH",
// row1 "X       ", cursor (1,1).
func TestScenarioWrap(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "ABCDEFGHX")

	if got := rowString(b, 0); got != "ABCDEFGH" {
		t.Fatalf("row0 = %q, want ABCDEFGH", got)
	}
	if got := rowString(b, 1); got != "X       " {
		t.Fatalf("row1 = %q, want %q", got, "X       ")
	}
	row, col := b.Cursor()
	if row != 1 || col != 1 {
		t.Fatalf("cursor = (%d,%d), want (1,1)", row, col)
	}
}

// Scenario 3: "\033[31mR\033[0mG" -> (0,0) fg=1, (0,1) fg=DefaultFg.
func TestScenarioSGR(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "\033[31mR\033[0mG")

	c0 := b.Active().Cell(0, 0)
	c1 := b.Active().Cell(0, 1)
	if c0.Fg != 1 {
		t.Fatalf("cell(0,0).Fg = %d, want 1", c0.Fg)
	}
	if c1.Fg != DefaultFg {
		t.Fatalf("cell(0,1).Fg = %d, want %d", c1.Fg, DefaultFg)
	}
}

// Scenario 4: "AAAAAAAA\n" x 5 -> scrollback_len=2 after 5th LF, newest
// scrollback row is "AAAAAAAA", grid rows 0-3 hold the last four
// lines (row 3 empty after the trailing LF).
func TestScenarioScrollback(t *testing.T) {
	b := NewBuffer(4, 8)
	for i := 0; i < 5; i++ {
		feed(b, "AAAAAAAA\n")
	}

	if b.ScrollbackLen() != 2 {
		t.Fatalf("scrollback len = %d, want 2", b.ScrollbackLen())
	}
	newest := b.back.at(b.ScrollbackLen() - 1)
	newestText := make([]byte, 8)
	for c := range newestText {
		newestText[c] = newest[c].Ch
	}
	if string(newestText) != "AAAAAAAA" {
		t.Fatalf("newest scrollback row = %q, want AAAAAAAA", string(newestText))
	}
	for r := 0; r < 3; r++ {
		if got := rowString(b, r); got != "AAAAAAAA" {
			t.Fatalf("row%d = %q, want AAAAAAAA", r, got)
		}
	}
	if got := rowString(b, 3); got != "        " {
		t.Fatalf("row3 = %q, want blank", got)
	}
}

// Scenario 5: entering and leaving the alternate screen doesn't touch
// scrollback or the primary grid, and leaves the cursor homed.
func TestScenarioAltScreenIsolation(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "AAAAAAAA\n")
	before := b.ScrollbackLen()
	primaryRow0Before := rowString(b, 0)

	feed(b, "\033[?1049hALT\033[?1049l")

	if b.ScrollbackLen() != before {
		t.Fatalf("scrollback len changed: %d -> %d", before, b.ScrollbackLen())
	}
	if got := rowString(b, 0); got != primaryRow0Before {
		t.Fatalf("primary row0 changed: %q -> %q", primaryRow0Before, got)
	}
	row, col := b.Cursor()
	if row != 0 || col != 0 {
		t.Fatalf("cursor = (%d,%d), want (0,0)", row, col)
	}
	if b.UseAltBuffer() {
		t.Fatalf("still on alternate buffer after ESC[?1049l")
	}
}

// Scenario 6 (operational reading, see DESIGN.md): "abc\033[H\033[2@X"
// inserts 2 blanks at column 0 before writing 'X', per §4.2's
// insert_blanks definition and the source's shift loop.
func TestScenarioInsertBlanks(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "abc\033[H\033[2@X")

	g := b.Active()
	want := map[int]byte{0: 'X', 1: 0, 2: 'a', 3: 'b', 4: 'c'}
	for col, ch := range want {
		if got := g.Cell(0, col).Ch; got != ch {
			t.Fatalf("cell(0,%d) = %q, want %q", col, got, ch)
		}
	}
}

// P1: cursor clamping after every dispatch.
func TestInvariantCursorClamping(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "\033[100B\033[100C")
	row, col := b.Cursor()
	if row < 0 || row >= b.Rows() || col < 0 || col >= b.Cols() {
		t.Fatalf("cursor out of bounds: (%d,%d)", row, col)
	}
}

// P2: scroll region bounds.
func TestInvariantScrollRegion(t *testing.T) {
	b := NewBuffer(10, 8)
	feed(b, "\033[3;100r")
	top, bottom := b.ScrollRegion()
	if top < 0 || top > bottom || bottom >= b.Rows() {
		t.Fatalf("scroll region invalid: (%d,%d)", top, bottom)
	}
}

// P3: scrollback isolation under alt screen.
func TestInvariantScrollbackIsolation(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "\033[?1049h")
	feed(b, "one\ntwo\nthree\nfour\nfive\n")
	if b.ScrollbackLen() != 0 {
		t.Fatalf("scrollback len = %d, want 0 while on alt screen", b.ScrollbackLen())
	}
}

// P4: wrap disabled means writing past cols never advances the row.
func TestInvariantWrapDisabled(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "\033[?7l")
	feed(b, "ABCDEFGHIJKL")
	row, _ := b.Cursor()
	if row != 0 {
		t.Fatalf("row advanced to %d with wrap disabled", row)
	}
}

// P5: save/restore idempotence.
func TestInvariantSaveRestore(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "abc")
	rowBefore, colBefore := b.Cursor()
	feed(b, "\0337\0338")
	row, col := b.Cursor()
	if row != rowBefore || col != colBefore {
		t.Fatalf("cursor moved across save/restore: (%d,%d) -> (%d,%d)", rowBefore, colBefore, row, col)
	}
}

// P6: SGR reset restores default colors.
func TestInvariantSGRReset(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "\033[31;44m")
	feed(b, "\033[0m")
	fg, bg := b.CurrentStyle()
	if fg != DefaultFg || bg != DefaultBg {
		t.Fatalf("style after reset = (%d,%d), want defaults", fg, bg)
	}
}

// P7: scrollback eviction after more than ScrollbackSize scroll-ups.
func TestInvariantScrollbackEviction(t *testing.T) {
	b := NewBuffer(2, 4)
	total := ScrollbackSize + 50
	for i := 0; i < total; i++ {
		feed(b, "Z\n")
	}
	if b.ScrollbackLen() != ScrollbackSize {
		t.Fatalf("scrollback len = %d, want %d", b.ScrollbackLen(), ScrollbackSize)
	}
}

// P8: concatenating the linearised selection of the full visible
// region equals the row-wise non-zero concatenation with \n separators.
func TestInvariantSelectionLinearizationFullRegion(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "one\ntwo\nthree\n")

	last := b.VisibleRowCount() - 1
	b.BeginSelection(0, 0)
	b.UpdateSelection(last, b.Cols()-1)
	got := b.LinearizeSelection()

	var want []byte
	for r := 0; r <= last; r++ {
		data, ok := b.RowAt(r)
		if !ok {
			continue
		}
		for c := 0; c < b.Cols(); c++ {
			if data[c].Ch != 0 {
				want = append(want, data[c].Ch)
			}
		}
		if r < last {
			want = append(want, '\n')
		}
	}
	if got != string(want) {
		t.Fatalf("linearised = %q, want %q", got, string(want))
	}
}

// Single-row selection bounds to [StartCol, EndCol] on that row only.
func TestSelectionSingleRowBounds(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "abcdef\n")

	b.BeginSelection(0, 1)
	b.UpdateSelection(0, 3)
	if got := b.LinearizeSelection(); got != "bcd" {
		t.Fatalf("linearised = %q, want %q", got, "bcd")
	}
}

// A selection with reversed endpoints (end before start) normalises
// via bounds() to the same result as the forward selection.
func TestSelectionReversedEndpoints(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "abcdef\n")

	b.BeginSelection(0, 3)
	b.UpdateSelection(0, 1)
	if got := b.LinearizeSelection(); got != "bcd" {
		t.Fatalf("linearised = %q, want %q", got, "bcd")
	}
}

// ClearSelection drops a selection back to the cleared state.
func TestSelectionClear(t *testing.T) {
	b := NewBuffer(4, 8)
	feed(b, "abc\n")
	b.BeginSelection(0, 0)
	b.UpdateSelection(0, 2)
	b.ClearSelection()
	if !b.Selection().Cleared() {
		t.Fatalf("selection not cleared")
	}
	if got := b.LinearizeSelection(); got != "" {
		t.Fatalf("linearised = %q, want empty", got)
	}
}
