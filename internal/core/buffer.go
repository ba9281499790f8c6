package core

// Buffer is the Buffer Manager of §4.2: it owns the primary and
// alternate grids, the scrollback ring, the shared cursor-save slot,
// scroll region, shared style state, and the selection. All mutation
// that the Escape Parser performs on screen state goes through it.
type Buffer struct {
	primary   Grid
	alternate Grid
	useAlt    bool

	scrollTop    int
	scrollBottom int

	savedRow int
	savedCol int

	currentFg uint8
	currentBg uint8
	wrap      bool

	mouseEnabled bool
	mouseMode    int

	back         scrollback
	scrollOffset int

	sel Selection

	rows int
	cols int
}

// NewBuffer creates a Buffer Manager for the given terminal size,
// clamped to MaxRows x MaxCols (§3).
func NewBuffer(rows, cols int) *Buffer {
	if rows > MaxRows {
		rows = MaxRows
	}
	if cols > MaxCols {
		cols = MaxCols
	}
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	return &Buffer{
		primary:      newGrid(rows, cols),
		alternate:    newGrid(rows, cols),
		scrollTop:    0,
		scrollBottom: rows - 1,
		currentFg:    DefaultFg,
		currentBg:    DefaultBg,
		wrap:         true,
		sel:          newSelection(),
		rows:         rows,
		cols:         cols,
	}
}

// Active returns the grid currently receiving writes: primary or
// alternate depending on UseAltBuffer (§4.1 "Open questions").
func (b *Buffer) Active() *Grid {
	if b.useAlt {
		return &b.alternate
	}
	return &b.primary
}

// Rows and Cols report the terminal's current dimensions.
func (b *Buffer) Rows() int { return b.rows }
func (b *Buffer) Cols() int { return b.cols }

// UseAltBuffer reports whether the alternate screen is active.
func (b *Buffer) UseAltBuffer() bool { return b.useAlt }

// Wrap reports whether auto-wrap at the right margin is enabled.
func (b *Buffer) Wrap() bool { return b.wrap }

// SetWrap enables or disables auto-wrap (DECSET ?7, §4.1).
func (b *Buffer) SetWrap(on bool) { b.wrap = on }

// MouseMode reports whether mouse reporting is enabled and its mode.
func (b *Buffer) MouseMode() (enabled bool, mode int) { return b.mouseEnabled, b.mouseMode }

// SetMouseMode sets the mouse reporting mode (0 disables it, §4.1).
func (b *Buffer) SetMouseMode(mode int) {
	b.mouseMode = mode
	b.mouseEnabled = mode != 0
}

// CurrentStyle returns the style that will be applied to the next
// write (I6).
func (b *Buffer) CurrentStyle() (fg, bg uint8) { return b.currentFg, b.currentBg }

// ScrollRegion returns the current scroll region, 0-based inclusive.
func (b *Buffer) ScrollRegion() (top, bottom int) { return b.scrollTop, b.scrollBottom }

// ScrollOffset returns the current viewport scroll offset (<= 0).
func (b *Buffer) ScrollOffset() int { return b.scrollOffset }

// ScrollbackLen returns the number of retired rows currently held.
func (b *Buffer) ScrollbackLen() int { return b.back.length() }

// Cursor returns the active grid's cursor position.
func (b *Buffer) Cursor() (row, col int) {
	g := b.Active()
	return g.CursorRow, g.CursorCol
}

func (b *Buffer) clampActiveCursor() {
	g := b.Active()
	if g.CursorRow < 0 {
		g.CursorRow = 0
	}
	if g.CursorRow >= b.rows {
		g.CursorRow = b.rows - 1
	}
	if g.CursorCol < 0 {
		g.CursorCol = 0
	}
	if g.CursorCol >= b.cols {
		g.CursorCol = b.cols - 1
	}
}

// --- ground-state byte handling (§4.1) ---

// WritePrintable writes a single printable byte at the cursor using
// the current style, advances the cursor, and wraps/scrolls on
// overflow when wrap is enabled.
//
// Autowrap is deferred: filling the last column sets the cursor to the
// pending column (cols) without yet moving to the next row, so that an
// immediately following control byte (LF/CR/BS) sees the still-current
// row rather than one already advanced past it. The next printable
// byte resolves the pending wrap before it writes (§8's scrollback
// scenario depends on this: a full-width line followed by its own "\n"
// must scroll exactly once, not twice). With wrap disabled the column
// is clamped to the last cell instead, so further bytes overwrite it
// and the row never advances (P4).
func (b *Buffer) WritePrintable(ch byte) {
	g := b.Active()
	if g.CursorCol >= b.cols {
		if !b.wrap {
			g.CursorCol = b.cols - 1
		} else {
			g.CursorCol = 0
			g.CursorRow++
			if g.CursorRow > b.scrollBottom {
				b.ScrollUp()
				g.CursorRow = b.scrollBottom
			}
		}
	}
	if g.CursorRow >= b.rows || g.CursorCol >= b.cols {
		return
	}
	g.put(g.CursorRow, g.CursorCol, Cell{Ch: ch, Fg: b.currentFg, Bg: b.currentBg})
	g.CursorCol++
	if g.CursorCol >= b.cols && !b.wrap {
		g.CursorCol = b.cols - 1
	}
}

// LineFeed handles 0x0A: advance to the next row, scrolling the
// scroll region if the cursor overflows scrollBottom.
func (b *Buffer) LineFeed() {
	g := b.Active()
	g.CursorRow++
	g.CursorCol = 0
	if g.CursorRow > b.scrollBottom {
		b.ScrollUp()
		g.CursorRow = b.scrollBottom
	}
}

// CarriageReturn handles 0x0D.
func (b *Buffer) CarriageReturn() {
	b.Active().CursorCol = 0
}

// Backspace handles 0x08: move left and overwrite with a space in the
// default style (§4.1).
func (b *Buffer) Backspace() {
	g := b.Active()
	if g.CursorCol > 0 {
		g.CursorCol--
		g.put(g.CursorRow, g.CursorCol, Cell{Ch: ' ', Fg: DefaultFg, Bg: DefaultBg})
	}
}

// --- scrolling ---

// ScrollUp retires scrollTop (on the primary screen only, appending
// to scrollback) and shifts [scrollTop+1, scrollBottom] up by one,
// clearing the vacated bottom row (§4.2, I3).
func (b *Buffer) ScrollUp() {
	g := b.Active()
	if !b.useAlt {
		b.back.append(g.data[b.scrollTop])
	}
	g.shiftUp(b.scrollTop, b.scrollBottom)
}

// --- clearing ---

// ClearScreen clears the active grid entirely and homes the cursor
// (ESC [ 2 J).
func (b *Buffer) ClearScreen() {
	g := b.Active()
	g.clearAll()
	g.CursorRow = 0
	g.CursorCol = 0
}

// CursorHome moves the cursor to (0,0) (ESC [ H).
func (b *Buffer) CursorHome() {
	g := b.Active()
	g.CursorRow = 0
	g.CursorCol = 0
}

// ClearToEOL clears from the cursor to end of line, inclusive (ESC [ K).
func (b *Buffer) ClearToEOL() { b.Active().clearToEOL() }

// ClearBelow clears from the cursor to end of screen (ESC [ J).
func (b *Buffer) ClearBelow() { b.Active().clearBelow() }

// ClearAbove clears from start of screen to the cursor, inclusive
// (ESC [ 1 J).
func (b *Buffer) ClearAbove() { b.Active().clearAbove() }

// InsertBlanks inserts n blanks at the cursor, shifting the row right
// (ESC [ n @).
func (b *Buffer) InsertBlanks(n int) { b.Active().insertBlanks(n) }

// --- cursor movement ---

// MoveUp, MoveDown, MoveRight, MoveLeft implement ESC [ n A/B/C/D.
func (b *Buffer) MoveUp(n int) {
	g := b.Active()
	g.CursorRow -= n
	if g.CursorRow < 0 {
		g.CursorRow = 0
	}
}

func (b *Buffer) MoveDown(n int) {
	g := b.Active()
	g.CursorRow += n
	if g.CursorRow >= b.rows {
		g.CursorRow = b.rows - 1
	}
}

func (b *Buffer) MoveRight(n int) {
	g := b.Active()
	g.CursorCol += n
	if g.CursorCol >= b.cols {
		g.CursorCol = b.cols - 1
	}
}

func (b *Buffer) MoveLeft(n int) {
	g := b.Active()
	g.CursorCol -= n
	if g.CursorCol < 0 {
		g.CursorCol = 0
	}
}

// SetCursorPos implements ESC [ r ; c H: row/col are 1-based on input,
// clamped after conversion (§4.1).
func (b *Buffer) SetCursorPos(row, col int) {
	g := b.Active()
	g.CursorRow = row - 1
	g.CursorCol = col - 1
	b.clampActiveCursor()
}

// --- save/restore, scroll region, alt screen ---

// SaveCursor implements ESC 7 (DECSC). The saved slot is shared by
// both screens per source behavior (§3, §9).
func (b *Buffer) SaveCursor() {
	g := b.Active()
	b.savedRow = g.CursorRow
	b.savedCol = g.CursorCol
}

// RestoreCursor implements ESC 8 (DECRC), clamped to the active grid.
func (b *Buffer) RestoreCursor() {
	g := b.Active()
	g.CursorRow = b.savedRow
	g.CursorCol = b.savedCol
	b.clampActiveCursor()
}

// SetScrollRegion implements ESC [ t ; b r: top/bottom are 0-based on
// input, already converted by the caller, and clamped here (§4.1).
func (b *Buffer) SetScrollRegion(top, bottom int) {
	if top < 0 {
		top = 0
	}
	if bottom >= b.rows {
		bottom = b.rows - 1
	}
	if top > bottom {
		top, bottom = bottom, top
	}
	b.scrollTop = top
	b.scrollBottom = bottom
}

// EnterAlt switches to the alternate grid, clears it, and homes the
// cursor (ESC [ ? 1049 h). Preserved source behavior: entering the
// alternate screen always clears it, and leaving it never restores
// the primary cursor (§9).
func (b *Buffer) EnterAlt() {
	b.useAlt = true
	b.alternate.clearAll()
	b.alternate.CursorRow = 0
	b.alternate.CursorCol = 0
}

// ExitAlt switches back to the primary grid and forces the cursor to
// (0,0) (ESC [ ? 1049 l).
func (b *Buffer) ExitAlt() {
	b.useAlt = false
	b.primary.CursorRow = 0
	b.primary.CursorCol = 0
}

// --- SGR ---

// ApplySGR applies one SGR code (§4.1's left-to-right semicolon list).
func (b *Buffer) ApplySGR(code int) {
	switch {
	case code == 0:
		b.currentFg = DefaultFg
		b.currentBg = DefaultBg
	case code >= 30 && code <= 37:
		b.currentFg = uint8(code - 30)
	case code >= 40 && code <= 47:
		b.currentBg = uint8(code - 40)
	case code >= 90 && code <= 97:
		b.currentFg = uint8(code-90) + 8
	case code >= 100 && code <= 107:
		b.currentBg = uint8(code-100) + 8
	}
	// All other codes are ignored per §4.1.
}

// --- resize (§4.5) ---

// Resize changes both grids' active dimensions, resets scrollBottom
// to rows-1, and clamps both cursors into the new bounds. No reflow
// is performed: rows keep their existing bytes.
func (b *Buffer) Resize(rows, cols int) {
	if rows > MaxRows {
		rows = MaxRows
	}
	if cols > MaxCols {
		cols = MaxCols
	}
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}
	b.rows = rows
	b.cols = cols
	b.primary.resize(rows, cols)
	b.alternate.resize(rows, cols)
	b.scrollBottom = rows - 1
	if b.scrollTop > b.scrollBottom {
		b.scrollTop = 0
	}
}

// --- viewport scrolling ---

// ScrollViewport adjusts the scroll offset by delta, clamped to
// [-scrollbackLen, 0] (§3, Shift+Up/Down).
func (b *Buffer) ScrollViewport(delta int) {
	b.scrollOffset += delta
	if b.scrollOffset < -b.back.length() {
		b.scrollOffset = -b.back.length()
	}
	if b.scrollOffset > 0 {
		b.scrollOffset = 0
	}
}

// --- virtual coordinate space (§3, §4.3) ---

// VirtualRow converts a grid row (the row the renderer or pointer
// indexes relative to the top of the visible viewport) into the
// unified virtual coordinate that scrollback + selection use.
//
// scrollOffset here is <= 0, zero at the live position and as negative
// as -scrollbackLen at maximum scrollback (see ScrollViewport), so
// adding it (rather than subtracting, as a positive-offset convention
// would) is what makes gridRow 0 land on virtual row 0 at max
// scrollback and on virtual row scrollbackLen at the live position.
// See DESIGN.md's Open Questions for why this sign was chosen over
// the literal grid_row + scrollback_len - scroll_offset formula.
func (b *Buffer) VirtualRow(gridRow int) int {
	return gridRow + b.back.length() + b.scrollOffset
}

// RowAt resolves a virtual row into its MaxCols-wide backing data: if
// r < scrollbackLen it reads scrollback, otherwise it reads the
// active grid at r - scrollbackLen (§4.3).
func (b *Buffer) RowAt(r int) (data [MaxCols]Cell, ok bool) {
	n := b.back.length()
	if r < 0 {
		return data, false
	}
	if r < n {
		return b.back.at(r), true
	}
	gridRow := r - n
	if gridRow < 0 || gridRow >= b.rows {
		return data, false
	}
	return b.Active().data[gridRow], true
}

// VisibleRowCount is the number of virtual rows currently addressable
// (scrollback + active grid).
func (b *Buffer) VisibleRowCount() int { return b.back.length() + b.rows }
