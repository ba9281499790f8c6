// Package core implements the escape parser, screen model, buffer
// manager, selection engine, and input encoder described in §3 and §4
// of the terminal specification. It has no knowledge of PTYs, windows,
// or fonts — those live in the adapter packages (shell, window,
// render) that drive this package from the outside.
package core

// Grid limits. Storage is fixed-size regardless of the active
// rows/cols, matching the source terminal's row/column arrays: a
// whole-line clear always touches the full MaxCols width, so cells
// beyond the active column count remain zeroed (and appear as spaces)
// if the grid is later grown. See DESIGN.md "Open Questions".
const (
	MaxRows = 128
	MaxCols = 256

	// ScrollbackSize is the retired-row capacity of the scrollback ring.
	ScrollbackSize = 1000

	// DefaultFg and DefaultBg are the palette indices used when no
	// other color has been selected, matching the grounding source's
	// DEFAULT_FG/DEFAULT_BG (config.h: 7 = white, 0 = black) rather than
	// index 0 for both, since every built-in theme's palette index 0 is
	// near-black against an equally dark background.
	DefaultFg uint8 = 7
	DefaultBg uint8 = 0
)

// Cell is a single grid position: a printable byte (0 means empty)
// plus a foreground and background palette index in [0, 16).
type Cell struct {
	Ch byte
	Fg uint8
	Bg uint8
}

// emptyCell (no character, default style) is what every clear
// operation writes.
var emptyCell = Cell{Ch: 0, Fg: DefaultFg, Bg: DefaultBg}
