package core

import "strings"

// BeginSelection starts a new selection anchored at a virtual row/col
// (pointer-press, §4.3 step 4). Any previous selection is discarded.
func (b *Buffer) BeginSelection(virtualRow, col int) {
	b.sel = Selection{
		StartRow: virtualRow, StartCol: col,
		EndRow: virtualRow, EndCol: col,
		Active: true,
	}
}

// UpdateSelection moves the selection's live endpoint while selecting
// (pointer-motion, §4.3). It is a no-op if no selection is active.
func (b *Buffer) UpdateSelection(virtualRow, col int) {
	if !b.sel.Active {
		return
	}
	b.sel.EndRow = virtualRow
	b.sel.EndCol = col
}

// EndSelection finalises the selection (pointer-release) and returns
// the linearised selected text for the clipboard collaborator.
func (b *Buffer) EndSelection() string {
	b.sel.Active = false
	return b.LinearizeSelection()
}

// Selection returns the current selection state.
func (b *Buffer) Selection() Selection { return b.sel }

// ClearSelection drops the current selection entirely.
func (b *Buffer) ClearSelection() { b.sel = newSelection() }

// LinearizeSelection implements §4.3's linearisation: iterate rows
// from the smaller to the larger virtual row, picking column bounds
// per row ([min col, max col] on single-row selections; start_col/end_col
// on the first/last row of a multi-row selection, full width
// in between), skipping zero bytes within a row, and joining rows
// with '\n'.
func (b *Buffer) LinearizeSelection() string {
	if b.sel.Cleared() {
		return ""
	}
	topRow, topCol, botRow, botCol := b.sel.bounds()

	var out strings.Builder
	for r := topRow; r <= botRow; r++ {
		var colStart, colEnd int
		switch {
		case topRow == botRow:
			colStart, colEnd = topCol, botCol
		case r == topRow:
			colStart, colEnd = topCol, b.cols-1
		case r == botRow:
			colStart, colEnd = 0, botCol
		default:
			colStart, colEnd = 0, b.cols-1
		}
		if colStart > colEnd {
			colStart, colEnd = colEnd, colStart
		}

		data, ok := b.RowAt(r)
		if ok {
			for c := colStart; c <= colEnd && c < MaxCols; c++ {
				if data[c].Ch != 0 {
					out.WriteByte(data[c].Ch)
				}
			}
		}
		if r < botRow {
			out.WriteByte('\n')
		}
	}
	return out.String()
}
