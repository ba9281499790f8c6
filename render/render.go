// Package render is the concrete Renderer Adapter (§4.6): it turns a
// core.Buffer snapshot into OpenGL draw calls against a glyph atlas,
// using a themeable 16-colour palette (§3's palette wrap, P9).
package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/raventerm/raventerm/internal/core"
)

// Theme holds the non-indexed colors: the chrome around and between
// cells, rather than the 16-entry palette cells draw from.
type Theme struct {
	Background [4]float32
	Foreground [4]float32
	Cursor     [4]float32
	Selection  [4]float32
}

// DefaultTheme returns raven-blue, the built-in default.
func DefaultTheme() Theme { return ThemeByName("raven-blue") }

// ThemeByName returns a theme for a known theme name, falling back to
// raven-blue for anything unrecognised (grounded on teacher's
// ThemeByName switch).
func ThemeByName(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "crow-black":
		return Theme{
			Background: [4]float32{0.020, 0.020, 0.020, 1.0},
			Foreground: [4]float32{0.902, 0.902, 0.902, 1.0},
			Cursor:     [4]float32{0.965, 0.965, 0.965, 1.0},
			Selection:  [4]float32{0.702, 0.702, 0.702, 0.35},
		}
	case "magpie-black-white-grey", "magpie-black-and-white-grey":
		return Theme{
			Background: [4]float32{0.067, 0.067, 0.067, 1.0},
			Foreground: [4]float32{0.961, 0.961, 0.961, 1.0},
			Cursor:     [4]float32{1.000, 1.000, 1.000, 1.0},
			Selection:  [4]float32{0.816, 0.816, 0.816, 0.35},
		}
	case "catppuccin-mocha", "catppuccin", "catpuccin":
		return Theme{
			Background: [4]float32{0.118, 0.118, 0.180, 1.0},
			Foreground: [4]float32{0.804, 0.839, 0.957, 1.0},
			Cursor:     [4]float32{0.961, 0.761, 0.906, 1.0},
			Selection:  [4]float32{0.537, 0.706, 0.980, 0.35},
		}
	case "raven-blue":
		fallthrough
	default:
		return Theme{
			Background: [4]float32{0.051, 0.063, 0.102, 1.0},
			Foreground: [4]float32{0.910, 0.929, 0.969, 1.0},
			Cursor:     [4]float32{0.635, 0.878, 0.780, 1.0},
			Selection:  [4]float32{0.455, 0.714, 1.0, 0.35},
		}
	}
}

// Palette is the 16-colour indexed palette a Cell's Fg/Bg byte selects
// from (§3's [ADD] Palette note). Any index is taken mod 16 (P9), so
// an out-of-range style byte never panics.
type Palette [16][4]float32

// DefaultPalette returns the standard 16 ANSI colors (grounded on
// teacher's indexedColor standard-color table).
func DefaultPalette() Palette {
	return Palette{
		{0.043, 0.059, 0.078, 1.0}, // 0 black
		{0.820, 0.412, 0.412, 1.0}, // 1 red
		{0.498, 0.737, 0.549, 1.0}, // 2 green
		{0.843, 0.729, 0.490, 1.0}, // 3 yellow
		{0.533, 0.643, 0.831, 1.0}, // 4 blue
		{0.773, 0.525, 0.753, 1.0}, // 5 magenta
		{0.498, 0.773, 0.784, 1.0}, // 6 cyan
		{0.831, 0.847, 0.871, 1.0}, // 7 white
		{0.294, 0.322, 0.388, 1.0}, // 8 bright black
		{0.878, 0.478, 0.478, 1.0}, // 9 bright red
		{0.604, 0.843, 0.659, 1.0}, // 10 bright green
		{0.906, 0.788, 0.545, 1.0}, // 11 bright yellow
		{0.647, 0.749, 0.941, 1.0}, // 12 bright blue
		{0.847, 0.627, 0.831, 1.0}, // 13 bright magenta
		{0.604, 0.843, 0.863, 1.0}, // 14 bright cyan
		{0.945, 0.953, 0.961, 1.0}, // 15 bright white
	}
}

// At returns the palette entry for style byte v, wrapping via % 16
// so any byte value is safe to index with (P9).
func (p Palette) At(v uint8) [4]float32 { return p[int(v)%16] }

// glyph is a rasterized character's position within the font atlas,
// in both normalized-atlas and pixel coordinates.
type glyph struct {
	X, Y          float32
	Width, Height float32
	PixelWidth    int
	PixelHeight   int
}

// Renderer is the OpenGL Renderer Adapter. It implements core.Renderer.
type Renderer struct {
	theme   Theme
	palette Palette

	cellWidth  float32
	cellHeight float32

	glyphs    map[rune]glyph
	fontAtlas uint32
	atlasSize int

	quadVAO, quadVBO       uint32
	program, fontProgram   uint32
	fontVAO, fontVBO       uint32
	colorLoc, projLoc      int32
	texColorLoc, texProjLoc, texLoc int32

	width, height int
}

// NewRenderer creates a renderer with the given theme name and
// initializes its GL resources and font atlas. The caller must have a
// current GL context (the window package makes one current before
// calling this, grounded on teacher's NewRenderer/main.go wiring).
func NewRenderer(themeName string) (*Renderer, error) {
	r := &Renderer{
		theme:     ThemeByName(themeName),
		palette:   DefaultPalette(),
		glyphs:    make(map[rune]glyph),
		atlasSize: 512,
	}
	if err := r.initGL(); err != nil {
		return nil, err
	}
	if err := r.loadFont(); err != nil {
		return nil, err
	}
	return r, nil
}

// loadFont builds the glyph atlas from golang.org/x/image/font/basicfont's
// embedded bitmap face. The teacher's font package embedded Nerd Font
// TTF binaries via go:embed; those asset files were not part of the
// retrieved snapshot, so basicfont (already reachable through the
// golang.org/x/image module the teacher depends on) supplies glyphs
// without requiring any additional asset files.
func (r *Renderer) loadFont() error {
	face := basicfont.Face7x13
	r.cellWidth = float32(face.Advance)
	metrics := face.Metrics()
	r.cellHeight = float32((metrics.Ascent + metrics.Descent).Ceil())

	atlas := image.NewAlpha(image.Rect(0, 0, r.atlasSize, r.atlasSize))
	drawer := &font.Drawer{Dst: atlas, Src: image.Opaque, Face: face}

	x, y := 0, metrics.Ascent.Ceil()
	charWidth := int(r.cellWidth)
	charHeight := int(r.cellHeight)
	for c := rune(32); c <= 126; c++ {
		if x+charWidth > r.atlasSize {
			x = 0
			y += charHeight
		}
		if y+charHeight > r.atlasSize {
			break
		}
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(string(c))
		r.glyphs[c] = glyph{
			X:           float32(x) / float32(r.atlasSize),
			Y:           float32(y-metrics.Ascent.Ceil()) / float32(r.atlasSize),
			Width:       float32(charWidth) / float32(r.atlasSize),
			Height:      float32(charHeight) / float32(r.atlasSize),
			PixelWidth:  charWidth,
			PixelHeight: charHeight,
		}
		x += charWidth
	}

	gl.GenTextures(1, &r.fontAtlas)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RED, int32(r.atlasSize), int32(r.atlasSize), 0,
		gl.RED, gl.UNSIGNED_BYTE, gl.Ptr(atlas.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	return nil
}

// initGL compiles the quad and glyph shader programs and allocates
// their vertex buffers (grounded on teacher's initGL).
func (r *Renderer) initGL() error {
	vertShader := `
		#version 410 core
		layout (location = 0) in vec2 aPos;
		uniform mat4 projection;
		void main() { gl_Position = projection * vec4(aPos, 0.0, 1.0); }
	` + "\x00"
	fragShader := `
		#version 410 core
		out vec4 FragColor;
		uniform vec4 color;
		void main() { FragColor = color; }
	` + "\x00"

	var err error
	r.program, err = createProgram(vertShader, fragShader)
	if err != nil {
		return fmt.Errorf("quad shader: %w", err)
	}
	r.colorLoc = gl.GetUniformLocation(r.program, gl.Str("color\x00"))
	r.projLoc = gl.GetUniformLocation(r.program, gl.Str("projection\x00"))

	textVertShader := `
		#version 410 core
		layout (location = 0) in vec4 vertex;
		out vec2 TexCoords;
		uniform mat4 projection;
		void main() {
			gl_Position = projection * vec4(vertex.xy, 0.0, 1.0);
			TexCoords = vertex.zw;
		}
	` + "\x00"
	textFragShader := `
		#version 410 core
		in vec2 TexCoords;
		out vec4 FragColor;
		uniform sampler2D text;
		uniform vec4 textColor;
		void main() {
			float alpha = texture(text, TexCoords).r;
			FragColor = vec4(textColor.rgb, textColor.a * alpha);
		}
	` + "\x00"

	r.fontProgram, err = createProgram(textVertShader, textFragShader)
	if err != nil {
		return fmt.Errorf("text shader: %w", err)
	}
	r.texColorLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("textColor\x00"))
	r.texProjLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("projection\x00"))
	r.texLoc = gl.GetUniformLocation(r.fontProgram, gl.Str("text\x00"))

	gl.GenVertexArrays(1, &r.quadVAO)
	gl.GenBuffers(1, &r.quadVBO)
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*2*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, 2*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	gl.GenVertexArrays(1, &r.fontVAO)
	gl.GenBuffers(1, &r.fontVBO)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferData(gl.ARRAY_BUFFER, 6*4*4, nil, gl.DYNAMIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 4, gl.FLOAT, false, 4*4, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)

	return nil
}

// Resize updates the viewport size used to build the projection
// matrix for Draw.
func (r *Renderer) Resize(width, height int) { r.width, r.height = width, height }

// CellSize reports the glyph atlas's fixed cell dimensions, used by
// main.go to compute the grid size for a pixel geometry
// (§4.5's resize-to-grid mapping).
func (r *Renderer) CellSize() (float32, float32) { return r.cellWidth, r.cellHeight }

// Draw implements core.Renderer: it paints every displayed row via
// b.VirtualRow/b.RowAt, so a non-zero scroll offset renders scrollback
// rows instead of the active grid (§4.3), plus the cursor block (only
// while at the live position) and the selection highlight (§4.6).
func (r *Renderer) Draw(b *core.Buffer) {
	if r.width == 0 || r.height == 0 {
		return
	}
	proj := orthoMatrix(0, float32(r.width), float32(r.height), 0, -1, 1)

	gl.Viewport(0, 0, int32(r.width), int32(r.height))
	gl.ClearColor(r.theme.Background[0], r.theme.Background[1], r.theme.Background[2], r.theme.Background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)

	sel := b.Selection()

	for row := 0; row < b.Rows(); row++ {
		y := float32(row) * r.cellHeight
		vrow := b.VirtualRow(row)
		data, ok := b.RowAt(vrow)
		for col := 0; col < b.Cols(); col++ {
			var cell core.Cell
			if ok {
				cell = data[col]
			}
			x := float32(col) * r.cellWidth

			bg := r.palette.At(cell.Bg)
			if !sel.Cleared() && inSelection(sel, vrow, col) {
				bg = r.theme.Selection
			}
			r.drawRect(x, y, r.cellWidth, r.cellHeight, bg, proj)

			if cell.Ch != 0 && cell.Ch != ' ' {
				fg := r.palette.At(cell.Fg)
				r.drawChar(x, y+r.cellHeight, rune(cell.Ch), fg, proj)
			}
		}
	}

	if b.ScrollOffset() == 0 {
		cursorRow, cursorCol := b.Cursor()
		cx := float32(cursorCol) * r.cellWidth
		cy := float32(cursorRow) * r.cellHeight
		r.drawRect(cx, cy, r.cellWidth, r.cellHeight, r.theme.Cursor, proj)
	}
}

func inSelection(sel core.Selection, row, col int) bool {
	top, topCol, bot, botCol := selectionBounds(sel)
	if row < top || row > bot {
		return false
	}
	if top == bot {
		lo, hi := topCol, botCol
		if lo > hi {
			lo, hi = hi, lo
		}
		return col >= lo && col <= hi
	}
	if row == top {
		return col >= topCol
	}
	if row == bot {
		return col <= botCol
	}
	return true
}

// selectionBounds mirrors core.Selection.bounds() (unexported) using
// only the exported Selection fields, since the render package sits
// outside core.
func selectionBounds(s core.Selection) (topRow, topCol, botRow, botCol int) {
	if s.StartRow < s.EndRow || (s.StartRow == s.EndRow && s.StartCol <= s.EndCol) {
		return s.StartRow, s.StartCol, s.EndRow, s.EndCol
	}
	return s.EndRow, s.EndCol, s.StartRow, s.StartCol
}

func (r *Renderer) drawRect(x, y, w, h float32, clr [4]float32, proj [16]float32) {
	vertices := []float32{
		x, y,
		x + w, y,
		x + w, y + h,
		x, y,
		x + w, y + h,
		x, y + h,
	}
	gl.UseProgram(r.program)
	gl.UniformMatrix4fv(r.projLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.colorLoc, 1, &clr[0])
	gl.BindVertexArray(r.quadVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.quadVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (r *Renderer) drawChar(x, y float32, char rune, clr [4]float32, proj [16]float32) {
	gph, ok := r.glyphs[char]
	if !ok {
		gph, ok = r.glyphs['?']
		if !ok {
			return
		}
	}
	r.drawGlyph(x, y, gph, clr, proj)
}

func (r *Renderer) drawGlyph(x, y float32, gph glyph, clr [4]float32, proj [16]float32) {
	w := float32(gph.PixelWidth)
	h := float32(gph.PixelHeight)
	tx, ty, tw, th := gph.X, gph.Y, gph.Width, gph.Height

	vertices := []float32{
		x, y - h, tx, ty,
		x + w, y - h, tx + tw, ty,
		x + w, y, tx + tw, ty + th,
		x, y - h, tx, ty,
		x + w, y, tx + tw, ty + th,
		x, y, tx, ty + th,
	}
	gl.UseProgram(r.fontProgram)
	gl.UniformMatrix4fv(r.texProjLoc, 1, false, &proj[0])
	gl.Uniform4fv(r.texColorLoc, 1, &clr[0])
	gl.Uniform1i(r.texLoc, 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.fontAtlas)
	gl.BindVertexArray(r.fontVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.fontVBO)
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, len(vertices)*4, gl.Ptr(vertices))
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

// Destroy releases the renderer's GL resources.
func (r *Renderer) Destroy() {
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.fontVAO)
	gl.DeleteBuffers(1, &r.fontVBO)
	gl.DeleteProgram(r.program)
	gl.DeleteProgram(r.fontProgram)
	gl.DeleteTextures(1, &r.fontAtlas)
}

func orthoMatrix(left, right, bottom, top, near, far float32) [16]float32 {
	return [16]float32{
		2 / (right - left), 0, 0, 0,
		0, 2 / (top - bottom), 0, 0,
		0, 0, -2 / (far - near), 0,
		-(right + left) / (right - left), -(top + bottom) / (top - bottom), -(far + near) / (far - near), 1,
	}
}

func createProgram(vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		logStr := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(logStr))
		return 0, fmt.Errorf("failed to link program: %v", logStr)
	}
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)
	return program, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		logStr := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(logStr))
		return 0, fmt.Errorf("failed to compile shader: %v", logStr)
	}
	return shader, nil
}
