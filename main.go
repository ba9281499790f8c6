// Command raventerm is the CLI Entrypoint (§6): it loads
// configuration, opens a window and a shell PTY, and runs the I/O Loop
// until the shell exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/raventerm/raventerm/config"
	"github.com/raventerm/raventerm/internal/core"
	"github.com/raventerm/raventerm/render"
	"github.com/raventerm/raventerm/shell"
	"github.com/raventerm/raventerm/window"
)

func main() {
	os.Exit(run())
}

func run() int {
	logger := log.New(os.Stderr, "raventerm: ", log.LstdFlags)

	configPath := flag.String("config", config.Path(), "path to config.toml")
	scrollback := flag.Int("scrollback", 0, "override scrollback size (0 = use config; informational, core.ScrollbackSize is a fixed ring)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Printf("loading config %s: %v (using defaults)", *configPath, err)
		cfg = config.Default()
	}
	if *scrollback > 0 {
		cfg.ScrollbackSize = *scrollback
		if cfg.ScrollbackSize != core.ScrollbackSize {
			logger.Printf("scrollback size %d requested, core retains a fixed ring of %d rows", cfg.ScrollbackSize, core.ScrollbackSize)
		}
	}

	win, err := window.New(window.DefaultConfig())
	if err != nil {
		logger.Printf("creating window: %v", err)
		return 1
	}
	defer win.Destroy()

	renderer, err := render.NewRenderer(cfg.Theme)
	if err != nil {
		logger.Printf("creating renderer: %v", err)
		return 1
	}
	defer renderer.Destroy()

	fbWidth, fbHeight := win.GLFW().GetFramebufferSize()
	renderer.Resize(fbWidth, fbHeight)
	cellWidth, cellHeight := renderer.CellSize()

	metrics := core.Metrics{
		Border:     4,
		FontWidth:  int(cellWidth),
		FontHeight: int(cellHeight),
	}
	cols, rows := gridSize(fbWidth, fbHeight, metrics)

	sess, err := shell.New(cfg, uint16(cols), uint16(rows))
	if err != nil {
		logger.Printf("starting shell: %v", err)
		return 1
	}
	defer sess.Close()

	buf := core.NewBuffer(rows, cols)
	parser := core.NewParser(buf)

	loop := &core.Loop{
		Buf:         buf,
		Parser:      parser,
		PTY:         sess,
		Events:      win.Events(),
		Renderer:    renderer,
		Clipboard:   win,
		Metrics:     metrics,
		ScrollLines: cfg.MouseScrollLines,
		Resize: func(cols, rows int) {
			if err := sess.Resize(uint16(cols), uint16(rows)); err != nil {
				logger.Printf("resizing pty: %v", err)
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx) }()

	for !win.GLFW().ShouldClose() {
		window.PollEvents()
		select {
		case err := <-loopErr:
			if err != nil {
				logger.Printf("io loop: %v", err)
			}
			return exitCode(sess)
		default:
		}
		win.GLFW().SwapBuffers()
	}

	cancel()
	sess.Close()
	return exitCode(sess)
}

func gridSize(width, height int, m core.Metrics) (cols, rows int) {
	fw, fh := m.FontWidth, m.FontHeight
	if fw <= 0 {
		fw = 1
	}
	if fh <= 0 {
		fh = 1
	}
	cols = (width - 2*m.Border) / fw
	rows = (height - 2*m.Border) / fh
	if cols < 1 {
		cols = 1
	}
	if rows < 1 {
		rows = 1
	}
	return cols, rows
}

// exitCode maps the shell's termination per §6/§7: the child's own
// exit code on a clean exit, 128+signal on a signalled death.
func exitCode(sess *shell.Session) int {
	code := sess.Wait()
	if code < 0 || code > 255 {
		fmt.Fprintln(os.Stderr, "raventerm: shell exited with out-of-range code", code)
		return 1
	}
	return code
}
