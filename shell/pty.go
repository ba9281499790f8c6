// Package shell owns the PTY Session collaborator (§6): pseudo-terminal
// allocation, shell process spawn/env, resize, and reap.
package shell

import (
	"os"
	"os/exec"
	"os/user"
	"strings"
	"sync"
	"syscall"

	"github.com/creack/pty"
	"github.com/raventerm/raventerm/config"
)

// Session wraps a pseudo-terminal connection to a shell process. It
// satisfies core.PTY (Read/Write) so the I/O Loop can drive it
// directly.
type Session struct {
	cmd *exec.Cmd
	pty *os.File
	mu  sync.Mutex

	waitOnce sync.Once
	exitCh   chan int // child's exit code, 128+signal on signal death, 1 on a Wait error
}

// New starts a login shell on a fresh PTY sized cols x rows, honoring
// cfg.Shell as an override and falling back to the real user's login
// shell (grounded on teacher's findShell/getUserShell).
func New(cfg *config.Config, cols, rows uint16) (*Session, error) {
	shellPath := findShell(cfg)
	currentUser, err := user.Current()
	if err != nil {
		return nil, err
	}

	cmd := exec.Command(shellPath, "-i")
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	xdgRuntimeDir := os.Getenv("XDG_RUNTIME_DIR")
	if xdgRuntimeDir == "" {
		xdgRuntimeDir = "/run/user/" + currentUser.Uid
	}

	termType := cfg.TermType
	if termType == "" {
		termType = config.DefaultTermType
	}

	env := []string{
		"PATH=/usr/local/sbin:/usr/local/bin:/usr/sbin:/usr/bin:/sbin:/bin:" + os.Getenv("PATH"),
		"TERM=" + termType,
		"COLORTERM=truecolor",
		"HOME=" + currentUser.HomeDir,
		"USER=" + currentUser.Username,
		"SHELL=" + shellPath,
		"LANG=en_US.UTF-8",
		"LC_ALL=en_US.UTF-8",
		"XDG_RUNTIME_DIR=" + xdgRuntimeDir,
		"PS1=$ ",
	}
	if display := os.Getenv("DISPLAY"); display != "" {
		env = append(env, "DISPLAY="+display)
	}
	if wayland := os.Getenv("WAYLAND_DISPLAY"); wayland != "" {
		env = append(env, "WAYLAND_DISPLAY="+wayland, "XDG_SESSION_TYPE=wayland")
	}
	cmd.Env = env
	cmd.Dir = currentUser.HomeDir

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: cols, Rows: rows})
	if err != nil {
		return nil, err
	}

	s := &Session{
		cmd:    cmd,
		pty:    ptmx,
		exitCh: make(chan int, 1),
	}
	go s.reap()
	return s, nil
}

func (s *Session) reap() {
	err := s.cmd.Wait()
	if err == nil {
		s.exitCh <- 0
		return
	}
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		s.exitCh <- 1
		return
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		s.exitCh <- 128 + int(status.Signal())
		return
	}
	s.exitCh <- exitErr.ExitCode()
}

// Wait blocks until the child exits and returns its mapped exit code
// per §6's CLI surface rule (child's code on clean exit, 128+signal on
// signalled exit). Safe to call once; subsequent calls reuse the
// result.
func (s *Session) Wait() int {
	code := <-s.exitCh
	s.exitCh <- code // let a second caller observe the same value
	return code
}

// findShell resolves the shell to launch: config override, the real
// user's /etc/passwd shell, then a hardcoded fallback list.
func findShell(cfg *config.Config) string {
	if cfg.Shell != "" {
		if _, err := os.Stat(cfg.Shell); err == nil {
			return cfg.Shell
		}
	}
	if currentUser, err := user.Current(); err == nil {
		if sh := getUserShell(currentUser.Username); sh != "" {
			if _, err := os.Stat(sh); err == nil {
				return sh
			}
		}
	}
	for _, sh := range []string{"/bin/bash", "/usr/bin/bash", "/bin/zsh", "/usr/bin/zsh", "/bin/sh"} {
		if _, err := os.Stat(sh); err == nil {
			return sh
		}
	}
	return "/bin/sh"
}

func getUserShell(username string) string {
	data, err := os.ReadFile("/etc/passwd")
	if err != nil {
		return ""
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Split(line, ":")
		if len(fields) >= 7 && fields[0] == username {
			return fields[6]
		}
	}
	return ""
}

// Read reads from the PTY master.
func (s *Session) Read(buf []byte) (int, error) { return s.pty.Read(buf) }

// Write writes to the PTY master.
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pty.Write(data)
}

// Resize applies a new PTY window size (TIOCSWINSZ).
func (s *Session) Resize(cols, rows uint16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return pty.Setsize(s.pty, &pty.Winsize{Cols: cols, Rows: rows})
}

// Close kills the child if still running and closes the PTY master.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd.Process != nil {
		s.cmd.Process.Kill()
	}
	return s.pty.Close()
}
