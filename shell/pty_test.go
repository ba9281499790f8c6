package shell

import (
	"os"
	"os/user"
	"testing"

	"github.com/raventerm/raventerm/config"
)

func TestFindShellHonorsConfigOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Shell = "/bin/sh"
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh not present in this environment")
	}
	if got := findShell(cfg); got != "/bin/sh" {
		t.Fatalf("findShell = %q, want /bin/sh", got)
	}
}

func TestFindShellFallsBackWhenOverrideMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Shell = "/no/such/shell"
	got := findShell(cfg)
	if got == "/no/such/shell" {
		t.Fatalf("findShell returned the missing override unchanged")
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("findShell returned %q which does not exist: %v", got, err)
	}
}

func TestGetUserShellReadsPasswdEntry(t *testing.T) {
	currentUser, err := user.Current()
	if err != nil {
		t.Skip("no current user in this environment")
	}
	got := getUserShell(currentUser.Username)
	if got == "" {
		t.Skip("user not present in /etc/passwd (e.g. container overlay)")
	}
	if _, err := os.Stat(got); err != nil {
		t.Fatalf("getUserShell returned %q which does not exist: %v", got, err)
	}
}
