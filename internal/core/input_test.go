package core

import (
	"bytes"
	"testing"
)

func TestEncodeKeyArrows(t *testing.T) {
	cases := []struct {
		key   Key
		shift bool
		want  []byte
	}{
		{KeyUp, false, []byte{0x1b, '[', 'A'}},
		{KeyDown, false, []byte{0x1b, '[', 'B'}},
		{KeyRight, false, []byte{0x1b, '[', 'C'}},
		{KeyLeft, false, []byte{0x1b, '[', 'D'}},
		{KeyRight, true, []byte{0x1b, '[', '1', ';', '2', 'C'}},
		{KeyLeft, true, []byte{0x1b, '[', '1', ';', '2', 'D'}},
	}
	for _, c := range cases {
		got := EncodeKey(KeyEvent{Key: c.key, Shift: c.shift})
		if !bytes.Equal(got.PTYBytes, c.want) {
			t.Fatalf("key=%v shift=%v: got %q, want %q", c.key, c.shift, got.PTYBytes, c.want)
		}
	}
}

func TestEncodeKeyShiftUpDownScrollsInstead(t *testing.T) {
	up := EncodeKey(KeyEvent{Key: KeyUp, Shift: true})
	if up.ScrollByLines != -1 || up.PTYBytes != nil {
		t.Fatalf("shift+up = %+v, want scroll -1 with no PTY bytes", up)
	}
	down := EncodeKey(KeyEvent{Key: KeyDown, Shift: true})
	if down.ScrollByLines != 1 || down.PTYBytes != nil {
		t.Fatalf("shift+down = %+v, want scroll 1 with no PTY bytes", down)
	}
}

func TestEncodeKeyClipboardRequests(t *testing.T) {
	if c := EncodeKey(KeyEvent{Key: KeyCtrlShiftC}); !c.RequestCopy {
		t.Fatalf("ctrl+shift+c did not request copy")
	}
	if p := EncodeKey(KeyEvent{Key: KeyCtrlShiftV}); !p.RequestPaste {
		t.Fatalf("ctrl+shift+v did not request paste")
	}
	if p := EncodeKey(KeyEvent{Key: KeyCtrlV}); !p.RequestPaste {
		t.Fatalf("ctrl+v did not request paste")
	}
}

func TestEncodeKeyCtrlCSendsETX(t *testing.T) {
	got := EncodeKey(KeyEvent{Key: KeyCtrlC})
	if !bytes.Equal(got.PTYBytes, []byte{0x03}) {
		t.Fatalf("ctrl+c = %v, want [0x03]", got.PTYBytes)
	}
}

func TestEncodeKeyPrintableUTF8Passthrough(t *testing.T) {
	got := EncodeKey(KeyEvent{UTF8: []byte("é")})
	if !bytes.Equal(got.PTYBytes, []byte("é")) {
		t.Fatalf("utf8 passthrough = %q, want %q", got.PTYBytes, "é")
	}
}

func TestEncodeMouseDisabledReturnsNil(t *testing.T) {
	if b := EncodeMouse(MousePress, 1000, false, 3, 4); b != nil {
		t.Fatalf("disabled mouse produced bytes: %v", b)
	}
}

func TestEncodeMousePressEncodesColRow(t *testing.T) {
	got := EncodeMouse(MousePress, 1000, true, 2, 5)
	want := []byte{0x1b, '[', 'M', ' ', byte(2 + 1 + 32), byte(5 + 1 + 32)}
	if !bytes.Equal(got, want) {
		t.Fatalf("mouse press = %v, want %v", got, want)
	}
}

func TestEncodeMouseMotionRequiresMode1002OrHigher(t *testing.T) {
	if b := EncodeMouse(MouseMotion, 1000, true, 0, 0); b != nil {
		t.Fatalf("motion under mode 1000 produced bytes: %v", b)
	}
	if b := EncodeMouse(MouseMotion, 1003, true, 0, 0); b == nil {
		t.Fatalf("motion under mode 1003 produced no bytes")
	}
}
