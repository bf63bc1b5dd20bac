package x11input

import (
	"testing"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

func TestKeysymMappings(t *testing.T) {
	tests := []struct {
		code   int
		keysym string
	}{
		{code: hotkey.VKF8, keysym: "F8"},
		{code: hotkey.VKEscape, keysym: "Escape"},
		{code: hotkey.VKPrior, keysym: "Page_Up"},
		{code: hotkey.VKNumpad0 + 3, keysym: "KP_3"},
		{code: 0x41, keysym: "a"},
		{code: 0x39, keysym: "9"},
	}
	for _, tc := range tests {
		got, ok := KeysymForCode(tc.code)
		if !ok || got != tc.keysym {
			t.Fatalf("KeysymForCode(0x%02X)=%q,%v, want %q", tc.code, got, ok, tc.keysym)
		}
	}
	if _, ok := KeysymForCode(0x1A); ok {
		t.Fatalf("KeysymForCode(0x1A) should be unknown")
	}
}

func TestEveryNamedKeyRoundTripsThroughKeysym(t *testing.T) {
	for _, code := range hotkey.NamedKeyCodes() {
		name, ok := KeysymForCode(code)
		if !ok {
			t.Fatalf("no keysym for %s", hotkey.KeyCodeToString(code))
		}
		if got := CodeForKeysym(name); got != code {
			t.Fatalf("CodeForKeysym(%q)=0x%02X, want 0x%02X", name, got, code)
		}
	}
}

func TestCodeForKeysymLookupStrings(t *testing.T) {
	if got := CodeForKeysym("A"); got != 0x41 {
		t.Fatalf("CodeForKeysym(A)=0x%02X", got)
	}
	if got := CodeForKeysym("Prior"); got != hotkey.VKPrior {
		t.Fatalf("CodeForKeysym(Prior)=0x%02X", got)
	}
	if got := CodeForKeysym("exclam"); got != 0 {
		t.Fatalf("CodeForKeysym(exclam)=0x%02X, want 0", got)
	}
}
