package hotkey

import "testing"

func TestKeyCodeNames(t *testing.T) {
	tests := []struct {
		code int
		name string
	}{
		{code: VKF8, name: "F8"},
		{code: VKF1, name: "F1"},
		{code: VKF12, name: "F12"},
		{code: VKEscape, name: "Esc"},
		{code: VKReturn, name: "Enter"},
		{code: VKPrior, name: "PageUp"},
		{code: VKNext, name: "PageDown"},
		{code: VKCapital, name: "CapsLock"},
		{code: VKNumpad0 + 7, name: "Num7"},
		{code: 0x41, name: "A"},
		{code: 0x35, name: "5"},
		{code: 0x1A, name: "0x1A"},
		{code: 0x05, name: "0x05"},
	}

	for _, tc := range tests {
		if got := KeyCodeToString(tc.code); got != tc.name {
			t.Fatalf("KeyCodeToString(0x%02X)=%q, want %q", tc.code, got, tc.name)
		}
	}
}

func TestKeyNamesRoundTrip(t *testing.T) {
	codes := NamedKeyCodes()
	if len(codes) != 12+16+10+26+10 {
		t.Fatalf("NamedKeyCodes() returned %d codes", len(codes))
	}
	for _, code := range codes {
		name := KeyCodeToString(code)
		if got := StringToKeyCode(name); got != code {
			t.Fatalf("StringToKeyCode(%q)=0x%02X, want 0x%02X", name, got, code)
		}
	}
}

func TestStringToKeyCodeAliasesAndMisses(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{raw: "f8", want: VKF8},
		{raw: "  esc ", want: VKEscape},
		{raw: "Escape", want: VKEscape},
		{raw: "return", want: VKReturn},
		{raw: "pgdn", want: VKNext},
		{raw: "a", want: 0x41},
		{raw: "0x1A", want: 0},
		{raw: "F13", want: 0},
		{raw: "AB", want: 0},
		{raw: "", want: 0},
	}
	for _, tc := range tests {
		if got := StringToKeyCode(tc.raw); got != tc.want {
			t.Fatalf("StringToKeyCode(%q)=0x%02X, want 0x%02X", tc.raw, got, tc.want)
		}
	}
}
