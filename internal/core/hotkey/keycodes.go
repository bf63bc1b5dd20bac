package hotkey

import (
	"fmt"
	"strings"
)

// Virtual-key codes. Every backend translates its native codes into this space.
const (
	VKBack    = 0x08
	VKTab     = 0x09
	VKReturn  = 0x0D
	VKCapital = 0x14
	VKEscape  = 0x1B
	VKSpace   = 0x20
	VKPrior   = 0x21
	VKNext    = 0x22
	VKEnd     = 0x23
	VKHome    = 0x24
	VKLeft    = 0x25
	VKUp      = 0x26
	VKRight   = 0x27
	VKDown    = 0x28
	VKInsert  = 0x2D
	VKDelete  = 0x2E
	VK0       = 0x30
	VK9       = 0x39
	VKA       = 0x41
	VKZ       = 0x5A
	VKNumpad0 = 0x60
	VKNumpad9 = 0x69
	VKF1      = 0x70
	VKF8      = 0x77
	VKF12     = 0x7B
)

// DefaultToggleKey is the toggle hotkey used until the user rebinds it.
const DefaultToggleKey = VKF8

var controlKeyNames = map[int]string{
	VKEscape:  "Esc",
	VKTab:     "Tab",
	VKCapital: "CapsLock",
	VKSpace:   "Space",
	VKReturn:  "Enter",
	VKBack:    "Backspace",
	VKDelete:  "Delete",
	VKInsert:  "Insert",
	VKHome:    "Home",
	VKEnd:     "End",
	VKPrior:   "PageUp",
	VKNext:    "PageDown",
	VKLeft:    "Left",
	VKUp:      "Up",
	VKRight:   "Right",
	VKDown:    "Down",
}

var nameAliases = map[string]int{
	"ESCAPE": VKEscape,
	"RETURN": VKReturn,
	"PGUP":   VKPrior,
	"PGDN":   VKNext,
	"CAPS":   VKCapital,
}

var nameToCode = buildNameTable()

func buildNameTable() map[string]int {
	table := make(map[string]int, 80)
	for _, code := range NamedKeyCodes() {
		table[strings.ToUpper(KeyCodeToString(code))] = code
	}
	for alias, code := range nameAliases {
		table[alias] = code
	}
	return table
}

// NamedKeyCodes lists every code that has a readable name.
func NamedKeyCodes() []int {
	codes := make([]int, 0, 80)
	for code := VKF1; code <= VKF12; code++ {
		codes = append(codes, code)
	}
	for code := range controlKeyNames {
		codes = append(codes, code)
	}
	for code := VKNumpad0; code <= VKNumpad9; code++ {
		codes = append(codes, code)
	}
	for code := VKA; code <= VKZ; code++ {
		codes = append(codes, code)
	}
	for code := VK0; code <= VK9; code++ {
		codes = append(codes, code)
	}
	return codes
}

// KeyCodeToString renders a virtual-key code. Unknown codes render as "0x%02X".
func KeyCodeToString(code int) string {
	switch {
	case code >= VKF1 && code <= VKF12:
		return fmt.Sprintf("F%d", code-VKF1+1)
	case code >= VKNumpad0 && code <= VKNumpad9:
		return fmt.Sprintf("Num%d", code-VKNumpad0)
	case code >= VKA && code <= VKZ, code >= VK0 && code <= VK9:
		return string(rune(code))
	}
	if name, ok := controlKeyNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%02X", code)
}

// StringToKeyCode parses a key name case-insensitively and returns 0 when the
// name is unknown.
func StringToKeyCode(name string) int {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return 0
	}
	return nameToCode[key]
}
