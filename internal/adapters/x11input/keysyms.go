package x11input

import (
	"fmt"
	"strings"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

var controlKeysyms = map[int]string{
	hotkey.VKEscape:  "Escape",
	hotkey.VKTab:     "Tab",
	hotkey.VKCapital: "Caps_Lock",
	hotkey.VKSpace:   "space",
	hotkey.VKReturn:  "Return",
	hotkey.VKBack:    "BackSpace",
	hotkey.VKDelete:  "Delete",
	hotkey.VKInsert:  "Insert",
	hotkey.VKHome:    "Home",
	hotkey.VKEnd:     "End",
	hotkey.VKPrior:   "Page_Up",
	hotkey.VKNext:    "Page_Down",
	hotkey.VKLeft:    "Left",
	hotkey.VKUp:      "Up",
	hotkey.VKRight:   "Right",
	hotkey.VKDown:    "Down",
}

var keysymToCode = buildKeysymTable()

func buildKeysymTable() map[string]int {
	table := make(map[string]int, 80)
	for _, code := range hotkey.NamedKeyCodes() {
		if name, ok := KeysymForCode(code); ok {
			table[strings.ToLower(name)] = code
		}
	}
	table["prior"] = hotkey.VKPrior
	table["next"] = hotkey.VKNext
	table["escape"] = hotkey.VKEscape
	return table
}

// KeysymForCode returns the X keysym name of a virtual-key code.
func KeysymForCode(code int) (string, bool) {
	switch {
	case code >= hotkey.VKF1 && code <= hotkey.VKF12:
		return fmt.Sprintf("F%d", code-hotkey.VKF1+1), true
	case code >= hotkey.VKNumpad0 && code <= hotkey.VKNumpad9:
		return fmt.Sprintf("KP_%d", code-hotkey.VKNumpad0), true
	case code >= hotkey.VKA && code <= hotkey.VKZ:
		return strings.ToLower(string(rune(code))), true
	case code >= hotkey.VK0 && code <= hotkey.VK9:
		return string(rune(code)), true
	}
	name, ok := controlKeysyms[code]
	return name, ok
}

// CodeForKeysym maps a keysym name, as returned by keybind.LookupString, to a
// virtual-key code. Unknown names map to 0.
func CodeForKeysym(name string) int {
	return keysymToCode[strings.ToLower(strings.TrimSpace(name))]
}
