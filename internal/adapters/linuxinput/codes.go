//go:build linux

package linuxinput

import (
	"strconv"

	evdev "github.com/holoplot/go-evdev"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

var (
	vkToEvdev = buildVKTable()
	evdevToVK = invert(vkToEvdev)
)

func buildVKTable() map[int]evdev.EvCode {
	table := map[int]evdev.EvCode{
		hotkey.VKBack:    evdev.KEY_BACKSPACE,
		hotkey.VKTab:     evdev.KEY_TAB,
		hotkey.VKReturn:  evdev.KEY_ENTER,
		hotkey.VKCapital: evdev.KEY_CAPSLOCK,
		hotkey.VKEscape:  evdev.KEY_ESC,
		hotkey.VKSpace:   evdev.KEY_SPACE,
		hotkey.VKPrior:   evdev.KEY_PAGEUP,
		hotkey.VKNext:    evdev.KEY_PAGEDOWN,
		hotkey.VKEnd:     evdev.KEY_END,
		hotkey.VKHome:    evdev.KEY_HOME,
		hotkey.VKLeft:    evdev.KEY_LEFT,
		hotkey.VKUp:      evdev.KEY_UP,
		hotkey.VKRight:   evdev.KEY_RIGHT,
		hotkey.VKDown:    evdev.KEY_DOWN,
		hotkey.VKInsert:  evdev.KEY_INSERT,
		hotkey.VKDelete:  evdev.KEY_DELETE,
	}

	digits := []evdev.EvCode{
		evdev.KEY_0, evdev.KEY_1, evdev.KEY_2, evdev.KEY_3, evdev.KEY_4,
		evdev.KEY_5, evdev.KEY_6, evdev.KEY_7, evdev.KEY_8, evdev.KEY_9,
	}
	for i, code := range digits {
		table[hotkey.VK0+i] = code
	}

	letters := []evdev.EvCode{
		evdev.KEY_A, evdev.KEY_B, evdev.KEY_C, evdev.KEY_D, evdev.KEY_E,
		evdev.KEY_F, evdev.KEY_G, evdev.KEY_H, evdev.KEY_I, evdev.KEY_J,
		evdev.KEY_K, evdev.KEY_L, evdev.KEY_M, evdev.KEY_N, evdev.KEY_O,
		evdev.KEY_P, evdev.KEY_Q, evdev.KEY_R, evdev.KEY_S, evdev.KEY_T,
		evdev.KEY_U, evdev.KEY_V, evdev.KEY_W, evdev.KEY_X, evdev.KEY_Y,
		evdev.KEY_Z,
	}
	for i, code := range letters {
		table[hotkey.VKA+i] = code
	}

	numpad := []evdev.EvCode{
		evdev.KEY_KP0, evdev.KEY_KP1, evdev.KEY_KP2, evdev.KEY_KP3, evdev.KEY_KP4,
		evdev.KEY_KP5, evdev.KEY_KP6, evdev.KEY_KP7, evdev.KEY_KP8, evdev.KEY_KP9,
	}
	for i, code := range numpad {
		table[hotkey.VKNumpad0+i] = code
	}

	functions := []evdev.EvCode{
		evdev.KEY_F1, evdev.KEY_F2, evdev.KEY_F3, evdev.KEY_F4,
		evdev.KEY_F5, evdev.KEY_F6, evdev.KEY_F7, evdev.KEY_F8,
		evdev.KEY_F9, evdev.KEY_F10, evdev.KEY_F11, evdev.KEY_F12,
	}
	for i, code := range functions {
		table[hotkey.VKF1+i] = code
	}
	return table
}

func invert(table map[int]evdev.EvCode) map[evdev.EvCode]int {
	out := make(map[evdev.EvCode]int, len(table))
	for vk, code := range table {
		out[code] = vk
	}
	return out
}

// EvdevForVK returns the evdev key code for a virtual-key code.
func EvdevForVK(vk int) (evdev.EvCode, bool) {
	code, ok := vkToEvdev[vk]
	return code, ok
}

// VKForEvdev returns the virtual-key code for an evdev key code, or 0.
func VKForEvdev(code evdev.EvCode) int {
	return evdevToVK[code]
}

func FormatCodeName(code uint16) string {
	name := evdev.CodeName(evdev.EV_KEY, evdev.EvCode(code))
	if name != "" {
		return name
	}
	return strconv.Itoa(int(code))
}
