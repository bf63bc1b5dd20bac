package wininput

import "github.com/3586649596/Nikke-clicker/internal/core/hotkey"

const (
	whKeyboardLL = 13
	hcAction     = 0

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202

	mkLButton  = 0x0001
	pmNoRemove = 0x0000
	pmRemove   = 0x0001

	inputMouse          = 0
	mouseeventfLeftDown = 0x0002
	mouseeventfLeftUp   = 0x0004
)

func isKeyDownMessage(msg uint32) bool {
	return msg == wmKeyDown || msg == wmSysKeyDown
}

// consumeKey reports whether the hook should swallow a keyboard notification.
// Only HC_ACTION notifications reach the processor; everything else is passed
// to the next hook.
func consumeKey(p hotkey.Processor, code int, wParam uintptr, vkCode uint32) bool {
	if code != hcAction || p == nil {
		return false
	}
	verdict := p.Process(hotkey.KeyEvent{
		Code: int(vkCode),
		Down: isKeyDownMessage(uint32(wParam)),
	})
	return verdict == hotkey.Consume
}

// makeLParam packs client coordinates the way MAKELPARAM does.
func makeLParam(x, y int32) uintptr {
	return uintptr(uint32(uint16(x)) | uint32(uint16(y))<<16)
}
