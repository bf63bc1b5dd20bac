//go:build linux

package x11input

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgb/xtest"

	"github.com/3586649596/Nikke-clicker/internal/core/autoclicker"
)

// Sink injects clicks through XTest or sends button events to the focused
// window.
type Sink struct {
	mu   sync.Mutex
	conn *xgb.Conn
	root xproto.Window
}

func NewSink() (*Sink, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("failed to open X11 connection: %w", err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("XTEST extension unavailable: %w", err)
	}
	root := xproto.Setup(conn).DefaultScreen(conn).Root
	return &Sink{conn: conn, root: root}, nil
}

func (s *Sink) Emit(strategy autoclicker.Strategy, transition autoclicker.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strategy == autoclicker.StrategyPostToWindow {
		return s.sendToFocus(transition)
	}

	eventType := byte(xproto.ButtonPress)
	if transition == autoclicker.ButtonUp {
		eventType = xproto.ButtonRelease
	}
	if err := xtest.FakeInputChecked(
		s.conn,
		eventType,
		byte(xproto.ButtonIndex1),
		xproto.TimeCurrentTime,
		s.root,
		0,
		0,
		0,
	).Check(); err != nil {
		return err
	}
	s.conn.Sync()
	return nil
}

func (s *Sink) sendToFocus(transition autoclicker.Transition) error {
	focus, err := xproto.GetInputFocus(s.conn).Reply()
	if err != nil {
		return fmt.Errorf("failed to query input focus: %w", err)
	}
	target := focus.Focus
	if target == xproto.WindowNone || target == xproto.InputFocusPointerRoot {
		return autoclicker.ErrNoTarget
	}

	pointer, err := xproto.QueryPointer(s.conn, target).Reply()
	if err != nil {
		return fmt.Errorf("failed to query pointer: %w", err)
	}

	event := xproto.ButtonPressEvent{
		Detail:     xproto.Button(xproto.ButtonIndex1),
		Time:       xproto.TimeCurrentTime,
		Root:       pointer.Root,
		Event:      target,
		Child:      xproto.WindowNone,
		RootX:      pointer.RootX,
		RootY:      pointer.RootY,
		EventX:     pointer.WinX,
		EventY:     pointer.WinY,
		SameScreen: pointer.SameScreen,
	}
	mask := uint32(xproto.EventMaskButtonPress)
	if transition == autoclicker.ButtonUp {
		event.State = xproto.ButtonMask1
		mask = xproto.EventMaskButtonRelease
	}

	payload := event.Bytes()
	if transition == autoclicker.ButtonUp {
		payload[0] = xproto.ButtonRelease
	}
	return xproto.SendEventChecked(s.conn, true, target, mask, string(payload)).Check()
}

func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	return nil
}
