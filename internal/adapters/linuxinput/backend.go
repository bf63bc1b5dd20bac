//go:build linux

package linuxinput

import (
	"errors"
	"fmt"
	"sync"
	"syscall"
	"time"

	evdev "github.com/holoplot/go-evdev"

	"github.com/3586649596/Nikke-clicker/internal/core/hotkey"
)

// Backend reads keyboards through evdev. The kernel delivers every key to
// every reader, so keys the listener consumes still reach other applications.
type Backend struct {
	devicePath string
	logger     hotkey.Logger

	mu        sync.Mutex
	devices   []*evdev.InputDevice
	processor hotkey.Processor
	stopCh    chan struct{}
	stop      func()
}

// NewBackend reads devicePath, or every physical keyboard when it is empty.
func NewBackend(devicePath string, logger hotkey.Logger) (*Backend, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is nil")
	}
	return &Backend{devicePath: devicePath, logger: logger, stop: func() {}}, nil
}

func (b *Backend) Install(p hotkey.Processor) error {
	devices, err := openKeyboards(b.devicePath)
	if err != nil {
		return err
	}
	for _, dev := range devices {
		if err := dev.NonBlock(); err != nil {
			closeDevices(devices)
			return fmt.Errorf("failed to set nonblocking mode for %s: %w", dev.Path(), err)
		}
		name, _ := dev.Name()
		b.logger.Info("Listening on input device", "path", dev.Path(), "name", name)
	}

	stopCh := make(chan struct{})
	b.mu.Lock()
	b.devices = devices
	b.processor = p
	b.stopCh = stopCh
	b.stop = sync.OnceFunc(func() { close(stopCh) })
	b.mu.Unlock()
	return nil
}

func (b *Backend) Loop() error {
	b.mu.Lock()
	devices := b.devices
	stopCh := b.stopCh
	b.mu.Unlock()

	var wg sync.WaitGroup
	for _, dev := range devices {
		wg.Add(1)
		go func(dev *evdev.InputDevice) {
			defer wg.Done()
			b.readLoop(dev, stopCh)
		}(dev)
	}
	wg.Wait()
	return nil
}

func (b *Backend) Interrupt() {
	b.mu.Lock()
	stop := b.stop
	b.mu.Unlock()
	stop()
}

func (b *Backend) Uninstall() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stop()
	closeDevices(b.devices)
	b.devices = nil
	b.processor = nil
}

func (b *Backend) readLoop(dev *evdev.InputDevice, stopCh <-chan struct{}) {
	path := dev.Path()
	for {
		events, err := dev.ReadSlice(64)
		if err != nil {
			if stopped(stopCh) || isDeviceClosedError(err) {
				return
			}
			if isWouldBlockError(err) {
				if !sleepWithStop(stopCh, 10*time.Millisecond) {
					return
				}
				continue
			}
			b.logger.Warn("Read failed", "path", path, "err", err)
			if !sleepWithStop(stopCh, 100*time.Millisecond) {
				return
			}
			continue
		}

		for _, event := range events {
			// Value 2 is autorepeat; only edges matter.
			if event.Type != evdev.EV_KEY || event.Value > 1 {
				continue
			}
			code := VKForEvdev(event.Code)
			if code == 0 {
				continue
			}
			b.processor.Process(hotkey.KeyEvent{Code: code, Down: event.Value == 1})
		}
	}
}

func closeDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		_ = dev.Close()
	}
}

func stopped(stopCh <-chan struct{}) bool {
	select {
	case <-stopCh:
		return true
	default:
		return false
	}
}

func sleepWithStop(stopCh <-chan struct{}, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-stopCh:
		return false
	case <-timer.C:
		return true
	}
}

func isDeviceClosedError(err error) bool {
	return errors.Is(err, syscall.EBADF) || errors.Is(err, syscall.ENODEV)
}

func isWouldBlockError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.EWOULDBLOCK)
}
