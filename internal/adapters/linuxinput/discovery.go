//go:build linux

package linuxinput

import (
	"fmt"
	"os"
	"sort"
	"strings"

	evdev "github.com/holoplot/go-evdev"
)

// virtualDeviceName is the uinput device the sink creates. Discovery skips it
// so injected clicks never feed back into the listener.
const virtualDeviceName = "nikke-clicker"

type DeviceInfo struct {
	Path       string
	Name       string
	IsVirtual  bool
	IsPointer  bool
	IsKeyboard bool
}

func ListInputDevices() ([]DeviceInfo, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, err
	}

	sort.Slice(paths, func(i, j int) bool {
		return paths[i].Path < paths[j].Path
	})

	devices := make([]DeviceInfo, 0, len(paths))
	for _, path := range paths {
		dev, err := openInputDevice(path.Path)
		if err != nil {
			continue
		}

		name := path.Name
		if actualName, err := dev.Name(); err == nil && actualName != "" {
			name = actualName
		}

		devices = append(devices, DeviceInfo{
			Path:       path.Path,
			Name:       name,
			IsVirtual:  deviceIsVirtual(dev, name),
			IsPointer:  deviceIsPointer(dev),
			IsKeyboard: deviceIsKeyboard(dev),
		})
		_ = dev.Close()
	}

	return devices, nil
}

// openKeyboards opens devicePath, or every physical keyboard when it is empty.
func openKeyboards(devicePath string) ([]*evdev.InputDevice, error) {
	if devicePath != "" {
		dev, err := openInputDevice(devicePath)
		if err != nil {
			return nil, err
		}
		if !deviceIsKeyboard(dev) {
			_ = dev.Close()
			return nil, fmt.Errorf("%s does not look like a keyboard", devicePath)
		}
		return []*evdev.InputDevice{dev}, nil
	}

	infos, err := ListInputDevices()
	if err != nil {
		return nil, err
	}

	var candidates []string
	for _, info := range infos {
		if info.IsKeyboard && !info.IsVirtual {
			candidates = append(candidates, info.Path)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no keyboard input device found; pass an explicit device path")
	}

	devices := make([]*evdev.InputDevice, 0, len(candidates))
	for _, path := range candidates {
		dev, err := openInputDevice(path)
		if err != nil {
			continue
		}
		devices = append(devices, dev)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("found keyboard devices, but failed to open any of them")
	}
	return devices, nil
}

func openInputDevice(path string) (*evdev.InputDevice, error) {
	return evdev.OpenWithFlags(path, os.O_RDONLY)
}

func deviceSupportsCode(device *evdev.InputDevice, code evdev.EvCode) bool {
	for _, c := range device.CapableEvents(evdev.EV_KEY) {
		if c == code {
			return true
		}
	}
	return false
}

func deviceIsKeyboard(device *evdev.InputDevice) bool {
	return deviceSupportsCode(device, evdev.KEY_A) && deviceSupportsCode(device, evdev.KEY_SPACE)
}

func deviceIsVirtual(device *evdev.InputDevice, name string) bool {
	id, err := device.InputID()
	if err == nil && id.BusType == uint16(evdev.BUS_VIRTUAL) {
		return true
	}
	lower := strings.ToLower(name)
	for _, token := range []string{"virtual", "uinput", "ydotool", virtualDeviceName, "autoclicker"} {
		if strings.Contains(lower, token) {
			return true
		}
	}
	return false
}

func deviceIsPointer(device *evdev.InputDevice) bool {
	var hasRelX, hasRelY bool
	for _, code := range device.CapableEvents(evdev.EV_REL) {
		if code == evdev.REL_X {
			hasRelX = true
		}
		if code == evdev.REL_Y {
			hasRelY = true
		}
	}
	if hasRelX && hasRelY {
		return true
	}
	return len(device.CapableEvents(evdev.EV_ABS)) > 0
}
