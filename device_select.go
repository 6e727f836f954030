package main

// Input device selection helpers.
//
// Touch panels and mice appear as /dev/input/eventX. We support:
// - printing /proc/bus/input/devices (for debugging)
// - an explicit device list
// - "probing" each event node for short activity and keeping every node that
//   produced pointer events, falling back to name/handler heuristics

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sys/unix"
)

var errNoDevices = errors.New("no pointer input devices found")

type inputDeviceInfo struct {
	name     string
	handlers []string
}

// eventNode returns the /dev/input path of the device's evdev handler.
func (d inputDeviceInfo) eventNode() string {
	for _, h := range d.handlers {
		if strings.HasPrefix(h, "event") {
			return "/dev/input/" + h
		}
	}
	return ""
}

// isPointer guesses from handlers and name whether the device moves a pointer.
func (d inputDeviceInfo) isPointer() bool {
	for _, h := range d.handlers {
		if strings.HasPrefix(h, "mouse") {
			return true
		}
	}
	ln := strings.ToLower(d.name)
	for _, kw := range []string{"touch", "mouse", "stylus", "wacom", "pen", "trackpad"} {
		if strings.Contains(ln, kw) {
			return true
		}
	}
	return false
}

func parseProcInputDevices(data string) []inputDeviceInfo {
	var out []inputDeviceInfo
	for _, blk := range strings.Split(data, "\n\n") {
		info := inputDeviceInfo{}
		for _, line := range strings.Split(blk, "\n") {
			if strings.HasPrefix(line, "N: Name=") {
				parts := strings.SplitN(line, "=", 2)
				if len(parts) == 2 {
					info.name = strings.Trim(parts[1], " \"")
				}
			}
			if strings.HasPrefix(line, "H: Handlers=") {
				parts := strings.SplitN(line, "=", 2)
				if len(parts) == 2 {
					info.handlers = strings.Fields(parts[1])
				}
			}
		}
		if info.name != "" || len(info.handlers) > 0 {
			out = append(out, info)
		}
	}
	return out
}

func listProcInputDevices() []inputDeviceInfo {
	b, err := os.ReadFile("/proc/bus/input/devices")
	if err != nil {
		return nil
	}
	return parseProcInputDevices(string(b))
}

// heuristicPointerPaths picks pointer-looking devices by name/handler only.
func heuristicPointerPaths(devs []inputDeviceInfo) []string {
	var out []string
	for _, d := range devs {
		if p := d.eventNode(); p != "" && d.isPointer() {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

type devProbe struct {
	path     string
	absX     int
	absY     int
	relX     int
	relY     int
	wheel    int
	btnTouch int
	btnLeft  int
	any      int
}

// score counts pointer activity only; a keyboard scores 0 however busy it is.
func (p devProbe) score() int {
	return 5*p.absX + 5*p.absY + 5*p.relX + 5*p.relY + 2*p.wheel + 8*p.btnTouch + 8*p.btnLeft
}

func (p *devProbe) count(ev inputEvent) {
	p.any++
	code := ev.Code
	switch ev.Type {
	case EV_ABS:
		switch code {
		case ABS_X, ABS_MT_POSITION_X:
			p.absX++
		case ABS_Y, ABS_MT_POSITION_Y:
			p.absY++
		}
	case EV_REL:
		switch code {
		case REL_X:
			p.relX++
		case REL_Y:
			p.relY++
		case REL_WHEEL:
			p.wheel++
		}
	case EV_KEY:
		switch code {
		case BTN_TOUCH:
			p.btnTouch++
		case BTN_LEFT:
			p.btnLeft++
		}
	}
}

func probeDevice(path string, dur time.Duration) (devProbe, error) {
	out := devProbe{path: path}
	f, err := os.Open(path)
	if err != nil {
		return out, err
	}
	defer f.Close()
	fd := int(f.Fd())

	if err := unix.SetNonblock(fd, true); err != nil {
		return out, err
	}

	reader := bufio.NewReaderSize(f, 4096)
	parser := &inputParser{}
	deadline := time.Now().Add(dur)

	for time.Now().Before(deadline) {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		_, _ = unix.Poll(pfd, 50)
		if pfd[0].Revents&unix.POLLIN == 0 {
			continue
		}
		buf := make([]byte, 4096)
		n, err := reader.Read(buf)
		if err != nil || n == 0 {
			continue
		}
		for _, ev := range parser.feed(buf[:n]) {
			out.count(ev)
		}
	}
	return out, nil
}

// selectDevices returns the devices to merge: the explicit list if given,
// otherwise every probed device showing pointer activity, otherwise the
// heuristic pick.
func selectDevices(explicit []string, probeDur time.Duration) ([]string, error) {
	if len(explicit) > 0 {
		return explicit, nil
	}
	matches, _ := filepath.Glob("/dev/input/event*")
	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: no /dev/input/event* nodes", errNoDevices)
	}
	sort.Strings(matches)

	inputLog.Infof("probing %d devices for %s each; move the pointer or touch the screen now", len(matches), probeDur)
	var active []string
	for _, p := range matches {
		pr, err := probeDevice(p, probeDur)
		if err != nil {
			inputLog.Debugf("probe %s: %v", p, err)
			continue
		}
		s := pr.score()
		inputLog.Debugf("probe %s score=%d any=%d absx=%d absy=%d relx=%d rely=%d wheel=%d touch=%d left=%d",
			p, s, pr.any, pr.absX, pr.absY, pr.relX, pr.relY, pr.wheel, pr.btnTouch, pr.btnLeft)
		if s > 0 {
			active = append(active, p)
		}
	}
	if len(active) > 0 {
		return active, nil
	}

	if paths := heuristicPointerPaths(listProcInputDevices()); len(paths) > 0 {
		inputLog.Warnf("no pointer activity while probing; using name heuristic: %v", paths)
		return paths, nil
	}
	return nil, errNoDevices
}
