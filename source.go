package main

// Device sources: one per opened /dev/input/event* node.
//
// A source buffers the samples of one input frame and hands them to the
// merger on SYN_REPORT, so X and Y of a touch sample always land together.
// Press state is applied after the move so a tap reports "arrive, then press".

import (
	"sync"

	"pointerbridge/pointer"
)

// pressTracker ORs the press state of all sources into the merger's single
// down state: the pointer is down while any source holds it.
type pressTracker struct {
	mu   sync.Mutex
	m    *pointer.Merger
	held map[*deviceSource]bool
}

func newPressTracker(m *pointer.Merger) *pressTracker {
	return &pressTracker{m: m, held: map[*deviceSource]bool{}}
}

func (p *pressTracker) set(s *deviceSource, down bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if down {
		p.held[s] = true
	} else {
		delete(p.held, s)
	}
	p.m.SetDown(len(p.held) > 0)
}

type deviceSource struct {
	path   string
	m      *pointer.Merger
	press  *pressTracker
	ranges absRanges

	// pending frame
	absX, absY int32
	hasAbs     bool
	relX, relY int32
	hasRel     bool
	down       bool
	hasDown    bool

	slot     int32
	btnTouch bool
	btnLeft  bool
	holding  bool
}

func newDeviceSource(path string, press *pressTracker, ranges absRanges) *deviceSource {
	return &deviceSource{path: path, m: press.m, press: press, ranges: ranges}
}

func (s *deviceSource) handle(ev inputEvent) {
	code, value := ev.Code, ev.Value
	switch ev.Type {
	case EV_ABS:
		switch code {
		case ABS_X:
			s.absX, s.hasAbs = value, true
		case ABS_Y:
			s.absY, s.hasAbs = value, true
		case ABS_MT_SLOT:
			s.slot = value
		case ABS_MT_POSITION_X:
			// only slot 0 drives the pointer
			if s.slot == 0 {
				s.absX, s.hasAbs = value, true
			}
		case ABS_MT_POSITION_Y:
			if s.slot == 0 {
				s.absY, s.hasAbs = value, true
			}
		}

	case EV_REL:
		switch code {
		case REL_X:
			s.relX += value
			s.hasRel = true
		case REL_Y:
			s.relY += value
			s.hasRel = true
		case REL_WHEEL:
			s.m.AddWheel(int(value))
		}

	case EV_KEY:
		switch code {
		case BTN_TOUCH:
			s.btnTouch = value != 0
		case BTN_LEFT:
			s.btnLeft = value != 0
		default:
			return
		}
		s.down = s.btnTouch || s.btnLeft
		s.hasDown = true

	case EV_SYN:
		if code == SYN_REPORT {
			s.flush()
		}
	}
}

func (s *deviceSource) flush() {
	if s.hasAbs {
		r := s.ranges
		s.m.MoveAbsoluteScaled(int(s.absX), int(s.absY),
			int(r.xMin), int(r.xMax), int(r.yMin), int(r.yMax))
		s.hasAbs = false
	}
	if s.hasRel {
		s.m.MoveRelative(int(s.relX), int(s.relY))
		s.relX, s.relY = 0, 0
		s.hasRel = false
	}
	if s.hasDown {
		s.press.set(s, s.down)
		s.holding = s.down
		s.hasDown = false
	}
}

// close releases a press the device still held, e.g. when it was unplugged
// mid-touch. Pending samples of an unfinished frame are dropped.
func (s *deviceSource) close() {
	if s.holding {
		inputLog.Debugf("%s: releasing held press on close", s.path)
		s.press.set(s, false)
		s.holding = false
	}
}
