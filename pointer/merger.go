// Package pointer merges several raw pointer sources (touch panels reporting
// absolute coordinates, mice reporting relative deltas) into one logical
// pointer and hands the merged state to a UI loop as discrete events.
//
// Input callbacks and the Generate drain may run on different goroutines;
// every method locks the merger for its whole read-modify-write.
package pointer

import "sync"

// Transform maps device coordinates to screen coordinates, typically to
// account for display rotation, and caches the screen size it maps into.
type Transform interface {
	SetSize(width, height int)
	DoAbsolute(x, y int) (int, int)
	DoRelative(dx, dy int) (int, int)
	GetWidth() int
	GetHeight() int
}

// deviceSizer is implemented by transforms whose device axes do not line up
// with the screen axes, such as quarter-turn rotations.
type deviceSizer interface {
	DeviceSize() (width, height int)
}

// Merger holds the state of the single logical pointer.
type Merger struct {
	mu     sync.Mutex
	rotate Transform

	x, y int
	down bool

	// one-shot latches, cleared only by Generate
	pressed, released, moved bool

	wheel int

	pointers int
}

// New returns a Merger using t for coordinate mapping. A nil t maps
// coordinates unchanged.
func New(t Transform) *Merger {
	if t == nil {
		t = &identity{}
	}
	return &Merger{rotate: t}
}

// SetScreenSize recentres the pointer on every axis whose dimension changed
// and forwards the new size to the transform.
func (m *Merger) SetScreenSize(width, height int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if width != m.rotate.GetWidth() {
		m.x = width / 2
	}
	if height != m.rotate.GetHeight() {
		m.y = height / 2
	}
	m.rotate.SetSize(width, height)
}

// SetDown records the press state. Repeated reports of the same state are
// ignored.
func (m *Merger) SetDown(down bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if down == m.down {
		return
	}
	m.down = down
	if down {
		m.pressed = true
	} else {
		m.released = true
	}
}

// MoveAbsolute moves the pointer to the device position (x, y).
func (m *Merger) MoveAbsolute(x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	x, y = m.rotate.DoAbsolute(x, y)
	m.moveTo(x, y)
}

// MoveAbsoluteScaled moves the pointer to a device position reported in the
// source range [minX, maxX] × [minY, maxY], rescaled to the screen size.
//
// A value below its minimum maps to 0. Values above the maximum are scaled
// like any other and left to the screen clamp. The minimum is not subtracted
// before scaling.
//
// The target dimension is the screen size. Transforms with a DeviceSize
// (quarter-turn rotations) scale each device axis to the screen dimension it
// lands on instead, since their device X runs along the screen's height; for
// unrotated, 180° and identity transforms the two are the same.
func (m *Merger) MoveAbsoluteScaled(x, y, minX, maxX, minY, maxY int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, h := m.rotate.GetWidth(), m.rotate.GetHeight()
	if ds, ok := m.rotate.(deviceSizer); ok {
		w, h = ds.DeviceSize()
	}
	x = scaleAxis(x, minX, maxX, w)
	y = scaleAxis(y, minY, maxY, h)

	x, y = m.rotate.DoAbsolute(x, y)
	m.moveTo(x, y)
}

func scaleAxis(v, lo, hi, dim int) int {
	if v < lo {
		return 0
	}
	if hi > lo {
		return v * dim / (hi - lo)
	}
	return v
}

// MoveRelative moves the pointer by the device delta (dx, dy).
func (m *Merger) MoveRelative(dx, dy int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dx, dy = m.rotate.DoRelative(dx, dy)
	m.moveTo(m.x+dx, m.y+dy)
}

// AddWheel accumulates a wheel delta until the next Wheel event.
func (m *Merger) AddWheel(delta int) {
	m.mu.Lock()
	m.wheel += delta
	m.mu.Unlock()
}

// moveTo clamps a screen position and latches moved on change. Each axis is
// clamped only when its screen dimension is known.
func (m *Merger) moveTo(x, y int) {
	if w := m.rotate.GetWidth(); w > 0 {
		x = clamp(x, w)
	}
	if x != m.x {
		m.x = x
		m.moved = true
	}

	if h := m.rotate.GetHeight(); h > 0 {
		y = clamp(y, h)
	}
	if y != m.y {
		m.y = y
		m.moved = true
	}
}

func clamp(v, dim int) int {
	if v < 0 {
		return 0
	}
	if v >= dim {
		return dim - 1
	}
	return v
}

// Generate consumes one pending change and returns it as an Event, in the
// order Motion, Down, Up, Wheel. It returns a NoOp event once nothing is
// pending, so callers drain by looping until they see NoOp.
func (m *Merger) Generate() Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.moved:
		m.moved = false
		return Event{Type: Motion, X: m.x, Y: m.y}
	case m.pressed:
		m.pressed = false
		return Event{Type: Down, X: m.x, Y: m.y}
	case m.released:
		m.released = false
		return Event{Type: Up, X: m.x, Y: m.y}
	case m.wheel != 0:
		ev := Event{Type: Wheel, X: m.x, Y: m.y, Wheel: m.wheel}
		m.wheel = 0
		return ev
	}
	return Event{Type: NoOp}
}

// Pending reports whether Generate would return something other than NoOp.
func (m *Merger) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.moved || m.pressed || m.released || m.wheel != 0
}

// Position returns the current pointer position.
func (m *Merger) Position() (x, y int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.x, m.y
}

func (m *Merger) IsDown() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.down
}

// AddPointer registers an attached pointer device.
func (m *Merger) AddPointer() {
	m.mu.Lock()
	m.pointers++
	m.mu.Unlock()
}

// RemovePointer unregisters a device added with AddPointer.
func (m *Merger) RemovePointer() {
	m.mu.Lock()
	if m.pointers > 0 {
		m.pointers--
	}
	m.mu.Unlock()
}

// HasPointer reports whether at least one pointer device is attached.
func (m *Merger) HasPointer() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pointers > 0
}

// identity is the Transform used when none is supplied.
type identity struct {
	width, height int
}

func (t *identity) SetSize(width, height int)        { t.width, t.height = width, height }
func (t *identity) DoAbsolute(x, y int) (int, int)   { return x, y }
func (t *identity) DoRelative(dx, dy int) (int, int) { return dx, dy }
func (t *identity) GetWidth() int                    { return t.width }
func (t *identity) GetHeight() int                   { return t.height }
