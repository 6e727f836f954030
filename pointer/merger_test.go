package pointer

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// drain calls Generate until it returns NoOp and returns everything before it.
func drain(m *Merger) []Event {
	var out []Event
	for {
		ev := m.Generate()
		if ev.Type == NoOp {
			return out
		}
		out = append(out, ev)
	}
}

// countingTransform negates relative deltas and records calls.
type countingTransform struct {
	identity
	sizes     int
	absolutes int
	relatives int
}

func (t *countingTransform) SetSize(w, h int) {
	t.sizes++
	t.identity.SetSize(w, h)
}

func (t *countingTransform) DoAbsolute(x, y int) (int, int) {
	t.absolutes++
	return x, y
}

func (t *countingTransform) DoRelative(dx, dy int) (int, int) {
	t.relatives++
	return -dx, -dy
}

func TestMoveAbsoluteStaysOnScreen(t *testing.T) {
	const w, h = 320, 240
	m := New(nil)
	m.SetScreenSize(w, h)

	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 1000; i++ {
		m.MoveAbsolute(rng.Intn(4*w)-2*w, rng.Intn(4*h)-2*h)
		x, y := m.Position()
		require.True(t, x >= 0 && x < w, "x=%d", x)
		require.True(t, y >= 0 && y < h, "y=%d", y)
	}
}

func TestMoveAbsoluteClampEdges(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 50)

	m.MoveAbsolute(100, 50)
	x, y := m.Position()
	require.Equal(t, 99, x)
	require.Equal(t, 49, y)

	m.MoveAbsolute(-1, -1)
	x, y = m.Position()
	require.Equal(t, 0, x)
	require.Equal(t, 0, y)
}

func TestMoveAbsoluteUnknownScreen(t *testing.T) {
	m := New(nil)
	m.MoveAbsolute(-5, 7000)
	require.Equal(t, []Event{{Type: Motion, X: -5, Y: 7000}}, drain(m))
}

func TestMoveAbsoluteSamePositionTwice(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)

	m.MoveAbsolute(10, 20)
	require.Equal(t, []Event{{Type: Motion, X: 10, Y: 20}}, drain(m))

	m.MoveAbsolute(10, 20)
	require.Empty(t, drain(m))
}

func TestMoveAbsoluteSingleAxis(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)

	m.MoveAbsolute(10, 50)
	x, y := m.Position()
	require.Equal(t, 10, x)
	require.Equal(t, 50, y)
	require.Equal(t, []Event{{Type: Motion, X: 10, Y: 50}}, drain(m))
}

func TestMoveAbsoluteCoalesces(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)

	m.MoveAbsolute(1, 1)
	m.MoveAbsolute(2, 3)
	m.MoveAbsolute(4, 5)
	require.Equal(t, []Event{{Type: Motion, X: 4, Y: 5}}, drain(m))
}

func TestSetDown(t *testing.T) {
	m := New(nil)

	m.SetDown(false)
	require.False(t, m.Pending())

	m.SetDown(true)
	require.True(t, m.IsDown())
	require.Equal(t, []Event{{Type: Down}}, drain(m))

	m.SetDown(true)
	require.Empty(t, drain(m))

	m.SetDown(false)
	require.False(t, m.IsDown())
	require.Equal(t, []Event{{Type: Up}}, drain(m))
}

func TestSetScreenSize(t *testing.T) {
	tr := &countingTransform{}
	m := New(tr)

	m.SetScreenSize(100, 200)
	x, y := m.Position()
	require.Equal(t, 50, x)
	require.Equal(t, 100, y)
	require.Empty(t, drain(m), "resize must not emit events")

	m.MoveAbsolute(10, 20)
	drain(m)

	// same size: no recentring, but still forwarded
	m.SetScreenSize(100, 200)
	x, y = m.Position()
	require.Equal(t, 10, x)
	require.Equal(t, 20, y)
	require.Equal(t, 2, tr.sizes)

	// width changed: only x recentres
	m.SetScreenSize(150, 200)
	x, y = m.Position()
	require.Equal(t, 75, x)
	require.Equal(t, 20, y)
	require.Equal(t, 3, tr.sizes)
	require.Equal(t, 150, tr.GetWidth())
}

func TestGeneratePriority(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)

	m.AddWheel(-2)
	m.SetDown(true)
	m.MoveAbsolute(30, 40)

	want := []Event{
		{Type: Motion, X: 30, Y: 40},
		{Type: Down, X: 30, Y: 40},
		{Type: Wheel, X: 30, Y: 40, Wheel: -2},
	}
	if diff := cmp.Diff(want, drain(m)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateMotionThenDown(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)
	m.SetDown(true)
	m.MoveAbsolute(1, 2)

	require.Equal(t, Motion, m.Generate().Type)
	require.Equal(t, Down, m.Generate().Type)
	require.Equal(t, NoOp, m.Generate().Type)
	require.Equal(t, NoOp, m.Generate().Type)
}

func TestGenerateUpAfterDownDrained(t *testing.T) {
	m := New(nil)
	m.SetDown(true)
	require.Equal(t, Down, m.Generate().Type)

	m.SetDown(false)
	m.AddWheel(1)
	require.Equal(t, Up, m.Generate().Type)
	require.Equal(t, Wheel, m.Generate().Type)
	require.Equal(t, NoOp, m.Generate().Type)
}

func TestMoveAbsoluteScaled(t *testing.T) {
	tests := []struct {
		name       string
		x, y       int
		minX, maxX int
		minY, maxY int
		wantX      int
		wantY      int
	}{
		{"below minimum", 5, 5, 10, 110, 10, 110, 0, 0},
		{"in range", 60, 60, 10, 110, 10, 110, 120, 120},
		{"above maximum clamps", 150, 105, 10, 110, 10, 110, 199, 199},
		{"empty range passes through", 42, 43, 10, 10, 20, 5, 42, 43},
		{"empty range below minimum", 42, 3, 10, 10, 20, 5, 42, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := New(nil)
			m.SetScreenSize(200, 200)
			m.MoveAbsoluteScaled(tc.x, tc.y, tc.minX, tc.maxX, tc.minY, tc.maxY)
			x, y := m.Position()
			require.Equal(t, tc.wantX, x)
			require.Equal(t, tc.wantY, y)
		})
	}
}

func TestMoveRelative(t *testing.T) {
	m := New(nil)
	m.SetScreenSize(100, 100)

	m.MoveRelative(5, -10)
	require.Equal(t, []Event{{Type: Motion, X: 55, Y: 40}}, drain(m))

	m.MoveRelative(1000, 1000)
	require.Equal(t, []Event{{Type: Motion, X: 99, Y: 99}}, drain(m))

	m.MoveRelative(0, 0)
	require.Empty(t, drain(m))
}

func TestMoveRelativeTransformsOnce(t *testing.T) {
	tr := &countingTransform{}
	m := New(tr)
	m.SetScreenSize(100, 100)

	m.MoveRelative(5, 7)
	x, y := m.Position()
	require.Equal(t, 45, x)
	require.Equal(t, 43, y)
	require.Equal(t, 1, tr.relatives)
	require.Equal(t, 0, tr.absolutes)
}

func TestAddWheel(t *testing.T) {
	m := New(nil)
	m.AddWheel(1)
	m.AddWheel(2)

	require.Equal(t, Event{Type: Wheel, Wheel: 3}, m.Generate())
	require.Equal(t, Event{Type: NoOp}, m.Generate())

	m.AddWheel(2)
	m.AddWheel(-2)
	require.Equal(t, NoOp, m.Generate().Type)
}

func TestPointerCount(t *testing.T) {
	m := New(nil)
	require.False(t, m.HasPointer())

	m.AddPointer()
	m.AddPointer()
	m.RemovePointer()
	require.True(t, m.HasPointer())

	m.RemovePointer()
	m.RemovePointer()
	require.False(t, m.HasPointer())
}

func TestConcurrentWheelIsNotLost(t *testing.T) {
	m := New(nil)

	const workers, ticks = 8, 500
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < ticks; j++ {
				m.AddWheel(1)
			}
		}()
	}

	done := make(chan struct{})
	total := 0
	go func() {
		defer close(done)
		for total < workers*ticks {
			if ev := m.Generate(); ev.Type == Wheel {
				total += ev.Wheel
			}
		}
	}()

	wg.Wait()
	<-done
	require.Equal(t, workers*ticks, total)
	require.Equal(t, NoOp, m.Generate().Type)
}

// swapTransform swaps axes like a quarter turn and reports swapped device axes.
type swapTransform struct {
	identity
}

func (t *swapTransform) DoAbsolute(x, y int) (int, int) { return y, x }

func (t *swapTransform) DeviceSize() (int, int) { return t.height, t.width }

func TestMoveAbsoluteScaledUsesDeviceSize(t *testing.T) {
	m := New(&swapTransform{})
	m.SetScreenSize(100, 200)

	// device X spans the screen height (200), device Y the width (100)
	m.MoveAbsoluteScaled(20, 80, 0, 100, 0, 100)
	x, y := m.Position()
	require.Equal(t, 80, x)
	require.Equal(t, 40, y)

	// without DeviceSize the screen size is the target
	m = New(nil)
	m.SetScreenSize(100, 200)
	m.MoveAbsoluteScaled(20, 80, 0, 100, 0, 100)
	x, y = m.Position()
	require.Equal(t, 20, x)
	require.Equal(t, 160, y)
}
