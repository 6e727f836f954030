package main

// Bridge run loop.
//
// Device readers (one goroutine per input node) feed the shared merger; the
// session loop drains it once per tick and forwards every merged event over
// the WebSocket. While disconnected, updates keep coalescing in the merger,
// so a reconnect sends only the latest position/button/wheel state.

import (
	"bufio"
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"pointerbridge/pointer"
	"pointerbridge/rotate"
)

type outHello struct {
	T        string `json:"t"`
	Session  string `json:"session"`
	W        int    `json:"w"`
	H        int    `json:"h"`
	Rotation string `json:"rotation"`
	TS       int64  `json:"ts"`
}

type outPointer struct {
	T     string `json:"t"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Delta int    `json:"delta,omitempty"`
	TS    int64  `json:"ts"`
}

func pointerMessage(ev pointer.Event, ts int64) outPointer {
	return outPointer{T: ev.Type.String(), X: ev.X, Y: ev.Y, Delta: ev.Wheel, TS: ts}
}

func helloMessage(cfg BridgeConfig, rot rotate.Rotation, session string, ts int64) outHello {
	return outHello{
		T:        "hello",
		Session:  session,
		W:        cfg.ScreenWidth,
		H:        cfg.ScreenHeight,
		Rotation: rot.String(),
		TS:       ts,
	}
}

type eventWriter interface {
	WriteJSON(v any) error
}

// drainEvents writes merged events until the merger is empty. An event whose
// write fails is lost; the caller reconnects.
func drainEvents(m *pointer.Merger, w eventWriter) (int, error) {
	n := 0
	for {
		ev := m.Generate()
		if ev.Type == pointer.NoOp {
			return n, nil
		}
		if me, ok := ev.Mouse(); ok {
			bridgeLog.Debugf("merged %s -> %v", ev.Type, me)
		}
		if err := w.WriteJSON(pointerMessage(ev, nowMS())); err != nil {
			return n, err
		}
		n++
	}
}

func RunBridgeForever(cfg BridgeConfig) error {
	if cfg.ListDevices {
		for _, d := range listProcInputDevices() {
			fmt.Printf("name=%q handlers=%v pointer=%v\n", d.name, d.handlers, d.isPointer())
		}
		return nil
	}

	rot, err := rotate.ParseRotation(cfg.Rotation)
	if err != nil {
		return err
	}
	transform := rotate.New(rot)
	merger := pointer.New(transform)
	merger.SetScreenSize(cfg.ScreenWidth, cfg.ScreenHeight)
	if cfg.ScreenWidth == 0 || cfg.ScreenHeight == 0 {
		bridgeLog.Warnf("screen size %dx%d is incomplete; unknown axes are not clamped", cfg.ScreenWidth, cfg.ScreenHeight)
	}

	paths, err := selectDevices(cfg.Inputs, seconds(cfg.ProbeSeconds, 0.1))
	if err != nil {
		return err
	}
	bridgeLog.Infof("merging input devices: %v", paths)
	press := newPressTracker(merger)
	for _, p := range paths {
		go runDeviceForever(p, cfg, press)
	}

	tickEvery := time.Second / time.Duration(max(1, cfg.TickHz))
	wsOpts := cfg.keepalive()

	reconnectDelay := 500 * time.Millisecond
	maxReconnectDelay := 5 * time.Second

	var eventsSent atomic.Int64

	for {
		ctx := context.Background()
		ws, err := DialWS(ctx, cfg.WsURL, wsOpts)
		if err != nil {
			j := time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
			wsLog.Warnf("connect error: %v; retrying in %s", err, reconnectDelay+j)
			time.Sleep(reconnectDelay + j)
			reconnectDelay = time.Duration(math.Min(float64(maxReconnectDelay), float64(reconnectDelay)*1.7))
			continue
		}

		bridgeLog.Infof("connected ws=%s", cfg.WsURL)
		reconnectDelay = 500 * time.Millisecond

		err = runSession(ws, cfg, merger, transform.Rotation(), tickEvery, &eventsSent)
		ws.Close()
		bridgeLog.Infof("disconnected; events_sent=%d; reconnecting in %s (err=%v)", eventsSent.Load(), reconnectDelay, err)
		time.Sleep(reconnectDelay)
	}
}

func runSession(ws *WSConn, cfg BridgeConfig, m *pointer.Merger, rot rotate.Rotation, tickEvery time.Duration, eventsSent *atomic.Int64) error {
	hello := helloMessage(cfg, rot, uuid.NewString(), nowMS())
	if err := ws.WriteJSON(hello); err != nil {
		return err
	}
	bridgeLog.Debugf("session %s started", hello.Session)

	t := time.NewTicker(tickEvery)
	defer t.Stop()
	statsTick := time.Now()

	for {
		select {
		case err := <-ws.Err():
			return err
		case <-t.C:
		}
		if !m.Pending() {
			continue
		}

		n, err := drainEvents(m, ws)
		eventsSent.Add(int64(n))
		if err != nil {
			return err
		}

		if cfg.Debug && time.Since(statsTick) > 2*time.Second {
			statsTick = time.Now()
			x, y := m.Position()
			bridgeLog.Debugf("stats pos=%d,%d down=%v pointers=%v events=%d", x, y, m.IsDown(), m.HasPointer(), eventsSent.Load())
		}
	}
}

// runDeviceForever keeps one input device attached to the merger, reopening
// it after read errors (e.g. a USB mouse being unplugged and replugged).
func runDeviceForever(path string, cfg BridgeConfig, press *pressTracker) {
	retry := time.Second
	for {
		err := readDevice(path, cfg, press)
		inputLog.Warnf("%s: %v; reopening in %s", path, err, retry)
		time.Sleep(retry)
	}
}

func readDevice(path string, cfg BridgeConfig, press *pressTracker) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	fd := int(f.Fd())
	if !cfg.NoGrab {
		if err := tryGrab(fd); err != nil {
			inputLog.Warnf("%s: grab failed: %v", path, err)
		}
	}

	rng := getRanges(fd)
	inputLog.Infof("%s: opened x=[%d,%d] y=[%d,%d]", path, rng.xMin, rng.xMax, rng.yMin, rng.yMax)

	m := press.m
	m.AddPointer()
	defer m.RemovePointer()

	src := newDeviceSource(path, press, rng)
	defer src.close()

	reader := bufio.NewReaderSize(f, 4096)
	parser := &inputParser{}
	chunk := make([]byte, 4096)

	for {
		n, err := reader.Read(chunk)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		for _, ev := range parser.feed(chunk[:n]) {
			if cfg.DumpEvents {
				inputLog.Debugf("%s type=%d code=%d value=%d", path, ev.Type, ev.Code, ev.Value)
			}
			src.handle(ev)
		}
	}
}
