package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const procDevices = `I: Bus=0019 Vendor=0000 Product=0001 Version=0000
N: Name="Power Button"
P: Phys=LNXPWRBN/button/input0
H: Handlers=kbd event0
B: EV=3

I: Bus=0003 Vendor=046d Product=c077 Version=0111
N: Name="Logitech USB Optical Mouse"
H: Handlers=mouse0 event3
B: EV=17

I: Bus=0018 Vendor=0000 Product=0000 Version=0000
N: Name="pt_mt"
H: Handlers=event2
B: EV=b

I: Bus=0018 Vendor=0416 Product=038f Version=0100
N: Name="FT5406 memory based driver Touchscreen"
H: Handlers=event1
B: EV=b
`

func TestParseProcInputDevices(t *testing.T) {
	devs := parseProcInputDevices(procDevices)
	require.Len(t, devs, 4)
	require.Equal(t, "Logitech USB Optical Mouse", devs[1].name)
	require.Equal(t, []string{"mouse0", "event3"}, devs[1].handlers)
	require.Equal(t, "/dev/input/event3", devs[1].eventNode())
	require.True(t, devs[1].isPointer())
	require.False(t, devs[0].isPointer())
	require.False(t, devs[2].isPointer())
}

func TestHeuristicPointerPaths(t *testing.T) {
	got := heuristicPointerPaths(parseProcInputDevices(procDevices))
	require.Equal(t, []string{"/dev/input/event1", "/dev/input/event3"}, got)
}

func TestProbeScore(t *testing.T) {
	var kbd devProbe
	kbd.count(inputEvent{Type: EV_KEY, Code: 30})
	kbd.count(inputEvent{Type: EV_SYN, Code: SYN_REPORT})
	require.Equal(t, 0, kbd.score())
	require.Equal(t, 2, kbd.any)

	var mouse devProbe
	mouse.count(inputEvent{Type: EV_REL, Code: REL_X})
	mouse.count(inputEvent{Type: EV_REL, Code: REL_WHEEL})
	mouse.count(inputEvent{Type: EV_KEY, Code: BTN_LEFT})
	require.Equal(t, 15, mouse.score())
}

func TestSelectDevicesExplicit(t *testing.T) {
	got, err := selectDevices([]string{"/dev/input/event9"}, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"/dev/input/event9"}, got)
}
