// Package rotate maps device coordinates onto a rotated screen.
package rotate

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRotation is returned by ParseRotation for unknown values.
var ErrInvalidRotation = errors.New("invalid rotation")

// Rotation is the clockwise angle between device and screen axes.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

func (r Rotation) String() string {
	switch r {
	case Rotate0:
		return "0"
	case Rotate90:
		return "90"
	case Rotate180:
		return "180"
	case Rotate270:
		return "270"
	}
	return fmt.Sprintf("Rotation(%d)", int(r))
}

// ParseRotation accepts degrees (0, 90, 180, 270) or the xrandr names
// (normal, right, inverted, left).
func ParseRotation(s string) (Rotation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "0", "normal":
		return Rotate0, nil
	case "90", "right":
		return Rotate90, nil
	case "180", "inverted":
		return Rotate180, nil
	case "270", "left":
		return Rotate270, nil
	}
	return Rotate0, fmt.Errorf("%w: %q", ErrInvalidRotation, s)
}

// Pointer maps pointer coordinates from device space to screen space.
// The zero value is an unrotated pointer with unknown screen size.
type Pointer struct {
	rotation      Rotation
	width, height int
}

func New(r Rotation) *Pointer {
	return &Pointer{rotation: r}
}

func (p *Pointer) Rotation() Rotation { return p.rotation }

// SetSize sets the screen size in screen pixels.
func (p *Pointer) SetSize(width, height int) {
	p.width, p.height = width, height
}

func (p *Pointer) GetWidth() int  { return p.width }
func (p *Pointer) GetHeight() int { return p.height }

// DeviceSize returns the screen size measured along the device axes.
func (p *Pointer) DeviceSize() (width, height int) {
	if p.swapped() {
		return p.height, p.width
	}
	return p.width, p.height
}

func (p *Pointer) swapped() bool {
	return p.rotation == Rotate90 || p.rotation == Rotate270
}

// DoAbsolute maps a device position to a screen position. Axes whose screen
// dimension is unknown are not mirrored.
func (p *Pointer) DoAbsolute(x, y int) (int, int) {
	switch p.rotation {
	case Rotate90:
		return mirror(y, p.width), x
	case Rotate180:
		return mirror(x, p.width), mirror(y, p.height)
	case Rotate270:
		return y, mirror(x, p.height)
	}
	return x, y
}

// DoRelative maps a device delta to a screen delta.
func (p *Pointer) DoRelative(dx, dy int) (int, int) {
	switch p.rotation {
	case Rotate90:
		return -dy, dx
	case Rotate180:
		return -dx, -dy
	case Rotate270:
		return dy, -dx
	}
	return dx, dy
}

func mirror(v, dim int) int {
	if dim <= 0 {
		return v
	}
	return dim - 1 - v
}
