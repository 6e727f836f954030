package main

// Linux input plumbing:
// - constants for the event codes a pointer source produces
// - ioctl helpers to read ABS axis ranges and optionally EVIOCGRAB
// - parsing input_event stream (16B vs 24B timeval size)

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Minimal Linux input constants
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_REL = 0x02
	EV_ABS = 0x03
)

// Keys (buttons + touch contact)
const (
	BTN_LEFT  = 0x110
	BTN_TOUCH = 0x14A
)

// REL axes
const (
	REL_X     = 0x00
	REL_Y     = 0x01
	REL_WHEEL = 0x08
)

// ABS axes
const (
	ABS_X             = 0x00
	ABS_Y             = 0x01
	ABS_MT_SLOT       = 0x2f
	ABS_MT_POSITION_X = 0x35
	ABS_MT_POSITION_Y = 0x36
)

// SYN codes
const (
	SYN_REPORT = 0x00
)

type absInfo struct {
	Value      int32
	Min        int32
	Max        int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

type absRanges struct {
	xMin, xMax int32
	yMin, yMax int32
}

// ioctl request encoding (Linux _IOC macro)
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14
	iocDirBits  = 2

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	iocWrite = 1
	iocRead  = 2
)

func ioc(dir uint32, typ uint32, nr uint32, size uint32) uintptr {
	return uintptr((dir << iocDirShift) | (typ << iocTypeShift) | (nr << iocNRShift) | (size << iocSizeShift))
}

func evioCGAbs(absCode int) uintptr {
	// EVIOCGABS(abs) = _IOR('E', 0x40 + abs, struct input_absinfo)
	return ioc(iocRead, uint32('E'), uint32(0x40+absCode), uint32(unsafe.Sizeof(absInfo{})))
}

func evioCGrab() uintptr {
	// EVIOCGRAB = _IOW('E', 0x90, int)
	return ioc(iocWrite, uint32('E'), uint32(0x90), uint32(unsafe.Sizeof(int32(0))))
}

func getAbsInfo(fd int, absCode int) (absInfo, error) {
	var info absInfo
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGAbs(absCode), uintptr(unsafe.Pointer(&info)))
	if errno != 0 {
		return absInfo{}, errno
	}
	return info, nil
}

// getRanges reads the X/Y ranges of an absolute device, preferring the
// single-touch axes and falling back to the multitouch ones. Relative-only
// devices report an empty range.
func getRanges(fd int) absRanges {
	var r absRanges
	x, err := getAbsInfo(fd, ABS_X)
	if err != nil || x.Max <= x.Min {
		x, err = getAbsInfo(fd, ABS_MT_POSITION_X)
	}
	if err == nil {
		r.xMin, r.xMax = x.Min, x.Max
	}
	y, err := getAbsInfo(fd, ABS_Y)
	if err != nil || y.Max <= y.Min {
		y, err = getAbsInfo(fd, ABS_MT_POSITION_Y)
	}
	if err == nil {
		r.yMin, r.yMax = y.Min, y.Max
	}
	return r
}

func tryGrab(fd int) error {
	var one int32 = 1
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), evioCGrab(), uintptr(unsafe.Pointer(&one)))
	if errno != 0 {
		return errno
	}
	return nil
}

// inputEvent is the type/code/value triple of one struct input_event; the
// kernel timestamp is dropped.
type inputEvent struct {
	Type  uint16
	Code  uint16
	Value int32
}

// inputParser splits a byte stream into input_event records. The record size
// depends on the kernel's timeval: 16 bytes on 32-bit, 24 on 64-bit. It is
// guessed from the first read, which holds whole records.
type inputParser struct {
	buf []byte
	sz  int // 0 unknown, else 16 or 24
}

func (p *inputParser) detectSize() {
	n := len(p.buf)
	switch {
	case n >= 48 && n%24 == 0:
		p.sz = 24
	case n >= 32 && n%16 == 0:
		p.sz = 16
	case n >= 24:
		p.sz = 24
	}
}

// feed appends chunk and returns every complete record buffered so far.
func (p *inputParser) feed(chunk []byte) []inputEvent {
	p.buf = append(p.buf, chunk...)
	if p.sz == 0 {
		p.detectSize()
	}
	if p.sz == 0 {
		return nil
	}

	// type/code/value sit after the timeval
	tv := p.sz - 8
	out := make([]inputEvent, 0, len(p.buf)/p.sz)
	for len(p.buf) >= p.sz {
		rec := p.buf[tv:p.sz]
		out = append(out, inputEvent{
			Type:  binary.LittleEndian.Uint16(rec[0:2]),
			Code:  binary.LittleEndian.Uint16(rec[2:4]),
			Value: int32(binary.LittleEndian.Uint32(rec[4:8])),
		})
		p.buf = p.buf[p.sz:]
	}
	return out
}
