//go:build linux

package fbdev

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
)

// ioctl request codes from linux/fb.h.
const (
	fbioGetVScreenInfo = 0x4600
	fbioGetFScreenInfo = 0x4602
)

type fbBitfield struct {
	Offset   uint32
	Length   uint32
	MSBRight uint32
}

// varScreenInfo mirrors struct fb_var_screeninfo.
type varScreenInfo struct {
	XRes         uint32
	YRes         uint32
	XResVirtual  uint32
	YResVirtual  uint32
	XOffset      uint32
	YOffset      uint32
	BitsPerPixel uint32
	Grayscale    uint32
	Red          fbBitfield
	Green        fbBitfield
	Blue         fbBitfield
	Transp       fbBitfield
	NonStd       uint32
	Activate     uint32
	Height       uint32
	Width        uint32
	AccelFlags   uint32
	PixClock     uint32
	LeftMargin   uint32
	RightMargin  uint32
	UpperMargin  uint32
	LowerMargin  uint32
	HsyncLen     uint32
	VsyncLen     uint32
	Sync         uint32
	VMode        uint32
	Rotate       uint32
	Colorspace   uint32
	Reserved     [4]uint32
}

// fixScreenInfo mirrors struct fb_fix_screeninfo. The unsigned long fields
// are uintptr so the layout matches on both 32- and 64-bit targets.
type fixScreenInfo struct {
	ID           [16]byte
	SmemStart    uintptr
	SmemLen      uint32
	Type         uint32
	TypeAux      uint32
	Visual       uint32
	XPanStep     uint16
	YPanStep     uint16
	YWrapStep    uint16
	LineLength   uint32
	MmioStart    uintptr
	MmioLen      uint32
	Accel        uint32
	Capabilities uint16
	Reserved     [2]uint16
}

// Device is a read-only mapping of a Linux framebuffer device.
type Device struct {
	path string
	file *os.File
	mem  []byte
	geo  rfb.Geometry
}

// Open opens the framebuffer read-only, queries its geometry, and maps
// stride*height bytes of display memory. The mapping never carries write
// permission, so the streamer cannot disturb the display owner. Only
// 32 bits per pixel is supported; anything else is a fatal setup error.
func Open(path string) (*Device, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("fbdev: open %s: %w", path, err)
	}

	var vinfo varScreenInfo
	if err := ioctl(f.Fd(), fbioGetVScreenInfo, unsafe.Pointer(&vinfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: FBIOGET_VSCREENINFO %s: %w", path, err)
	}
	var finfo fixScreenInfo
	if err := ioctl(f.Fd(), fbioGetFScreenInfo, unsafe.Pointer(&finfo)); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: FBIOGET_FSCREENINFO %s: %w", path, err)
	}

	if vinfo.BitsPerPixel != 32 {
		f.Close()
		return nil, fmt.Errorf("fbdev: %s: unsupported bits_per_pixel %d (want 32)", path, vinfo.BitsPerPixel)
	}

	geo := rfb.Geometry{
		Width:         int(vinfo.XRes),
		Height:        int(vinfo.YRes),
		Stride:        int(finfo.LineLength),
		BytesPerPixel: 4,
	}
	if err := geo.Validate(); err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: %s: %w", path, err)
	}

	// stride*height, not width*height*4: lines may carry padding.
	size := geo.Stride * geo.Height
	mem, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("fbdev: mmap %s: %w", path, err)
	}

	return &Device{path: path, file: f, mem: mem, geo: geo}, nil
}

func (d *Device) Path() string {
	return d.path
}

func (d *Device) Geometry() rfb.Geometry {
	return d.geo
}

func (d *Device) ReadRow(y int, dst []byte) {
	off := y * d.geo.Stride
	copy(dst, d.mem[off:off+d.geo.RowBytes()])
}

func (d *Device) Close() error {
	err := unix.Munmap(d.mem)
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}

func ioctl(fd uintptr, req uintptr, arg unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
