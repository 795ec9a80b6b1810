//go:build !linux

package fbdev

import (
	"fmt"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/rfb"
)

// Device exists on non-Linux targets only so the daemon compiles; Open
// always fails. Development on these platforms uses the test pattern.
type Device struct{}

func Open(path string) (*Device, error) {
	return nil, fmt.Errorf("fbdev: %s: framebuffer devices are only supported on linux", path)
}

func (d *Device) Path() string            { return "" }
func (d *Device) Geometry() rfb.Geometry  { return rfb.Geometry{} }
func (d *Device) ReadRow(y int, dst []byte) {}
func (d *Device) Close() error            { return nil }
