package rfb

import (
	"errors"
	"fmt"
)

var (
	ErrBadGeometry = errors.New("rfb: invalid source geometry")
)

// Geometry describes the fixed layout of a frame source. Stride is the byte
// distance between scanline starts and may exceed Width*BytesPerPixel;
// the padding bytes are never transmitted.
type Geometry struct {
	Width         int
	Height        int
	Stride        int
	BytesPerPixel int
}

// RowBytes is the number of bytes of one transmitted scanline.
func (g Geometry) RowBytes() int {
	return g.Width * g.BytesPerPixel
}

func (g Geometry) Validate() error {
	if g.Width <= 0 || g.Height <= 0 || g.BytesPerPixel <= 0 {
		return fmt.Errorf("%w: %dx%d @ %d bytes/px", ErrBadGeometry, g.Width, g.Height, g.BytesPerPixel)
	}
	if g.Stride < g.RowBytes() {
		return fmt.Errorf("%w: stride %d < row bytes %d", ErrBadGeometry, g.Stride, g.RowBytes())
	}
	return nil
}

// FrameSource is the read-only pixel capability the engine streams from.
// The provider validates the device at setup; reads always succeed. The
// region may be written concurrently by the display owner - torn frames
// are an accepted approximation.
type FrameSource interface {
	Geometry() Geometry

	// ReadRow copies min(len(dst), RowBytes()) bytes of scanline y into dst.
	ReadRow(y int, dst []byte)
}
