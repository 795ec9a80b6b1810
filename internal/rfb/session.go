package rfb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/observability"
)

// Frame rate bounds. The cap keeps the streamer from starving the process
// that owns the display.
const (
	MinFPS = 1
	MaxFPS = 15
)

// idlePollInterval paces the loop while the client has not yet asked for
// updates.
const idlePollInterval = 50 * time.Millisecond

// ClampFPS bounds a requested frame rate to [MinFPS, MaxFPS]. Out-of-range
// values are clamped, never rejected.
func ClampFPS(fps int) int {
	if fps < MinFPS {
		return MinFPS
	}
	if fps > MaxFPS {
		return MaxFPS
	}
	return fps
}

// FrameInterval returns the pause between full-frame updates for the
// requested rate, after clamping.
func FrameInterval(fps int) time.Duration {
	return time.Second / time.Duration(ClampFPS(fps))
}

// Session serves one connected viewer. No state survives the session; each
// accepted connection starts fresh.
type Session struct {
	ch       *Channel
	src      FrameSource
	init     ServerInit
	interval time.Duration
	logger   zerolog.Logger

	// ready flips to true on the first FramebufferUpdateRequest and never
	// reverts for the life of the session.
	ready bool
}

// NewSession wires a session over rw. The caller owns the connection and
// must close it after Run returns.
func NewSession(rw io.ReadWriter, src FrameSource, name string, fps int, logger zerolog.Logger) *Session {
	g := src.Geometry()
	return &Session{
		ch:  NewChannel(rw),
		src: src,
		init: ServerInit{
			Width:  uint16(g.Width),
			Height: uint16(g.Height),
			Format: ServerFormat(),
			Name:   name,
		},
		interval: FrameInterval(fps),
		logger:   logger,
	}
}

type clientEvent struct {
	updateRequested bool
	err             error
}

// Run performs the handshake and then alternates between draining client
// messages and pacing frame sends until the transport fails or the client
// violates the protocol. The returned error is the teardown cause; it is
// logged by the caller and never sent to the peer.
//
// The non-blocking poll of the reference behavior is modeled as two
// cooperating goroutines: a reader that decodes one message at a time and
// hands it over an unbuffered channel, and the pump below, which takes at
// most one pending message per tick. A frame-send failure cancels the
// reader through the shared context and the caller's connection close.
func (s *Session) Run(ctx context.Context) error {
	if err := Handshake(s.ch, s.init); err != nil {
		return err
	}
	s.logger.Info().
		Uint16("width", s.init.Width).
		Uint16("height", s.init.Height).
		Str("name", s.init.Name).
		Msg("handshake complete")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan clientEvent)
	go func() {
		for {
			requested, err := readClientMessage(s.ch)
			select {
			case events <- clientEvent{updateRequested: requested, err: err}:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	row := make([]byte, s.src.Geometry().RowBytes())
	for {
		// At most one client message per tick bounds update latency without
		// letting a chatty viewer stall the pump.
		select {
		case ev := <-events:
			if ev.err != nil {
				return ev.err
			}
			if ev.updateRequested && !s.ready {
				s.ready = true
				s.logger.Debug().Msg("viewer requested updates")
			}
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !s.ready {
			if err := sleep(ctx, idlePollInterval); err != nil {
				return err
			}
			continue
		}

		start := time.Now()
		sent, err := writeUpdate(s.ch, s.src, row)
		if err != nil {
			return fmt.Errorf("rfb: update aborted after %d bytes: %w", sent, err)
		}
		observability.RecordFrame(sent, time.Since(start))

		if err := sleep(ctx, s.interval); err != nil {
			return err
		}
	}
}

// IsProtocolViolation reports whether a session ended because the client
// broke the protocol rather than a transport failure. Both are fatal to the
// session only; the distinction exists for logs and metrics.
func IsProtocolViolation(err error) bool {
	return errors.Is(err, ErrUnknownMessage) || errors.Is(err, ErrSecurityRefused)
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
