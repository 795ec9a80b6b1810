package rfb

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

func TestReadClientMessageConsumesExactPayloads(t *testing.T) {
	var stream bytes.Buffer

	// SetPixelFormat: ignored but fully drained.
	stream.WriteByte(0)
	stream.Write(make([]byte, 3+FormatLen))

	// SetEncodings with three encodings.
	stream.Write([]byte{2, 0, 0, 3})
	stream.Write(make([]byte, 3*4))

	// KeyEvent and PointerEvent.
	stream.WriteByte(4)
	stream.Write(make([]byte, 7))
	stream.WriteByte(5)
	stream.Write(make([]byte, 5))

	// FramebufferUpdateRequest flags readiness.
	stream.WriteByte(3)
	stream.Write(make([]byte, 9))

	// Sentinel byte proving every payload above was consumed exactly.
	stream.WriteByte(0xAB)

	ch := NewChannel(&stream)
	wantUpdate := []bool{false, false, false, false, true}
	for i, want := range wantUpdate {
		got, err := readClientMessage(ch)
		if err != nil {
			t.Fatalf("message %d: %v", i, err)
		}
		if got != want {
			t.Fatalf("message %d: updateRequested=%v, want %v", i, got, want)
		}
	}

	b, err := ch.ReadByte()
	if err != nil || b != 0xAB {
		t.Fatalf("stream desynchronized: %q, %v", b, err)
	}
}

func TestReadClientMessageDrainsLargeCutText(t *testing.T) {
	var stream bytes.Buffer
	text := bytes.Repeat([]byte("x"), 3*cutTextChunk+17)
	stream.WriteByte(6)
	stream.Write(make([]byte, 3))
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(text)))
	stream.Write(length[:])
	stream.Write(text)
	stream.WriteByte(0xAB)

	ch := NewChannel(&stream)
	if _, err := readClientMessage(ch); err != nil {
		t.Fatalf("cut text: %v", err)
	}
	b, err := ch.ReadByte()
	if err != nil || b != 0xAB {
		t.Fatalf("stream desynchronized: %q, %v", b, err)
	}
}

func TestReadClientMessageRejectsUnknownType(t *testing.T) {
	ch := NewChannel(bytes.NewBuffer([]byte{99}))
	if _, err := readClientMessage(ch); !errors.Is(err, ErrUnknownMessage) {
		t.Fatalf("got %v", err)
	}
}

func TestReadClientMessageFailsOnTruncatedPayload(t *testing.T) {
	// KeyEvent announced but only half its payload present.
	ch := NewChannel(bytes.NewBuffer([]byte{4, 0, 0, 0}))
	if _, err := readClientMessage(ch); !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("got %v", err)
	}
}
