package rfb

import (
	"errors"
	"io"
	"net"
	"testing"

	"github.com/adamdewolf/OpenCentauri-VNC/internal/testutil/rfbtest"
)

func testInit() ServerInit {
	return ServerInit{
		Width:  480,
		Height: 544,
		Format: ServerFormat(),
		Name:   "fb0 (RAW)",
	}
}

func runHandshake(t *testing.T) (net.Conn, <-chan error) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	done := make(chan error, 1)
	go func() {
		done <- Handshake(NewChannel(server), testInit())
	}()
	return client, done
}

func TestHandshakeTranscript(t *testing.T) {
	client, done := runHandshake(t)

	c := rfbtest.NewClient(client)
	info, err := c.Handshake()
	if err != nil {
		t.Fatalf("client handshake: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("server handshake: %v", err)
	}

	if info.Version != ProtocolVersion {
		t.Fatalf("unexpected version: %q", info.Version)
	}
	if info.Width != 480 || info.Height != 544 {
		t.Fatalf("unexpected geometry: %dx%d", info.Width, info.Height)
	}
	if info.Name != "fb0 (RAW)" {
		t.Fatalf("unexpected name: %q", info.Name)
	}

	format, err := DecodePixelFormat(info.Format[:])
	if err != nil {
		t.Fatalf("decode format: %v", err)
	}
	if format != ServerFormat() {
		t.Fatalf("format drifted: %+v", format)
	}
}

func TestHandshakeAcceptsAnyClientVersion(t *testing.T) {
	// The reply must be 12 bytes; the content is deliberately not checked
	// so older 3.x viewers still connect.
	client, done := runHandshake(t)

	var version [12]byte
	if _, err := io.ReadFull(client, version[:]); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if _, err := client.Write([]byte("RFB 003.003\n")); err != nil {
		t.Fatalf("send version: %v", err)
	}

	types := make([]byte, 2)
	if _, err := io.ReadFull(client, types); err != nil {
		t.Fatalf("read security types: %v", err)
	}
	if types[0] != 1 || types[1] != 1 {
		t.Fatalf("unexpected security offer: % x", types)
	}
	if _, err := client.Write([]byte{1}); err != nil {
		t.Fatalf("choose security: %v", err)
	}

	rest := make([]byte, 4)
	if _, err := io.ReadFull(client, rest); err != nil {
		t.Fatalf("read security result: %v", err)
	}
	if _, err := client.Write([]byte{0}); err != nil {
		t.Fatalf("send client init: %v", err)
	}

	head := make([]byte, 24)
	if _, err := io.ReadFull(client, head); err != nil {
		t.Fatalf("read server init: %v", err)
	}
	name := make([]byte, len("fb0 (RAW)"))
	if _, err := io.ReadFull(client, name); err != nil {
		t.Fatalf("read name: %v", err)
	}

	if err := <-done; err != nil {
		t.Fatalf("server handshake: %v", err)
	}
}

func TestHandshakeRefusesOtherSecurityTypes(t *testing.T) {
	client, done := runHandshake(t)

	var version [12]byte
	if _, err := io.ReadFull(client, version[:]); err != nil {
		t.Fatalf("read version: %v", err)
	}
	if _, err := client.Write(version[:]); err != nil {
		t.Fatalf("echo version: %v", err)
	}
	types := make([]byte, 2)
	if _, err := io.ReadFull(client, types); err != nil {
		t.Fatalf("read security types: %v", err)
	}
	if _, err := client.Write([]byte{2}); err != nil { // VNC Authentication
		t.Fatalf("choose security: %v", err)
	}

	if err := <-done; !errors.Is(err, ErrSecurityRefused) {
		t.Fatalf("got %v", err)
	}
}

func TestHandshakeFailsOnEarlyClose(t *testing.T) {
	client, done := runHandshake(t)

	var version [12]byte
	if _, err := io.ReadFull(client, version[:]); err != nil {
		t.Fatalf("read version: %v", err)
	}
	client.Close()

	if err := <-done; !errors.Is(err, ErrChannelClosed) {
		t.Fatalf("got %v", err)
	}
}
