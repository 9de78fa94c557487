package lsp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/quill-editor/quill/internal/integration/process"
)

// writeFakeServer writes a shell script that plays back canned replies
// and then holds stdin open so the process stays alive.
func writeFakeServer(t *testing.T, replies ...string) string {
	t.Helper()

	dir := t.TempDir()

	stream := ""
	for _, body := range replies {
		stream += fmt.Sprintf("Content-Length: %d\r\n\r\n%s", len(body), body)
	}
	dataPath := filepath.Join(dir, "replies.bin")
	if err := os.WriteFile(dataPath, []byte(stream), 0o644); err != nil {
		t.Fatalf("writing reply data: %v", err)
	}

	script := fmt.Sprintf("#!/bin/sh\ncat %q\ncat > /dev/null\n", dataPath)
	scriptPath := filepath.Join(dir, "server.sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0o755); err != nil {
		t.Fatalf("writing server script: %v", err)
	}
	return scriptPath
}

func TestNewConnector_MissingBinary(t *testing.T) {
	_, err := NewConnector("definitely-not-a-real-lsp-server", nil, "go", "/tmp/main.go")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}

	var spawnErr *process.SpawnError
	if !errors.As(err, &spawnErr) {
		t.Errorf("error = %v, expected *process.SpawnError", err)
	}
}

func TestConnector_HoverBeforeInit(t *testing.T) {
	conn, err := NewConnector("cat", nil, "go", "/tmp/main.go")
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	defer conn.Close()

	if conn.IsInitialized() {
		t.Error("IsInitialized() = true before Init")
	}
	if lines := conn.Hover(context.Background(), 0, 0); lines != nil {
		t.Errorf("Hover() before Init = %v, expected nil", lines)
	}
}

func TestConnector_InitAndHover(t *testing.T) {
	server := writeFakeServer(t,
		`{"jsonrpc":"2.0","id":0,"result":{"capabilities":{}}}`,
		`{"jsonrpc":"2.0","id":1,"result":{"contents":{"kind":"markdown","value":"foo\nbar"}}}`,
	)

	conn, err := NewConnector("sh", []string{server}, "go", "/tmp/main.go",
		WithRequestTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Init(context.Background(), "package main\r\n"); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if !conn.IsInitialized() {
		t.Error("IsInitialized() = false after Init")
	}

	lines := conn.Hover(context.Background(), 3, 5)
	if len(lines) != 2 || lines[0] != "foo" || lines[1] != "bar" {
		t.Errorf("Hover() = %v, expected [foo bar]", lines)
	}
}

func TestConnector_InitIdempotent(t *testing.T) {
	server := writeFakeServer(t, `{"jsonrpc":"2.0","id":0,"result":{"capabilities":{}}}`)

	conn, err := NewConnector("sh", []string{server}, "go", "/tmp/main.go",
		WithRequestTimeout(5*time.Second))
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Init(context.Background(), ""); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	// No further server replies exist; a second Init must not need any.
	if err := conn.Init(context.Background(), ""); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
}

func TestConnector_InitTimeout(t *testing.T) {
	// cat echoes the client's own request back; the echo carries a
	// method field so it is never treated as the reply.
	conn, err := NewConnector("cat", nil, "go", "/tmp/main.go",
		WithRequestTimeout(100*time.Millisecond))
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	defer conn.Close()

	start := time.Now()
	if err := conn.Init(context.Background(), ""); err == nil {
		t.Fatal("Init() = nil, expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Init() took %v, expected prompt timeout", elapsed)
	}
	if conn.IsInitialized() {
		t.Error("IsInitialized() = true after failed Init")
	}
}

func TestConnector_InitAgainstDeadServer(t *testing.T) {
	conn, err := NewConnector("true", nil, "go", "/tmp/main.go")
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}
	defer conn.Close()

	if err := conn.Init(context.Background(), ""); !errors.Is(err, ErrTransportClosed) {
		t.Errorf("Init() against exited server error = %v, expected ErrTransportClosed", err)
	}
}

func TestConnector_CloseIdempotent(t *testing.T) {
	conn, err := NewConnector("cat", nil, "go", "/tmp/main.go")
	if err != nil {
		t.Fatalf("NewConnector() error = %v", err)
	}

	conn.Close()
	conn.Close()

	if lines := conn.Hover(context.Background(), 0, 0); lines != nil {
		t.Errorf("Hover() after Close = %v, expected nil", lines)
	}
}
