// Package lsp provides the language server session layer for Quill.
//
// The package turns the editor's in-process buffer into a live peer of an
// external language server speaking JSON-RPC 2.0 over stdio with
// Content-Length framing, and exposes hover results back to the editor's
// synchronous loop.
//
// # Architecture
//
// The package is organized around three components:
//
//   - Connector: the façade consumed by the editor
//   - Session: protocol state machine (handshake, hover exchanges)
//   - Transport: framing pumps between the subprocess pipes and channels
//
// The subprocess itself is owned by the process package.
//
// # Quick Start
//
//	conn, err := lsp.NewConnector("gopls", []string{"serve"}, "go", "/abs/path/main.go")
//	if err != nil {
//	    // no language intelligence available; keep editing
//	}
//	defer conn.Close()
//
//	if err := conn.Init(ctx, bufferText); err == nil {
//	    lines := conn.Hover(ctx, 3, 5)
//	    // lines is nil when there is no hover information
//	}
//
// # Concurrency
//
// Each Connector adds exactly two background goroutines (the transport's
// read and write pumps) plus the subprocess. Exchanges are strictly
// serialized: a caller blocks until its reply arrives, so there is never
// more than one request in flight. By default no deadline applies and an
// unresponsive server blocks the caller indefinitely; callers opt in to
// timeouts through their context or WithRequestTimeout.
//
// # Failure model
//
// Every failure below the Connector is absorbed into "feature unavailable":
// a spawn failure yields no connector, a dead transport turns pending and
// future exchanges into errors the Connector maps to absent results, and
// malformed frames are dropped. Nothing in this package may panic into the
// editor's render loop.
package lsp
