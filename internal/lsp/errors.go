package lsp

import "errors"

// Standard errors returned by the session layer.
var (
	// ErrTransportClosed indicates the transport pumps have stopped, either
	// because the subprocess pipes broke or the connector was closed. Every
	// pending and future exchange on this connector resolves to it.
	ErrTransportClosed = errors.New("lsp transport closed")

	// ErrNotInitialized indicates an exchange was attempted before the
	// initialize handshake completed.
	ErrNotInitialized = errors.New("lsp session not initialized")
)
