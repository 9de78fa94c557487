package lsp

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// jsonRPCVersion is the fixed protocol version carried by every message.
const jsonRPCVersion = "2.0"

// Fixed request ids. Exchanges are strictly serialized (a caller blocks
// until its reply is consumed), so a constant id per method is unambiguous.
const (
	initializeRequestID int64 = 0
	hoverRequestID      int64 = 1
)

// Message is a single outgoing JSON-RPC message. A non-nil ID marks it as a
// request expecting a correlated reply; a nil ID marks a notification.
type Message struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      *int64 `json:"id,omitempty"`
}

// newRequest builds a request message with the given id.
func newRequest(id int64, method string, params any) Message {
	return Message{
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params:  params,
		ID:      &id,
	}
}

// newNotification builds a notification message (no reply expected).
func newNotification(method string, params any) Message {
	return Message{
		JSONRPC: jsonRPCVersion,
		Method:  method,
		Params:  params,
	}
}

// EncodeFrame marshals a message and prepends the Content-Length header.
// The declared length is the exact byte length of the UTF-8 body.
func EncodeFrame(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("marshal message: %w", err)
	}

	frame := make([]byte, 0, len(body)+32)
	frame = append(frame, fmt.Sprintf("Content-Length: %d\r\n\r\n", len(body))...)
	frame = append(frame, body...)
	return frame, nil
}

// --- Parameter types ---

// Position is a zero-based line/character document position.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// TextDocumentIdentifier names a document by URI.
type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

// VersionedTextDocumentIdentifier is a TextDocumentIdentifier with a version.
type VersionedTextDocumentIdentifier struct {
	TextDocumentIdentifier
	Version int `json:"version"`
}

// TextDocumentItem carries a full document snapshot for didOpen.
type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

// TextDocumentPositionParams addresses a position within a document.
type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

// DidOpenTextDocumentParams is the payload of textDocument/didOpen.
type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

// TextDocumentContentChangeEvent is a full-document replacement change.
type TextDocumentContentChangeEvent struct {
	Text string `json:"text"`
}

// DidChangeTextDocumentParams is the payload of textDocument/didChange.
type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

// InitializeParams is the payload of the initialize request.
type InitializeParams struct {
	ProcessID    *int               `json:"processId"`
	Capabilities ClientCapabilities `json:"capabilities"`
}

// ClientCapabilities declares what this client understands.
type ClientCapabilities struct {
	TextDocument *TextDocumentClientCapabilities `json:"textDocument,omitempty"`
}

// TextDocumentClientCapabilities declares per-document capabilities.
type TextDocumentClientCapabilities struct {
	Synchronization *TextDocumentSyncClientCapabilities `json:"synchronization,omitempty"`
	Hover           *HoverClientCapabilities            `json:"hover,omitempty"`
}

// TextDocumentSyncClientCapabilities declares synchronization support.
type TextDocumentSyncClientCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration,omitempty"`
}

// HoverClientCapabilities declares hover support and accepted formats.
type HoverClientCapabilities struct {
	DynamicRegistration bool     `json:"dynamicRegistration,omitempty"`
	ContentFormat       []string `json:"contentFormat,omitempty"`
}

// Markup kinds accepted in hover content.
const (
	MarkupKindPlainText = "plaintext"
	MarkupKindMarkdown  = "markdown"
)

// minimalClientCapabilities negotiates only what the session layer consumes:
// document synchronization and plain-text hover.
func minimalClientCapabilities() ClientCapabilities {
	return ClientCapabilities{
		TextDocument: &TextDocumentClientCapabilities{
			Synchronization: &TextDocumentSyncClientCapabilities{
				DynamicRegistration: true,
			},
			Hover: &HoverClientCapabilities{
				DynamicRegistration: true,
				ContentFormat:       []string{MarkupKindPlainText},
			},
		},
	}
}

// --- Hover results ---

// Hover is a single markup block describing the symbol at a position.
type Hover struct {
	// Kind is the markup kind the server chose (plaintext or markdown).
	Kind string

	// Value is the raw markup text.
	Value string
}

// Lines splits the hover value into its non-empty lines, the shape the
// floating tooltip consumes.
func (h *Hover) Lines() []string {
	if h == nil || h.Value == "" {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(h.Value, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// FilePathToURI converts a file path to a file:// document URI.
// Relative paths are made absolute first.
func FilePathToURI(path string) string {
	if path == "" {
		return ""
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	path = filepath.ToSlash(path)

	// On Windows, add extra slash for drive letter.
	if runtime.GOOS == "windows" && len(path) >= 2 && path[1] == ':' {
		path = "/" + path
	}

	u := &url.URL{
		Scheme: "file",
		Path:   path,
	}

	return u.String()
}
