package lsp

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/tidwall/gjson"

	"github.com/quill-editor/quill/internal/logging"
)

// SessionState is the lifecycle state of a session.
type SessionState int32

const (
	// StateUninitialized is the state before the initialize handshake.
	StateUninitialized SessionState = iota
	// StateInitialized is the state after the handshake completed.
	// A session never regresses out of it.
	StateInitialized
)

// String returns a human-readable state name.
func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	default:
		return "unknown"
	}
}

// Session is the protocol state machine for a single document against a
// single language server. It builds messages, runs the initialize handshake
// and performs hover exchanges over the transport.
//
// Exchanges are strictly serialized by an internal mutex: a new request is
// never sent before the prior reply is consumed, which is what makes the
// fixed per-method request ids unambiguous.
type Session struct {
	transport  *Transport
	languageID string
	uri        string
	logger     *logging.Logger

	// mu serializes exchanges and guards version.
	mu      sync.Mutex
	state   atomic.Int32
	version int
}

// NewSession creates a session for the document at absPath.
// No protocol traffic is sent until Initialize.
func NewSession(t *Transport, languageID, absPath string, logger *logging.Logger) *Session {
	if logger == nil {
		logger = logging.Null
	}
	return &Session{
		transport:  t,
		languageID: languageID,
		uri:        FilePathToURI(absPath),
		logger:     logger.WithComponent("session"),
	}
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Initialized returns true once the handshake has completed.
func (s *Session) Initialized() bool {
	return s.State() == StateInitialized
}

// Initialize performs the handshake: the initialize request (id 0, hover-only
// capabilities), the initialized notification, and a textDocument/didOpen
// carrying a point-in-time snapshot of the full document text.
//
// Initialize is idempotent: once the session is initialized further calls
// return nil without sending anything. Without a context deadline the call
// blocks until the server replies or the transport dies.
func (s *Session) Initialize(ctx context.Context, fullText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Initialized() {
		return nil
	}

	init := newRequest(initializeRequestID, "initialize", InitializeParams{
		Capabilities: minimalClientCapabilities(),
	})
	if err := s.send(init); err != nil {
		return err
	}
	if _, err := s.awaitReply(ctx, initializeRequestID); err != nil {
		return err
	}

	if err := s.send(newNotification("initialized", struct{}{})); err != nil {
		return err
	}

	didOpen := newNotification("textDocument/didOpen", DidOpenTextDocumentParams{
		TextDocument: TextDocumentItem{
			URI:        s.uri,
			LanguageID: s.languageID,
			Version:    0,
			Text:       fullText,
		},
	})
	if err := s.send(didOpen); err != nil {
		return err
	}

	s.state.Store(int32(StateInitialized))
	s.logger.Debug("session initialized for %s", s.uri)
	return nil
}

// Hover requests hover information at a zero-based position. A nil Hover
// with a nil error means the server had no hover information, which covers
// error replies and any result shape other than a single markup block.
func (s *Session) Hover(ctx context.Context, line, character int) (*Hover, error) {
	if !s.Initialized() {
		return nil, ErrNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	req := newRequest(hoverRequestID, "textDocument/hover", TextDocumentPositionParams{
		TextDocument: TextDocumentIdentifier{URI: s.uri},
		Position:     Position{Line: line, Character: character},
	})
	if err := s.send(req); err != nil {
		return nil, err
	}

	reply, err := s.awaitReply(ctx, hoverRequestID)
	if err != nil {
		return nil, err
	}

	return decodeHover(reply), nil
}

// Refresh pushes a full-document snapshot via textDocument/didChange.
// The server's view of the document otherwise stays frozen at the didOpen
// snapshot; calling Refresh after edits is the editor's choice.
func (s *Session) Refresh(ctx context.Context, fullText string) error {
	if !s.Initialized() {
		return ErrNotInitialized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	change := newNotification("textDocument/didChange", DidChangeTextDocumentParams{
		TextDocument: VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: TextDocumentIdentifier{URI: s.uri},
			Version:                s.version,
		},
		ContentChanges: []TextDocumentContentChangeEvent{{Text: fullText}},
	})
	return s.send(change)
}

// send frames a message and enqueues it on the outbound queue.
func (s *Session) send(msg Message) error {
	frame, err := EncodeFrame(msg)
	if err != nil {
		return err
	}
	return s.transport.Send(frame)
}

// awaitReply blocks until the reply with the given id is observed on the
// inbound queue. Frames that are not that reply are dropped: invalid JSON,
// server notifications and requests, and replies whose id matches no
// outstanding request. A closed inbound queue means the transport died and
// no reply will ever arrive.
func (s *Session) awaitReply(ctx context.Context, id int64) (string, error) {
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case body, ok := <-s.transport.Inbound():
			if !ok {
				return "", ErrTransportClosed
			}
			if !gjson.Valid(body) {
				continue
			}
			replyID := gjson.Get(body, "id")
			if !replyID.Exists() {
				// Server notification (e.g. window/logMessage).
				continue
			}
			if gjson.Get(body, "method").Exists() {
				// Server-to-client request; not a reply to anything.
				continue
			}
			if replyID.Int() != id {
				continue
			}
			return body, nil
		}
	}
}

// decodeHover extracts the hover payload from a reply body. Only a single
// markup block ({kind, value}) is recognized; error replies and every other
// result shape decode to nil.
func decodeHover(body string) *Hover {
	if gjson.Get(body, "error").Exists() {
		return nil
	}

	contents := gjson.Get(body, "result.contents")
	if !contents.IsObject() {
		return nil
	}

	kind := contents.Get("kind")
	value := contents.Get("value")
	if kind.Type != gjson.String || value.Type != gjson.String {
		return nil
	}

	return &Hover{Kind: kind.String(), Value: value.String()}
}
