package lsp

import (
	"context"
	"sync"
	"time"

	"github.com/quill-editor/quill/internal/integration/process"
	"github.com/quill-editor/quill/internal/logging"
)

// Connector is the façade the editor consumes. It owns the language server
// subprocess, its transport pumps and the protocol session, and absorbs
// every failure below it into absent results: missing or failing language
// intelligence is silent, never fatal to editing.
type Connector struct {
	proc      *process.Process
	transport *Transport
	session   *Session

	timeout time.Duration
	logger  *logging.Logger

	mu     sync.Mutex
	closed bool
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithRequestTimeout bounds each Init/Hover exchange. Zero (the default)
// means no deadline: an unresponsive server blocks the caller until the
// transport dies or the caller's context expires.
func WithRequestTimeout(d time.Duration) ConnectorOption {
	return func(c *Connector) {
		c.timeout = d
	}
}

// WithLogger sets the logger for the connector and its components.
func WithLogger(logger *logging.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = logger
	}
}

// procCloser adapts process release to io.Closer for the transport.
type procCloser struct {
	proc *process.Process
}

func (pc procCloser) Close() error {
	pc.proc.Release()
	return nil
}

// NewConnector spawns the language server and wires up its transport and
// session. It sends no protocol traffic. A spawn failure returns a
// *process.SpawnError; the caller treats it as "no language intelligence
// available" and continues without degrading anything else.
func NewConnector(command string, args []string, languageID, absPath string, opts ...ConnectorOption) (*Connector, error) {
	c := &Connector{
		logger: logging.Null,
	}
	for _, opt := range opts {
		opt(c)
	}

	proc, err := process.Spawn(command, args...)
	if err != nil {
		return nil, err
	}

	c.proc = proc
	c.transport = NewTransport(proc.Stdout, proc.Stdin, procCloser{proc}, c.logger)
	c.session = NewSession(c.transport, languageID, absPath, c.logger)
	c.transport.Start()

	c.logger.Debug("language server %s started (pid %d)", command, proc.PID())
	return c, nil
}

// IsInitialized reports whether the handshake has completed.
func (c *Connector) IsInitialized() bool {
	return c.session.Initialized()
}

// Init performs the initialize handshake with a point-in-time snapshot of
// the full document text. Calling it on an initialized connector is a no-op;
// it never double-handshakes.
func (c *Connector) Init(ctx context.Context, fullText string) error {
	ctx, cancel := c.exchangeContext(ctx)
	defer cancel()
	return c.session.Initialize(ctx, fullText)
}

// Hover returns the hover text lines at a zero-based position, or nil when
// no hover information is available: before Init, after a transport failure,
// on an error reply, or when the reply carries no textual content. Hover
// before Init returns nil immediately and does not trigger the handshake;
// only the editor owns the buffer snapshot the handshake needs.
func (c *Connector) Hover(ctx context.Context, line, column int) []string {
	if !c.session.Initialized() {
		return nil
	}

	ctx, cancel := c.exchangeContext(ctx)
	defer cancel()

	hover, err := c.session.Hover(ctx, line, column)
	if err != nil {
		c.logger.Debug("hover failed: %v", err)
		return nil
	}
	return hover.Lines()
}

// Refresh pushes a full-document snapshot to the server after edits.
func (c *Connector) Refresh(ctx context.Context, fullText string) error {
	ctx, cancel := c.exchangeContext(ctx)
	defer cancel()
	return c.session.Refresh(ctx, fullText)
}

// Close shuts down the transport and terminates the subprocess. Idempotent.
func (c *Connector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	c.transport.Close()
	c.logger.Debug("language server stopped after %s", c.proc.Runtime().Round(time.Millisecond))
}

// exchangeContext applies the configured request timeout, if any.
func (c *Connector) exchangeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}
