package lsp

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/quill-editor/quill/internal/logging"
)

// Queue capacities. The inbound queue buffers server notifications emitted
// between exchanges; the outbound queue buffers the handshake burst.
const (
	inboundQueueSize  = 64
	outboundQueueSize = 16
)

// Transport moves framed messages between the subprocess pipes and a pair of
// channels. It runs two pumps: a read pump decoding Content-Length framed
// bodies from the subprocess's output into the inbound channel, and a write
// pump copying pre-framed payloads from the outbound channel to the
// subprocess's input.
//
// Messages are observed in the exact order the subprocess emits them and
// written in the exact order they are enqueued; each channel has a single
// consumer, so no reordering can occur.
type Transport struct {
	reader *bufio.Reader
	writer io.Writer
	closer io.Closer

	inbound  chan string
	outbound chan []byte

	done   chan struct{}
	closed atomic.Bool

	logger *logging.Logger
}

// NewTransport creates a transport over the given pipes. closer, if non-nil,
// is closed when the transport shuts down; passing the subprocess handle here
// guarantees the read pump unblocks and the child is reaped on Close.
func NewTransport(r io.Reader, w io.Writer, closer io.Closer, logger *logging.Logger) *Transport {
	if logger == nil {
		logger = logging.Null
	}
	return &Transport{
		reader:   bufio.NewReaderSize(r, 64*1024),
		writer:   w,
		closer:   closer,
		inbound:  make(chan string, inboundQueueSize),
		outbound: make(chan []byte, outboundQueueSize),
		done:     make(chan struct{}),
		logger:   logger.WithComponent("transport"),
	}
}

// Start launches the read and write pumps.
func (t *Transport) Start() {
	go t.readPump()
	go t.writePump()
}

// Inbound returns the channel of decoded message bodies. The channel is
// closed when the read pump stops; a closed channel is the signal that the
// transport is dead and no reply will ever arrive.
func (t *Transport) Inbound() <-chan string {
	return t.inbound
}

// Send enqueues a fully framed payload for the write pump.
func (t *Transport) Send(payload []byte) error {
	if t.closed.Load() {
		return ErrTransportClosed
	}

	select {
	case t.outbound <- payload:
		return nil
	case <-t.done:
		return ErrTransportClosed
	}
}

// Close stops the pumps and closes the underlying closer. Idempotent.
func (t *Transport) Close() {
	if t.closed.Swap(true) {
		return
	}

	close(t.done)

	if t.closer != nil {
		_ = t.closer.Close()
	}
}

// IsClosed returns true if Close has been called.
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

// readPump decodes framed messages from the subprocess's output.
//
// Header lines that do not carry a content-length prefix (blank separators,
// unrecognized headers) are discarded. On a match the pump consumes the
// header separator, reads exactly the declared number of bytes and enqueues
// the body. Any read or parse failure stops the pump and closes the inbound
// channel, after which the queue is observably dead.
func (t *Transport) readPump() {
	defer close(t.inbound)

	for {
		line, err := t.reader.ReadString('\n')
		if err != nil {
			t.logger.Debug("read pump stopped: %v", err)
			return
		}

		if !strings.HasPrefix(strings.ToLower(line), "content-length:") {
			continue
		}

		lenStr := strings.TrimSpace(line[len("content-length:"):])
		length, err := strconv.Atoi(lenStr)
		if err != nil || length <= 0 {
			t.logger.Debug("read pump stopped: bad content length %q", lenStr)
			return
		}

		// Skip the \r\n separating headers from the body.
		if _, err := t.reader.Discard(2); err != nil {
			t.logger.Debug("read pump stopped: %v", err)
			return
		}

		body := make([]byte, length)
		if _, err := io.ReadFull(t.reader, body); err != nil {
			t.logger.Debug("read pump stopped: %v", err)
			return
		}

		select {
		case t.inbound <- string(body):
		case <-t.done:
			return
		}
	}
}

// writePump copies pre-framed payloads to the subprocess's input verbatim.
// A write failure stops the pump; subsequent sends pile up until the
// connector is closed, which is indistinguishable from a slow server and is
// resolved the same way (no reply ever arrives).
func (t *Transport) writePump() {
	for {
		select {
		case <-t.done:
			return
		case payload := <-t.outbound:
			if _, err := t.writer.Write(payload); err != nil {
				t.logger.Debug("write pump stopped: %v", err)
				return
			}
		}
	}
}
