// Package command serves the host command channel. Each received buffer is
// one parse attempt: a valid record is deposited into the mailbox and every
// attempt is acknowledged with a fixed literal reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/sweeney/stick-mouse/internal/logic"
)

// Counts tallies decode outcomes.
type Counts struct {
	Accepted       int
	FormatErrors   int
	ProtocolErrors int
}

// Channel decodes command buffers into a mailbox.
// Handle is safe to call from several transports at once.
type Channel struct {
	mailbox *logic.Mailbox
	now     func() time.Time
	logger  *slog.Logger

	mu     sync.Mutex
	counts Counts
}

// New creates a Channel that deposits into mailbox, stamping commands with now().
func New(mailbox *logic.Mailbox, now func() time.Time, logger *slog.Logger) *Channel {
	return &Channel{mailbox: mailbox, now: now, logger: logger}
}

// Handle decodes buf, deposits the command on success and returns the reply.
func (c *Channel) Handle(buf []byte) string {
	cmd, err := logic.Decode(buf)

	c.mu.Lock()
	switch {
	case err == nil:
		c.counts.Accepted++
	case errors.Is(err, logic.ErrProtocol):
		c.counts.ProtocolErrors++
	default:
		c.counts.FormatErrors++
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Debug("command rejected", "error", err)
		return logic.Reply(err)
	}

	c.mailbox.Deposit(cmd, c.now())
	c.logger.Debug("command accepted",
		"buttons", cmd.Buttons,
		"dx", cmd.DX,
		"dy", cmd.DY,
		"wheel", cmd.Wheel,
		"pan", cmd.Pan)
	return logic.ReplyOK
}

// Counts returns a snapshot of the outcome counters.
func (c *Channel) Counts() Counts {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts
}

// Run reads buffers from rw until EOF or ctx is cancelled, replying to each
// on rw. Reads block; the caller closes rw to unblock Run after cancelling.
func (c *Channel) Run(ctx context.Context, rw io.ReadWriter) error {
	buf := make([]byte, logic.MaxRecordLen+1)
	for {
		if ctx.Err() != nil {
			return nil
		}

		n, err := rw.Read(buf[:logic.MaxRecordLen])
		if n > 0 {
			reply := c.Handle(buf[:n])
			if _, werr := io.WriteString(rw, reply); werr != nil {
				if ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("write reply: %w", werr)
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) || ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read command: %w", err)
		}
	}
}
