// Package submit delivers a command payload to the daemon's unix socket.
package submit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// maxReplySize caps how much of a daemon reply is buffered.
const maxReplySize = 64 << 10

var (
	// ErrRejected wraps a daemon reply that reported success=false.
	ErrRejected      = errors.New("daemon rejected command")
	ErrReplyTooLarge = errors.New("daemon reply exceeds size limit")
)

// Options bound the connection and select fire-and-forget or reply mode.
// Zero timeouts disable the corresponding deadline.
type Options struct {
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	AwaitReply   bool
	ReplyTimeout time.Duration
}

// Result describes one delivered payload.
type Result struct {
	BytesWritten int
	Reply        *Reply
	Elapsed      time.Duration
}

// Submit dials socketPath, writes data verbatim, and closes the connection.
// With AwaitReply it half-closes the write side and reads a single reply.
// Cancelling ctx interrupts a blocked write or reply read.
func Submit(ctx context.Context, socketPath string, data []byte, opts Options) (Result, error) {
	started := time.Now()

	conn, err := dial(ctx, socketPath, opts.DialTimeout)
	if err != nil {
		return Result{}, fmt.Errorf("connect %s: %w", socketPath, err)
	}
	defer conn.Close()

	if opts.WriteTimeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(opts.WriteTimeout)); err != nil {
			return Result{}, fmt.Errorf("set write deadline: %w", err)
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.SetDeadline(time.Now()) })
	defer stop()

	n, err := conn.Write(data)
	if err != nil {
		return Result{BytesWritten: n}, ioError(ctx, "write payload", err)
	}
	if n != len(data) {
		return Result{BytesWritten: n}, fmt.Errorf("write payload: %w", io.ErrShortWrite)
	}

	result := Result{BytesWritten: n}
	if !opts.AwaitReply {
		result.Elapsed = time.Since(started)
		return result, nil
	}

	if err := conn.CloseWrite(); err != nil {
		return result, fmt.Errorf("half-close connection: %w", err)
	}
	if opts.ReplyTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(opts.ReplyTimeout)); err != nil {
			return result, fmt.Errorf("set read deadline: %w", err)
		}
	}
	// A cancel that landed before the read deadline was set would be undone by it.
	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("read reply: %w", err)
	}

	line, err := bufio.NewReader(io.LimitReader(conn, maxReplySize+1)).ReadBytes('\n')
	if len(line) > maxReplySize {
		return result, fmt.Errorf("read reply: %w (%d bytes)", ErrReplyTooLarge, maxReplySize)
	}
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return result, ioError(ctx, "read reply", err)
	}

	reply, err := ParseReply(line)
	if err != nil {
		return result, err
	}
	result.Reply = &reply
	result.Elapsed = time.Since(started)

	if !reply.Success {
		return result, fmt.Errorf("%w: %s", ErrRejected, reply.Message)
	}
	return result, nil
}

// Probe reports whether a listener currently accepts connections on
// socketPath. Nothing is written. Missing sockets and refused connections
// are reported as (false, nil); other failures are returned.
func Probe(ctx context.Context, socketPath string, timeout time.Duration) (bool, error) {
	conn, err := dial(ctx, socketPath, timeout)
	if err == nil {
		_ = conn.Close()
		return true, nil
	}
	if IsSocketMissing(err) || IsConnectionRefused(err) {
		return false, nil
	}
	return false, fmt.Errorf("probe socket: %w", err)
}

// ioError reports cancellation in place of the deadline error it caused.
func ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func dial(ctx context.Context, socketPath string, timeout time.Duration) (*net.UnixConn, error) {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		return nil, err
	}
	return conn.(*net.UnixConn), nil
}
