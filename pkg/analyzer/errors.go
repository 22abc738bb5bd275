package analyzer

import (
	"context"
	"errors"
	"net"
	"os"
	"syscall"

	"github.com/emojivision/mosaic/pkg/models"
)

var (
	// ErrNoInput indicates neither a URL nor a file path was provided.
	ErrNoInput = errors.New("no image input provided")

	// ErrUnreadableFile indicates the local image path cannot be read.
	ErrUnreadableFile = errors.New("image file not readable")
)

// classifyTransportError maps a transport-level failure to an error kind.
// Connection refused and DNS failures are "offline"; deadline expiry and
// connection resets are "timeout"; everything else is "protocol".
func classifyTransportError(err error) models.ErrorKind {
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		return models.ErrorKindTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return models.ErrorKindTimeout
	}

	if errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return models.ErrorKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return models.ErrorKindOffline
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return models.ErrorKindOffline
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return models.ErrorKindOffline
	}

	return models.ErrorKindProtocol
}

// retryable reports whether a failed call may be retried. Only transport
// errors and deadline expiry qualify; a status=="error" payload never does.
func retryable(kind models.ErrorKind) bool {
	return kind == models.ErrorKindOffline || kind == models.ErrorKindTimeout
}
