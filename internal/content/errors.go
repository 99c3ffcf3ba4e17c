package content

import (
	"context"
	"errors"
	"net"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound indicates no record exists for the identifier.
	ErrNotFound = errors.New("content not found")
	// ErrUnavailable indicates the backing store or platform cannot be reached.
	ErrUnavailable = errors.New("content store unavailable")
)

// isConnectivityError reports whether err comes from reaching the database
// rather than from the query itself.
func isConnectivityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return pgconn.Timeout(err) || pgconn.SafeToRetry(err)
}
