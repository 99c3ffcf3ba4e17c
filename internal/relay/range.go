package relay

import (
	"errors"
	"math"
	"regexp"
	"strconv"

	"github.com/memohai/vidstream/internal/upstream"
)

var rangePattern = regexp.MustCompile(`bytes=(\d+)-(\d*)`)

// ParseRange interprets a client Range header against a resource of total
// bytes. It returns nil when the header is absent, does not match, or the
// total length is unknown; the caller then serves the full body. Out of
// bounds positions are clamped into [0, total-1] rather than rejected.
func ParseRange(header string, total int64) *upstream.Range {
	if header == "" || total <= 0 {
		return nil
	}
	m := rangePattern.FindStringSubmatch(header)
	if m == nil {
		return nil
	}
	start, ok := parsePosition(m[1])
	if !ok {
		return nil
	}
	end := total - 1
	if m[2] != "" {
		if end, ok = parsePosition(m[2]); !ok {
			return nil
		}
	}
	start = max(0, min(start, total-1))
	end = max(start, min(end, total-1))
	return &upstream.Range{Start: start, End: end}
}

// parsePosition saturates positions too large for int64 so they clamp like
// any other out of bounds value.
func parsePosition(digits string) (int64, bool) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxInt64, true
	}
	return n, err == nil
}
