package bodyparse

import (
	"fmt"
	"strings"

	units "github.com/docker/go-units"
)

// ParseLimit converts a size such as "1mb", "56kb" or "1048576" to a byte
// count. Units are binary: 1kb is 1024 bytes.
func ParseLimit(limit string) (int64, error) {
	n, err := units.RAMInBytes(strings.TrimSpace(limit))
	if err != nil {
		return 0, fmt.Errorf("invalid body limit %q: %w", limit, err)
	}

	if n < 0 {
		return 0, fmt.Errorf("invalid body limit %q: negative size", limit)
	}

	return n, nil
}
