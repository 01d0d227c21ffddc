package pagination

import (
	"encoding/base64"
	"fmt"
)

// DefaultLimit is used when a caller asks for a non-positive page size.
const DefaultLimit = 50

// MaxLimit caps the page size of every listing.
const MaxLimit = 500

// NormalizeLimit clamps a requested page size to (0, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// EncodeKeyToken creates an opaque token for key-ordered pagination. The
// token resumes a listing right after key.
func EncodeKeyToken(key string) string {
	if key == "" {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}

// DecodeKeyToken parses a token produced by EncodeKeyToken. An empty token
// starts from the beginning.
func DecodeKeyToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	decodedBytes, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	if len(decodedBytes) == 0 {
		return "", fmt.Errorf("invalid pagination token format (empty key)")
	}
	return string(decodedBytes), nil
}

// NextToken returns the token for the page after items when the page was
// full, or "" when the listing is exhausted.
func NextToken[T any](items []T, limit int, key func(T) string) string {
	if len(items) == 0 || len(items) < limit {
		return ""
	}
	return EncodeKeyToken(key(items[len(items)-1]))
}
