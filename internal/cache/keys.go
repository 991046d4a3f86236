package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// TrendsKey builds the cache key of a trends payload. Every input that can
// change the payload is part of the key.
func TrendsKey(tenantID string, rangeDays int, target *float64, snapshotVersion string, today time.Time) string {
	return makeKey(
		"trends",
		strings.TrimSpace(tenantID),
		strconv.Itoa(rangeDays),
		canonicalTarget(target),
		snapshotVersion,
		today.UTC().Format("2006-01-02"),
	)
}

func canonicalTarget(target *float64) string {
	if target == nil {
		return "-"
	}
	return strconv.FormatFloat(*target, 'g', -1, 64)
}

func makeKey(parts ...string) string {
	joined := strings.Join(parts, "|")
	h := sha1.Sum([]byte(joined))
	return hex.EncodeToString(h[:])
}
