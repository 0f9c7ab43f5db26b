package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// RandomHex returns n random bytes hex encoded.
func RandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}

// StoredFileName builds the on-disk name for an upload in the format
// <unix-ms>-<random>-<base name>. Directory parts of original are dropped.
func StoredFileName(original string, now time.Time) (string, error) {
	suffix, err := RandomHex(4)
	if err != nil {
		return "", err
	}

	base := filepath.Base(strings.ReplaceAll(original, `\`, "/"))
	if base == "." || base == "/" {
		base = "file"
	}
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)

	return fmt.Sprintf("%d-%s-%s", now.UnixMilli(), suffix, base), nil
}
