package storage

import (
	"errors"
	"mime"
	"path"
	"strconv"
	"strings"
	"time"
)

var errEmptyPayload = errors.New("empty payload")

// sanitizeSegment lowercases value and keeps [a-z0-9-_] only.
func sanitizeSegment(value string) string {
	value = strings.TrimSpace(value)
	var builder strings.Builder
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9', ch == '-', ch == '_':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 'a' - 'A')
		}
	}
	return builder.String()
}

func normalizeExtension(ext string) string {
	normalized := sanitizeSegment(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	if normalized == "" {
		return "bin"
	}
	return normalized
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	return strings.Trim(sanitizeSegment(replaced), "-_")
}

// ObjectKey builds the date-partitioned key for opts at now.
func ObjectKey(now time.Time, opts SaveOptions) string {
	now = now.UTC()
	category := sanitizeSegment(opts.Category)
	if category == "" {
		category = "misc"
	}
	base := sanitizeFileBase(opts.BaseName)
	if base == "" {
		base = strconv.FormatInt(now.UnixNano(), 10)
	}
	return path.Join(category, now.Format("2006/01/02"), base+"."+normalizeExtension(opts.Extension))
}

func contentTypeFor(opts SaveOptions) string {
	if ct := strings.TrimSpace(opts.ContentType); ct != "" {
		return ct
	}
	if typeName := mime.TypeByExtension("." + normalizeExtension(opts.Extension)); typeName != "" {
		return typeName
	}
	return "application/octet-stream"
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}
