// Package sink writes exported files to a local directory or a GCS prefix.
package sink

import (
	"context"
	"fmt"
	"strings"
)

// Destination receives named files. Names are slash separated and relative
// to the destination root.
type Destination interface {
	Write(ctx context.Context, name string, data []byte) error
	// URL returns the location of name, for logs.
	URL(name string) string
	Close() error
}

// Open returns the destination for target: "gs://bucket/prefix" for GCS,
// anything else is a local directory.
func Open(ctx context.Context, target string) (Destination, error) {
	if rest, ok := strings.CutPrefix(target, "gs://"); ok {
		bucket, prefix, _ := strings.Cut(rest, "/")
		if bucket == "" {
			return nil, fmt.Errorf("no bucket in %q", target)
		}
		return NewGCS(ctx, bucket, prefix)
	}
	if target == "" {
		target = "."
	}
	return &Local{Dir: target}, nil
}

// Split separates a file target into the destination root and file name,
// like path.Split but understanding gs:// URLs.
func Split(target string) (root, name string) {
	i := strings.LastIndex(target, "/")
	if i < 0 || (strings.HasPrefix(target, "gs://") && i < len("gs://")) {
		return "", target
	}
	return target[:i], target[i+1:]
}
