package sink

import (
	"context"
	"fmt"
	"path"
	"time"

	"cloud.google.com/go/storage"
	"k8s.io/klog/v2"
)

// GCS writes objects under a prefix of a bucket.
type GCS struct {
	Bucket string
	Prefix string

	client *storage.Client
}

var _ Destination = (*GCS)(nil)

// NewGCS creates a client with application default credentials.
func NewGCS(ctx context.Context, bucket, prefix string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating GCS storage client: %w", err)
	}
	return &GCS{Bucket: bucket, Prefix: prefix, client: client}, nil
}

func (g *GCS) key(name string) string {
	return path.Join(g.Prefix, name)
}

// URL returns the gs:// URL of name.
func (g *GCS) URL(name string) string {
	return "gs://" + g.Bucket + "/" + g.key(name)
}

// Close releases the client.
func (g *GCS) Close() error {
	return g.client.Close()
}

// Write uploads name, replacing an existing object.
func (g *GCS) Write(ctx context.Context, name string, data []byte) error {
	log := klog.FromContext(ctx)
	gcsURL := g.URL(name)

	startedAt := time.Now()
	w := g.client.Bucket(g.Bucket).Object(g.key(name)).NewWriter(ctx)
	w.ContentType = "application/octet-stream"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("uploading to %q: %w", gcsURL, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer for %q: %w", gcsURL, err)
	}

	log.Info("uploaded object to GCS", "url", gcsURL, "bytes", len(data), "duration", time.Since(startedAt))
	return nil
}
