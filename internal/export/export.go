// Package export stores customer snapshots outside the process.
//
// Both writers implement core.SnapshotWriter. S3Writer targets any
// S3-compatible bucket; DirWriter writes to a local directory and is used
// when no bucket is configured.
package export

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/JonMunkholm/erpdash/internal/core"
)

const csvContentType = "text/csv; charset=utf-8"

var (
	_ core.SnapshotWriter = (*S3Writer)(nil)
	_ core.SnapshotWriter = (*DirWriter)(nil)
)

// S3Options configures an S3Writer.
type S3Options struct {
	Bucket   string
	Prefix   string // key prefix, e.g. "snapshots/"
	Region   string
	Endpoint string // custom endpoint for MinIO and similar
	// PathStyle forces path-style addressing. It is always on when Endpoint is set.
	PathStyle bool
}

// S3Writer uploads snapshots to an S3-compatible bucket.
type S3Writer struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Writer loads the default AWS credential chain and returns a writer
// for opts.Bucket.
func NewS3Writer(ctx context.Context, opts S3Options) (*S3Writer, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" || opts.PathStyle {
		s3opts = append(s3opts, func(o *s3.Options) {
			if opts.Endpoint != "" {
				o.BaseEndpoint = aws.String(opts.Endpoint)
			}
			o.UsePathStyle = true
		})
	}

	return &S3Writer{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: opts.Bucket,
		prefix: opts.Prefix,
	}, nil
}

// Key returns the object key used for a snapshot called name.
func (w *S3Writer) Key(name string) string {
	if w.prefix == "" {
		return name
	}
	return path.Join(strings.Trim(w.prefix, "/"), name)
}

// WriteSnapshot uploads body and returns its s3:// location.
func (w *S3Writer) WriteSnapshot(ctx context.Context, name string, body []byte) (string, error) {
	key := w.Key(name)
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(csvContentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object: %w", err)
	}
	return "s3://" + w.bucket + "/" + key, nil
}

// DirWriter writes snapshots as files under a directory.
type DirWriter struct {
	dir string
}

// NewDirWriter returns a writer for dir. The directory is created on first write.
func NewDirWriter(dir string) *DirWriter {
	return &DirWriter{dir: dir}
}

// WriteSnapshot writes body to dir/name and returns the file path.
// The file is written under a temporary name and renamed into place.
func (w *DirWriter) WriteSnapshot(ctx context.Context, name string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid snapshot name %q", name)
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}

	dst := filepath.Join(w.dir, name)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("rename: %w", err)
	}
	return dst, nil
}
