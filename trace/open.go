package trace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrTraceUnavailable is returned when a trace cannot be opened.
var ErrTraceUnavailable = errors.New("trace unavailable")

// S3EndpointEnv names the environment variable that overrides the S3
// endpoint, for S3-compatible stores.
const S3EndpointEnv = "CACHESIM_S3_ENDPOINT"

// ObjectGetter is the part of the S3 client used to fetch traces.
type ObjectGetter interface {
	GetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
}

// Open opens a trace for reading. The location is "-" for standard input,
// an s3://bucket/key URL or a local path. Traces ending in .gz, .zst or
// .lz4 are decompressed transparently.
func Open(ctx context.Context, location string) (io.ReadCloser, error) {
	if location == "-" {
		return decompress(location, io.NopCloser(os.Stdin))
	}

	if bucket, key, ok := ParseS3URL(location); ok {
		client, err := newS3Client(ctx)
		if err != nil {
			return nil, unavailable(location, err)
		}

		return OpenS3(ctx, client, bucket, key)
	}

	f, err := os.Open(location) //nolint:gosec // trace path is user input
	if err != nil {
		return nil, unavailable(location, err)
	}

	return decompress(location, f)
}

// OpenS3 fetches a trace object through client.
func OpenS3(
	ctx context.Context,
	client ObjectGetter,
	bucket, key string,
) (io.ReadCloser, error) {
	location := "s3://" + bucket + "/" + key

	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, unavailable(location, err)
	}

	return decompress(key, out.Body)
}

// ParseS3URL splits an s3://bucket/key URL.
func ParseS3URL(location string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(location, "s3://")
	if !found {
		return "", "", false
	}

	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}

	return bucket, key, true
}

func newS3Client(ctx context.Context) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := os.Getenv(S3EndpointEnv)

	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func unavailable(location string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTraceUnavailable, location, err)
}

// readCloser pairs a decoding reader with the closers of every layer below
// it.
type readCloser struct {
	io.Reader
	closers []func() error
}

func (r *readCloser) Close() error {
	return closeAll(r.closers)
}

func closeAll(closers []func() error) error {
	var errs []error
	for _, c := range closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func decompress(name string, rc io.ReadCloser) (io.ReadCloser, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gz":
		zr, err := gzip.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, unavailable(name, err)
		}

		return &readCloser{Reader: zr, closers: []func() error{zr.Close, rc.Close}}, nil
	case ".zst":
		dec, err := zstd.NewReader(rc)
		if err != nil {
			_ = rc.Close()
			return nil, unavailable(name, err)
		}

		return &readCloser{
			Reader: dec,
			closers: []func() error{
				func() error { dec.Close(); return nil },
				rc.Close,
			},
		}, nil
	case ".lz4":
		return &readCloser{Reader: lz4.NewReader(rc), closers: []func() error{rc.Close}}, nil
	default:
		return rc, nil
	}
}

// Create creates a trace file for writing. The compression is chosen from the
// file extension in the same way Open chooses the decompression.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path) //nolint:gosec // output path is user input
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw := gzip.NewWriter(f)
		return &writeCloser{Writer: zw, closers: []func() error{zw.Close, f.Close}}, nil
	case ".zst":
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
		}

		return &writeCloser{Writer: enc, closers: []func() error{enc.Close, f.Close}}, nil
	case ".lz4":
		lw := lz4.NewWriter(f)
		return &writeCloser{Writer: lw, closers: []func() error{lw.Close, f.Close}}, nil
	default:
		return f, nil
	}
}

type writeCloser struct {
	io.Writer
	closers []func() error
}

func (w *writeCloser) Close() error {
	return closeAll(w.closers)
}
