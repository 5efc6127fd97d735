// Package upload copies finished archives to S3.
package upload

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/nguyengg/tarball/internal"
	"github.com/nguyengg/tarball/util"
)

// Client is the subset of s3.Client that Upload uses.
type Client interface {
	manager.UploadAPIClient
	s3.HeadObjectAPIClient
}

var _ Client = &s3.Client{}

// Options customises Upload.
type Options struct {
	// Logger receives progress messages. Default to a logger that discards everything.
	Logger *log.Logger

	// Concurrency is passed to manager.Uploader. Default to manager.DefaultUploadConcurrency.
	Concurrency int

	// Suffix is the extension the archive was written with, such as ".tar.zst".
	//
	// It is kept intact when the key needs a counter. If empty or not a suffix of the archive's name, only the last
	// extension is kept.
	Suffix string
}

// Upload uploads the named archive to the S3 location given by uri (s3://bucket/prefix) and returns its S3 URI.
//
// The key is the prefix followed by the base name of the archive. If that key already exists, "-1", "-2", etc. are
// added before Options.Suffix ("foo.v1-1.tar.zst") until an unused key is found, so existing objects are never
// overwritten.
func Upload(ctx context.Context, client Client, uri, name, contentType string, optFns ...func(*Options)) (string, error) {
	opts := &Options{
		Logger:      log.New(io.Discard, "", 0),
		Concurrency: manager.DefaultUploadConcurrency,
	}
	for _, fn := range optFns {
		fn(opts)
	}

	bucket, prefix, err := internal.ParseS3URI(uri)
	if err != nil {
		return "", err
	}

	f, err := os.Open(name)
	if err != nil {
		return "", fmt.Errorf(`open file "%s" error: %w`, name, err)
	}
	defer f.Close()

	stem, ext := util.SplitArchiveName(name, opts.Suffix)
	key, err := util.UnusedArchiveKey(ctx, client, bucket, prefix, stem, ext)
	if err != nil {
		return "", err
	}

	opts.Logger.Printf(`uploading to "s3://%s/%s"`, bucket, key)

	uploader := manager.NewUploader(&partLogger{UploadAPIClient: client, logger: opts.Logger}, func(u *manager.Uploader) {
		u.Concurrency = opts.Concurrency
	})

	input := &s3.PutObjectInput{
		Bucket:   aws.String(bucket),
		Key:      aws.String(key),
		Body:     f,
		Metadata: map[string]string{"name": filepath.Base(name)},
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err = uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf(`upload "%s" to s3 error: %w`, name, err)
	}

	opts.Logger.Printf("done uploading")

	return fmt.Sprintf("s3://%s/%s", bucket, key), nil
}

// partLogger logs a running tally of successfully uploaded parts of multipart uploads.
//
// UploadPart may be called from any of the uploader's goroutines.
type partLogger struct {
	manager.UploadAPIClient
	logger *log.Logger
	n      atomic.Int32
}

func (l *partLogger) UploadPart(ctx context.Context, input *s3.UploadPartInput, optFns ...func(*s3.Options)) (*s3.UploadPartOutput, error) {
	o, err := l.UploadAPIClient.UploadPart(ctx, input, optFns...)
	if err == nil {
		l.logger.Printf("uploaded %d parts so far", l.n.Add(1))
	}

	return o, err
}
