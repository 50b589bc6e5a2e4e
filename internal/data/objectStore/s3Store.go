package objectStore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/surajvast1/Doc-Manager/internal/config"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/internal/metrics"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

type S3Store struct {
	client *s3.Client
	logger *logger_i.Logger
}

// NewS3Client builds a client from a loaded aws config. A non-empty
// endpoint switches to path-style addressing for S3 compatible servers.
func NewS3Client(cfg aws.Config, endpoint string) *s3.Client {
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})
}

func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client, logger: logger_i.NewLogger("S3")}
}

func (s *S3Store) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("s3_list", time.Since(start)) }()

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})

	keys := []string{}
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, storageError(bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			keys = append(keys, key)
		}
	}
	s.logger.WithTrace(ctx).Debug("listed objects", "bucket", bucket, "prefix", prefix, "count", len(keys))
	return keys, nil
}

// Get checks the advertised length first and then reads at most one byte
// past maxBytes, so a missing or wrong Content-Length cannot blow the cap.
func (s *S3Store) Get(ctx context.Context, bucket, key string, maxBytes int64) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("s3_get", time.Since(start)) }()

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, storageError(bucket, key, err)
	}
	defer out.Body.Close()

	var body io.Reader = out.Body
	if maxBytes > 0 {
		if size := aws.ToInt64(out.ContentLength); size > maxBytes {
			return nil, tooLarge(key, size, maxBytes)
		}
		body = io.LimitReader(out.Body, maxBytes+1)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, storageError(bucket, key, err)
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, tooLarge(key, -1, maxBytes)
	}
	return data, nil
}

func (s *S3Store) Put(ctx context.Context, bucket, key string, body []byte, contentType string) error {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("s3_put", time.Since(start)) }()

	input := &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return storageError(bucket, key, err)
	}
	return nil
}

// DeleteMany sends keys in groups of at most 1000, the S3 limit per call.
// Keys S3 reports as failed are collected into the returned error while the
// confirmed ones are still returned.
func (s *S3Store) DeleteMany(ctx context.Context, bucket string, keys []string) ([]string, error) {
	log := s.logger.WithTrace(ctx).With("bucket", bucket)
	deleted := make([]string, 0, len(keys))
	var failures []string

	for start := 0; start < len(keys); start += config.S3DeleteBatchLimit {
		end := min(start+config.S3DeleteBatchLimit, len(keys))
		ids := make([]types.ObjectIdentifier, 0, end-start)
		for _, k := range keys[start:end] {
			ids = append(ids, types.ObjectIdentifier{Key: aws.String(k)})
		}

		callStart := time.Now()
		out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: ids, Quiet: aws.Bool(false)},
		})
		metrics.CaptureExecutionMetrics("s3_delete", time.Since(callStart))
		if err != nil {
			return deleted, storageError(bucket, "", err)
		}
		for _, d := range out.Deleted {
			deleted = append(deleted, aws.ToString(d.Key))
		}
		for _, e := range out.Errors {
			failures = append(failures, fmt.Sprintf("%s: %s", aws.ToString(e.Key), aws.ToString(e.Code)))
		}
	}

	log.Info("deleted objects", "requested", len(keys), "deleted", len(deleted), "failed", len(failures))
	if len(failures) > 0 {
		return deleted, &errs.StorageError{
			Bucket: bucket,
			Err:    fmt.Errorf("could not delete %d objects: %s", len(failures), strings.Join(failures, ", ")),
		}
	}
	return deleted, nil
}

func storageError(bucket, key string, err error) error {
	kind := errs.StorageOther

	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var apiErr smithy.APIError
	switch {
	case errors.As(err, &noKey), errors.As(err, &noBucket):
		kind = errs.StorageNotFound
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			kind = errs.StorageNotFound
		case "AccessDenied", "Forbidden", "InvalidAccessKeyId", "SignatureDoesNotMatch":
			kind = errs.StorageAccessDenied
		}
	}
	return &errs.StorageError{Kind: kind, Bucket: bucket, Key: key, Err: err}
}
