// Package media resolves alarm frames to image URLs a display device can fetch.
package media

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/ab0utbla-k/zm-alarm-skill/internal/alarm"
)

// DefaultExpiry is how long a presigned image URL stays valid.
const DefaultExpiry = time.Hour

// ErrMissingLocator indicates a record carries no locator for the configured image source.
var ErrMissingLocator = errors.New("alarm record has no image locator")

// PresignAPI defines the S3 presign operations required to share alarm images.
type PresignAPI interface {
	PresignGetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Locator picks between the local network path and object storage for an alarm image.
type Locator interface {
	ImageURL(ctx context.Context, rec alarm.Record) (string, error)
}

// LocalLocator serves images from the ZoneMinder host on the local network.
type LocalLocator struct {
	base string
}

func NewLocalLocator(base string) *LocalLocator {
	return &LocalLocator{base: strings.TrimRight(base, "/")}
}

func (l *LocalLocator) ImageURL(_ context.Context, rec alarm.Record) (string, error) {
	if rec.LocalPath == "" {
		return "", ErrMissingLocator
	}
	return l.base + "/" + strings.TrimLeft(rec.LocalPath, "/"), nil
}

// S3Locator serves images through presigned object storage URLs.
type S3Locator struct {
	presigner PresignAPI
	bucket    string
	expiry    time.Duration
}

func NewS3Locator(presigner PresignAPI, bucket string, expiry time.Duration) *S3Locator {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &S3Locator{
		presigner: presigner,
		bucket:    bucket,
		expiry:    expiry,
	}
}

func (l *S3Locator) ImageURL(ctx context.Context, rec alarm.Record) (string, error) {
	if rec.StorageKey == "" {
		return "", ErrMissingLocator
	}

	req, err := l.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucket),
		Key:    aws.String(rec.StorageKey),
	}, s3.WithPresignExpires(l.expiry))
	if err != nil {
		return "", fmt.Errorf("cannot presign %s/%s: %w", l.bucket, rec.StorageKey, err)
	}

	return req.URL, nil
}
