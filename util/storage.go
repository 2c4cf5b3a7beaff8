// util/storage.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

var ErrUnsupportedScheme = errors.New("Unsupported storage URL scheme")

// IsRemotePath reports whether path names an object in cloud storage
// rather than a local file.
func IsRemotePath(path string) bool {
	return strings.HasPrefix(path, "gs://") || strings.HasPrefix(path, "s3://")
}

// SplitBucketPath splits a gs:// or s3:// URL into its scheme, bucket,
// and object name.
func SplitBucketPath(path string) (scheme, bucket, object string, err error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", "", "", err
	}
	if u.Scheme != "gs" && u.Scheme != "s3" {
		return "", "", "", fmt.Errorf("%s: %w", path, ErrUnsupportedScheme)
	}
	object = strings.TrimPrefix(u.Path, "/")
	if u.Host == "" || object == "" {
		return "", "", "", fmt.Errorf("%s: missing bucket or object name", path)
	}
	return u.Scheme, u.Host, object, nil
}

// FetchObject reads an entire object from Google Cloud Storage (gs://)
// or S3 (s3://). GCS credentials are taken from the JSON in
// DAFIF_GCS_CREDENTIALS if it is set; otherwise the request is made
// unauthenticated. S3 uses the default AWS credential chain.
func FetchObject(ctx context.Context, path string) ([]byte, error) {
	scheme, bucket, object, err := SplitBucketPath(path)
	if err != nil {
		return nil, err
	}

	var r io.ReadCloser
	switch scheme {
	case "gs":
		r, err = openGCSObject(ctx, bucket, object)
	case "s3":
		r, err = openS3Object(ctx, bucket, object)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	return io.ReadAll(r)
}

type gcsObjectReader struct {
	*storage.Reader
	client *storage.Client
}

func (g gcsObjectReader) Close() error {
	err := g.Reader.Close()
	g.client.Close()
	return err
}

func openGCSObject(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("DAFIF_GCS_CREDENTIALS"); creds != "" {
		jwtConfig, err := google.JWTConfigFromJSON([]byte(creds), storage.ScopeReadOnly)
		if err != nil {
			return nil, fmt.Errorf("DAFIF_GCS_CREDENTIALS: %w", err)
		}
		opts = append(opts, option.WithTokenSource(oauth2.ReuseTokenSource(nil, jwtConfig.TokenSource(ctx))))
	} else {
		opts = append(opts, option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}

	r, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		client.Close()
		return nil, err
	}
	return gcsObjectReader{Reader: r, client: client}, nil
}

func openS3Object(ctx context.Context, bucket, object string) (io.ReadCloser, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}

	out, err := s3.NewFromConfig(cfg).GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(object),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
