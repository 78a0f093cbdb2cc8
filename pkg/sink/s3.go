package sink

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

const s3Scheme = "s3://"

// PutObjectAPI is the part of the S3 client the sink needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client built by NewS3.
type S3Options struct {
	Region          string
	Endpoint        string
	UsePathStyle    bool
	AccessKeyID     string
	SecretAccessKey string
}

// S3 uploads bodies to s3://bucket/key destinations.
type S3 struct {
	client PutObjectAPI
}

// NewS3WithClient wraps an existing client.
func NewS3WithClient(client PutObjectAPI) *S3 {
	return &S3{client: client}
}

// NewS3 loads the default AWS configuration, applies opts on top of it and returns
// an S3 sink backed by the resulting client.
func NewS3(ctx context.Context, opts S3Options) (*S3, error) {
	var optFns []func(*awsconfig.LoadOptions) error

	if opts.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(opts.Region))
	}
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})
	return &S3{client: client}, nil
}

// Write implements Sink.
func (s *S3) Write(ctx context.Context, dest string, body []byte) error {
	bucket, key, err := ParseObjectURL(dest)
	if err != nil {
		return err
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

// ParseObjectURL splits s3://bucket/key into its bucket and key.
func ParseObjectURL(dest string) (bucket, key string, err error) {
	if !IsObjectURL(dest) {
		return "", "", ErrInvalidObjectURL(dest)
	}
	u, err := url.Parse(dest)
	if err != nil {
		return "", "", ErrInvalidObjectURL(dest)
	}
	bucket = u.Host
	key = strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return "", "", ErrInvalidObjectURL(dest)
	}
	return bucket, key, nil
}
