package backup

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// DefaultS3Key is the object key used when none is configured.
const DefaultS3Key = "sitekeep/backup.jsonl"

// S3Destination uploads each sitekeep export as a single object.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination builds the destination from the ambient AWS
// credentials. A custom endpoint (MinIO, R2) switches to path-style
// addressing.
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	if bucket == "" {
		return nil, fmt.Errorf("sitekeep export to s3: no bucket configured")
	}
	if key == "" {
		key = DefaultS3Key
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("sitekeep export to s3://%s: aws config: %w", bucket, err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint == "" {
			return
		}
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	return &S3Destination{client: client, bucket: bucket, key: key}, nil
}

func (d *S3Destination) String() string { return fmt.Sprintf("s3://%s/%s", d.bucket, d.key) }

// Write replaces the object with data. The line count is stored as object
// metadata so a restore can sanity-check the download.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
		Metadata: map[string]string{
			"sitekeep-lines": strconv.Itoa(bytes.Count(data, []byte("\n"))),
		},
	}
	if _, err := d.client.PutObject(ctx, in); err != nil {
		return fmt.Errorf("upload sitekeep export to %s: %w", d, err)
	}
	return nil
}
