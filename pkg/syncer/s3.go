package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/askcache-io/askcache/pkg/models"
)

// S3API is the subset of the S3 client the blob needs.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Blob stores the state snapshot as a single JSON object in a bucket.
// The bucket/key pair is fixed at construction, so the blob identifier is
// the key and create-vs-update collapses into PutObject.
type S3Blob struct {
	client S3API
	bucket string
	key    string
}

// NewS3Blob builds an S3Blob using the default AWS credential chain.
func NewS3Blob(ctx context.Context, bucket, key, region string) (*S3Blob, error) {
	var opts []func(*awscfg.LoadOptions) error
	if region != "" {
		opts = append(opts, awscfg.WithRegion(region))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3 blob: load aws config: %w", err)
	}
	return &S3Blob{client: s3.NewFromConfig(cfg), bucket: bucket, key: key}, nil
}

// NewS3BlobWithClient builds an S3Blob with an injected client.
func NewS3BlobWithClient(client S3API, bucket, key string) *S3Blob {
	return &S3Blob{client: client, bucket: bucket, key: key}
}

// Push writes the state to the configured object.
func (b *S3Blob) Push(ctx context.Context, _ string, state models.SyncState) (string, error) {
	body, err := json.Marshal(state)
	if err != nil {
		return "", fmt.Errorf("s3 blob: encode state: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(b.key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("s3 blob: put: %w", err)
	}
	return b.key, nil
}

// Pull reads the state from the configured object. A missing object
// returns ok=false without error.
func (b *S3Blob) Pull(ctx context.Context, _ string) (models.SyncState, bool, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return models.SyncState{}, false, nil
		}
		return models.SyncState{}, false, fmt.Errorf("s3 blob: get: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return models.SyncState{}, false, fmt.Errorf("s3 blob: read: %w", err)
	}

	var state models.SyncState
	if err := json.Unmarshal(data, &state); err != nil {
		return models.SyncState{}, false, fmt.Errorf("s3 blob: decode: %w", err)
	}
	return state, true, nil
}
