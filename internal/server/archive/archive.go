// Package archive exports a conversation transcript to S3-compatible object
// storage before the conversation is deleted.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/dmitrijs2005/chatrelay/internal/server/config"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Putter is the single S3 call the exporter needs.
type Putter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Transcript is the object body.
type Transcript struct {
	Owner      models.OwnerRef   `json:"userId"`
	ExportedAt time.Time         `json:"exportedAt"`
	Messages   []*models.Message `json:"messages"`
}

type Exporter struct {
	bucket string
	client Putter
	now    func() time.Time
}

func NewExporter(bucket string, client Putter) *Exporter {
	return &Exporter{bucket: bucket, client: client, now: time.Now}
}

// NewS3Exporter builds an exporter from the S3 settings in cfg. Static
// credentials and a custom endpoint make it work against MinIO.
func NewS3Exporter(ctx context.Context, cfg *sc.Config) (*Exporter, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("aws config error: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return NewExporter(cfg.S3Bucket, client), nil
}

// TranscriptKey is where a transcript exported at t is stored.
func TranscriptKey(owner models.OwnerRef, t time.Time) string {
	return fmt.Sprintf("transcripts/%s/%d/%02d/%02d/%v.json", owner, t.Year(), t.Month(), t.Day(), uuid.New())
}

// Export uploads msgs as one JSON object and returns its key.
func (e *Exporter) Export(ctx context.Context, owner models.OwnerRef, msgs []*models.Message) (string, error) {
	now := e.now().UTC()

	body, err := json.Marshal(&Transcript{Owner: owner, ExportedAt: now, Messages: msgs})
	if err != nil {
		return "", fmt.Errorf("marshal transcript: %w", err)
	}

	key := TranscriptKey(owner, now)

	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(e.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("put transcript: %w", err)
	}

	return key, nil
}
