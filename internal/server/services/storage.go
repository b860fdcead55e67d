// Package services implements the server-side halves of the media
// pipeline: upload ticket issuance, batch view signing, permit exchange
// and consumption, media finalize, and the media message send.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/9r89uf8/mediagate/internal/logging"
	"github.com/9r89uf8/mediagate/internal/media"
	sc "github.com/9r89uf8/mediagate/internal/server/config"
	"github.com/9r89uf8/mediagate/internal/server/models"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// StorageService issues single-use upload tickets (presigned PUTs) and
// resolves storage keys into short-lived signed read URLs. Raw bytes
// never pass through the application tier.
type StorageService struct {
	config *sc.Config
	logger logging.Logger
}

func NewStorageService(config *sc.Config, logger logging.Logger) *StorageService {
	return &StorageService{
		config: config,
		logger: logger.With("module", "storage_service"),
	}
}

// newStorageKey builds a write-only object key under the owner's prefix.
// The date segments keep keys auditable (and orphans garbage-collectible)
// by prefix.
func newStorageKey(ownerID string) string {
	d := time.Now()
	return fmt.Sprintf("media/%s/%d/%d/%d/%v", ownerID, d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *StorageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// IssueTicket validates the declared content type and size against the
// surface policy (the client already checked, but the client is not
// trusted) and returns a presigned PUT for a fresh key.
func (s *StorageService) IssueTicket(ctx context.Context, ownerID string, surface media.Surface, contentType string, size int64) (*models.UploadTicket, error) {
	if _, err := media.Validate(surface, contentType, size); err != nil {
		return nil, err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	key := newStorageKey(ownerID)

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: &contentType,
	}, s3.WithPresignExpires(s.config.UploadTicketTTL))
	if err != nil {
		return nil, err
	}

	return &models.UploadTicket{UploadURL: req.URL, ObjectKey: key}, nil
}

// SignBatch resolves keys into presigned GET URLs. A key that fails to
// sign is logged and omitted rather than failing the whole batch; the
// caller treats an absent key as not yet available.
func (s *StorageService) SignBatch(ctx context.Context, keys []string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, err
	}

	bucket := s.config.S3Bucket
	urls := make(map[string]string, len(keys))
	for _, key := range keys {
		if _, ok := urls[key]; ok {
			continue
		}
		key := key
		req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
			Bucket: &bucket,
			Key:    &key,
		}, s3.WithPresignExpires(s.config.SignedViewTTL))
		if err != nil {
			s.logger.Warn(ctx, "failed to sign key", "key", key, "error", err.Error())
			continue
		}
		urls[key] = req.URL
	}

	return urls, nil
}
