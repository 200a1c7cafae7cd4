package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	sc "github.com/dmitrijs2005/miniblog/internal/server/config"
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
)

// PresignExpiry is the lifetime of an upload URL.
const PresignExpiry = 15 * time.Minute

// Media kinds accepted by PresignUpload.
const (
	MediaArticleImage = "article"
	MediaAvatar       = "avatar"
)

// Upload describes where a client should PUT a file and where it will be
// served from afterwards.
type Upload struct {
	Key       string `json:"key"`
	UploadURL string `json:"uploadUrl"`
	PublicURL string `json:"publicUrl"`
}

// MediaService hands out presigned S3 upload URLs for article images and
// avatars. The resulting public URL is what clients then store in
// Article.Image or the profile avatar.
type MediaService struct {
	config *sc.Config
	log    logging.Logger
	now    func() time.Time
}

func NewMediaService(config *sc.Config, log logging.Logger) *MediaService {
	return &MediaService{config: config, log: log, now: time.Now}
}

// Enabled reports whether an upload bucket is configured.
func (s *MediaService) Enabled() bool {
	return s.config.S3Bucket != ""
}

// StorageKey builds a unique object key for a user's upload.
func (s *MediaService) StorageKey(kind, userID string) string {
	d := s.now().UTC()
	return fmt.Sprintf("media/%s/%s/%d/%02d/%v", kind, userID, d.Year(), d.Month(), uuid.New())
}

func (s *MediaService) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
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
		if s.config.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
			// MinIO and most self-hosted stores only route path-style.
			o.UsePathStyle = true
		}
	})

	return newS3PresignClient(client), nil
}

// PublicURL returns the URL under which key is served.
func (s *MediaService) PublicURL(key string) string {
	if base := strings.TrimRight(s.config.S3PublicBaseURL, "/"); base != "" {
		return base + "/" + key
	}
	if endpoint := strings.TrimRight(s.config.S3BaseEndpoint, "/"); endpoint != "" {
		return endpoint + "/" + s.config.S3Bucket + "/" + key
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.S3Bucket, s.config.S3Region, key)
}

// PresignUpload returns a presigned PUT for a new object of the given kind.
// contentType is optional; when set it must be an image type and becomes
// part of the signature.
func (s *MediaService) PresignUpload(ctx context.Context, claims *auth.Claims, kind, contentType string) (*Upload, error) {
	if claims == nil {
		return nil, common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}
	if !s.Enabled() {
		return nil, common.NewError(common.ErrorUnavailable, "Media uploads are not configured.")
	}
	if kind != MediaArticleImage && kind != MediaAvatar {
		return nil, common.NewError(common.ErrorValidation, `Kind must be "article" or "avatar".`)
	}
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		return nil, common.NewError(common.ErrorValidation, "Only image uploads are allowed.")
	}

	presignClient, err := s.getPresignClient(ctx)
	if err != nil {
		s.log.Error(ctx, "s3 client setup failed", "error", err)
		return nil, common.NewError(common.ErrorInternal, MsgInternal)
	}

	bucket := s.config.S3Bucket
	key := s.StorageKey(kind, claims.UserID())
	in := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		s.log.Error(ctx, "presign failed", "error", err)
		return nil, common.NewError(common.ErrorInternal, MsgInternal)
	}

	return &Upload{Key: key, UploadURL: req.URL, PublicURL: s.PublicURL(key)}, nil
}
