package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
)

// MaxImageBytes bounds a single uploaded image.
const MaxImageBytes = 5 << 20

var imageExtensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// ImageService stores post images in an S3 bucket and hands back their URL.
type ImageService struct {
	client     ObjectPutter
	bucket     string
	publicBase string
	logger     zerolog.Logger
}

// NewImageService returns an uploader for bucket. Without a publicBase, URLs
// point at the bucket's virtual-hosted endpoint in region.
func NewImageService(client ObjectPutter, bucket, region, publicBase string) *ImageService {
	if publicBase == "" {
		publicBase = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &ImageService{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimSuffix(publicBase, "/"),
		logger:     log.With().Str("service", "images").Logger(),
	}
}

// Upload stores data under a fresh key owned by the caller and returns its
// public URL. The content type is sniffed from the bytes.
func (s *ImageService) Upload(ctx context.Context, caller auth.Identity, data []byte) (string, error) {
	if err := auth.CanCreatePost(caller); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errs.NewMissingRequiredFieldError("image")
	}
	if len(data) > MaxImageBytes {
		return "", errs.NewMaxBodySizeExceededError(MaxImageBytes)
	}

	contentType := http.DetectContentType(data)
	ext, ok := imageExtensions[contentType]
	if !ok {
		return "", errs.NewUnsupportedMediaTypeError(contentType, allowedImageTypes())
	}

	key := fmt.Sprintf("blog-images/%d/%s%s", caller.UserID, uuid.NewString(), ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", errs.NewServiceUnreachableError("s3", err)
	}

	s.logger.Info().Uint("userID", caller.UserID).Str("key", key).Int("bytes", len(data)).Msg("Image uploaded")
	return s.publicBase + "/" + key, nil
}

func allowedImageTypes() []string {
	return []string{"image/png", "image/jpeg", "image/gif", "image/webp"}
}
