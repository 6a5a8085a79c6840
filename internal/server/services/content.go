package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/mydutch/internal/common"
	sc "github.com/dmitrijs2005/mydutch/internal/server/config"
)

const (
	jsonContentType   = "application/json"
	presignValidity   = time.Hour
	progressKeyFormat = "progress/%s.json"
	chatKeyFormat     = "chat/%s/latest.json"
	audioKeyFormat    = "audio/%s.mp3"
)

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return c.GetObject(ctx, in)
	}
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		return c.DeleteObject(ctx, in)
	}
	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return c.HeadObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// ContentService wraps the S3-compatible object store behind the learning
// content and per-user data endpoints. Two buckets are involved: a shared
// content bucket (vocabulary, grammar, audio) and a per-user data bucket
// (progress, chat history). The client is built once at construction time and
// injected into handlers rather than kept as process-wide state.
type ContentService struct {
	client         *s3.Client
	presignClient  *s3.PresignClient
	contentBucket  string
	userDataBucket string
}

// NewContentService builds an S3 client from static credentials and the
// configured base endpoint (R2 or MinIO) and returns a service bound to the
// two configured buckets.
func NewContentService(cfg *sc.Config) (*ContentService, error) {
	awsCfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKeyID,
			cfg.S3SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("error loading object storage config: %v", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
	})

	return &ContentService{
		client:         client,
		presignClient:  newS3PresignClient(client),
		contentBucket:  cfg.S3ContentBucket,
		userDataBucket: cfg.S3UserDataBucket,
	}, nil
}

// VocabularyKey returns the object key for a vocabulary category. The empty
// category means the combined file.
func VocabularyKey(category string) string {
	if category == "" {
		category = "all"
	}
	return fmt.Sprintf("vocabulary/%s.json", category)
}

// GrammarKey returns the object key for a grammar lesson. The empty lesson
// means the combined file.
func GrammarKey(lesson string) string {
	if lesson == "" {
		lesson = "all"
	}
	return fmt.Sprintf("grammar/%s.json", lesson)
}

// GetContent fetches an object from the shared content bucket and returns its
// raw bytes. A missing key yields common.ErrorNotFound.
func (s *ContentService) GetContent(ctx context.Context, key string) ([]byte, error) {
	out, err := getObject(s.client, ctx, &s3.GetObjectInput{
		Bucket: &s.contentBucket,
		Key:    &key,
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error fetching object %s: %v", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading object %s: %v", key, err)
	}
	return data, nil
}

// SaveUserData writes a JSON object into the per-user data bucket.
func (s *ContentService) SaveUserData(ctx context.Context, key string, data []byte) error {
	contentType := jsonContentType
	if _, err := putObject(s.client, ctx, &s3.PutObjectInput{
		Bucket:      &s.userDataBucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
	}); err != nil {
		return fmt.Errorf("error uploading object %s: %v", key, err)
	}
	return nil
}

// DeleteUserData removes an object from the per-user data bucket. Deleting an
// absent key is not an error.
func (s *ContentService) DeleteUserData(ctx context.Context, key string) error {
	if _, err := deleteObject(s.client, ctx, &s3.DeleteObjectInput{
		Bucket: &s.userDataBucket,
		Key:    &key,
	}); err != nil {
		return fmt.Errorf("error deleting object %s: %v", key, err)
	}
	return nil
}

// userDataExists reports whether an object is present in the per-user data
// bucket. Any head failure is treated as absence.
func (s *ContentService) userDataExists(ctx context.Context, key string) bool {
	_, err := headObject(s.client, ctx, &s3.HeadObjectInput{
		Bucket: &s.userDataBucket,
		Key:    &key,
	})
	return err == nil
}

// contentExists reports whether an object is present in the shared content
// bucket.
func (s *ContentService) contentExists(ctx context.Context, key string) bool {
	_, err := headObject(s.client, ctx, &s3.HeadObjectInput{
		Bucket: &s.contentBucket,
		Key:    &key,
	})
	return err == nil
}

// GetProgressURL returns a presigned GET URL for the user's progress file, or
// common.ErrorNotFound when the user has no stored progress yet.
func (s *ContentService) GetProgressURL(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf(progressKeyFormat, userID)
	if !s.userDataExists(ctx, key) {
		return "", common.ErrorNotFound
	}
	return s.presignUserData(ctx, key)
}

// SaveProgress stores the user's progress snapshot.
func (s *ContentService) SaveProgress(ctx context.Context, userID string, data []byte) error {
	return s.SaveUserData(ctx, fmt.Sprintf(progressKeyFormat, userID), data)
}

// GetChatHistoryURL returns a presigned GET URL for the user's latest chat
// history, or common.ErrorNotFound when none is stored.
func (s *ContentService) GetChatHistoryURL(ctx context.Context, userID string) (string, error) {
	key := fmt.Sprintf(chatKeyFormat, userID)
	if !s.userDataExists(ctx, key) {
		return "", common.ErrorNotFound
	}
	return s.presignUserData(ctx, key)
}

// SaveChatHistory stores the user's latest conversation.
func (s *ContentService) SaveChatHistory(ctx context.Context, userID string, data []byte) error {
	return s.SaveUserData(ctx, fmt.Sprintf(chatKeyFormat, userID), data)
}

// DeleteChatHistory removes the user's stored conversation.
func (s *ContentService) DeleteChatHistory(ctx context.Context, userID string) error {
	return s.DeleteUserData(ctx, fmt.Sprintf(chatKeyFormat, userID))
}

// GetAudioURL returns a presigned GET URL for a pronunciation file in the
// shared content bucket, or common.ErrorNotFound when the word has no
// recording.
func (s *ContentService) GetAudioURL(ctx context.Context, word string) (string, error) {
	key := fmt.Sprintf(audioKeyFormat, word)
	if !s.contentExists(ctx, key) {
		return "", common.ErrorNotFound
	}
	req, err := presignGetObject(s.presignClient, ctx, &s3.GetObjectInput{
		Bucket: &s.contentBucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", fmt.Errorf("error presigning object %s: %v", key, err)
	}
	return req.URL, nil
}

func (s *ContentService) presignUserData(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(s.presignClient, ctx, &s3.GetObjectInput{
		Bucket: &s.userDataBucket,
		Key:    &key,
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", fmt.Errorf("error presigning object %s: %v", key, err)
	}
	return req.URL, nil
}
