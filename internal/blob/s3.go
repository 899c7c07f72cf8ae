package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

const (
	defaultPresignTTL  = 15 * time.Minute
	deleteObjectsBatch = 1000
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config describes an S3 or S3-compatible (MinIO) bucket.
type S3Config struct {
	Bucket     string
	Region     string
	Endpoint   string
	AccessKey  string
	SecretKey  string
	PresignTTL time.Duration
}

type s3API interface {
	s3.ListObjectsV2APIClient
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

type s3Presigner interface {
	PresignGetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

type S3Store struct {
	client     s3API
	presigner  s3Presigner
	bucket     string
	presignTTL time.Duration
	now        func() time.Time
}

func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("blob: s3 bucket must not be empty")
	}

	options := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" || cfg.SecretKey != "" {
		options = append(options, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsConfig, err := loadDefaultAWSConfig(ctx, options...)
	if err != nil {
		return nil, fmt.Errorf("blob: load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsConfig, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3Store(client, s3.NewPresignClient(client), bucket, cfg.PresignTTL), nil
}

func newS3Store(client s3API, presigner s3Presigner, bucket string, presignTTL time.Duration) *S3Store {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &S3Store{
		client:     client,
		presigner:  presigner,
		bucket:     bucket,
		presignTTL: presignTTL,
		now:        time.Now,
	}
}

func (store *S3Store) Put(ctx context.Context, ownerID uint, body io.Reader, contentType string) (string, error) {
	key := NewKey(ownerID, contentType, store.now())
	if _, err := store.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(store.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentTypeFor(key)),
	}); err != nil {
		return "", fmt.Errorf("blob: upload %s: %w", key, err)
	}
	return key, nil
}

func (store *S3Store) Open(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if err := validRef(ref); err != nil {
		return nil, "", err
	}
	output, err := store.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		var missing *s3types.NoSuchKey
		if errors.As(err, &missing) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("blob: download %s: %w", ref, err)
	}
	contentType := aws.ToString(output.ContentType)
	if contentType == "" {
		contentType = contentTypeFor(ref)
	}
	return output.Body, contentType, nil
}

func (store *S3Store) URL(ctx context.Context, ref string) (string, error) {
	if err := validRef(ref); err != nil {
		return "", err
	}
	request, err := store.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(ref),
	}, s3.WithPresignExpires(store.presignTTL))
	if err != nil {
		return "", fmt.Errorf("blob: presign %s: %w", ref, err)
	}
	return request.URL, nil
}

func (store *S3Store) Delete(ctx context.Context, ref string) error {
	if err := validRef(ref); err != nil {
		return err
	}
	if _, err := store.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(store.bucket),
		Key:    aws.String(ref),
	}); err != nil {
		return fmt.Errorf("blob: delete %s: %w", ref, err)
	}
	return nil
}

func (store *S3Store) DeleteOwner(ctx context.Context, ownerID uint) error {
	paginator := s3.NewListObjectsV2Paginator(store.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(store.bucket),
		Prefix: aws.String(ownerPrefix(ownerID)),
	})

	batch := make([]s3types.ObjectIdentifier, 0, deleteObjectsBatch)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("blob: list owner %d: %w", ownerID, err)
		}
		for _, object := range page.Contents {
			batch = append(batch, s3types.ObjectIdentifier{Key: object.Key})
			if len(batch) == deleteObjectsBatch {
				if err := store.deleteBatch(ctx, batch); err != nil {
					return err
				}
				batch = batch[:0]
			}
		}
	}
	if len(batch) > 0 {
		return store.deleteBatch(ctx, batch)
	}
	return nil
}

func (store *S3Store) deleteBatch(ctx context.Context, objects []s3types.ObjectIdentifier) error {
	output, err := store.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
		Bucket: aws.String(store.bucket),
		Delete: &s3types.Delete{
			Objects: append([]s3types.ObjectIdentifier(nil), objects...),
			Quiet:   aws.Bool(true),
		},
	})
	if err != nil {
		return fmt.Errorf("blob: delete objects: %w", err)
	}
	if len(output.Errors) > 0 {
		first := output.Errors[0]
		return fmt.Errorf("blob: delete %s: %s", aws.ToString(first.Key), aws.ToString(first.Message))
	}
	return nil
}
