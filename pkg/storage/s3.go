package storage

import (
	"context"
	"fmt"
	"io"
	"vidhub-go/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// NewS3Client 基于静态凭证和自定义 endpoint 创建 S3 客户端，适用于 AWS S3 与 Cloudflare R2。
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	region := cfg.Region
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return client, nil
}

// S3Store 是基于 aws-sdk-go-v2 的 ObjectStore 实现。
type S3Store struct {
	client *s3.Client
}

// NewS3Store 创建一个新的 S3Store 实例。
func NewS3Store(client *s3.Client) *S3Store {
	return &S3Store{client: client}
}

func (s *S3Store) BeginMultipartUpload(ctx context.Context, bucket, key, contentType string) (*MultipartSession, error) {
	out, err := s.client.CreateMultipartUpload(ctx, &s3.CreateMultipartUploadInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, err
	}
	return &MultipartSession{Bucket: bucket, Key: key, UploadID: aws.ToString(out.UploadId)}, nil
}

func (s *S3Store) UploadPart(ctx context.Context, session *MultipartSession, partNumber int, data io.Reader, size int64) (string, error) {
	out, err := s.client.UploadPart(ctx, &s3.UploadPartInput{
		Bucket:        aws.String(session.Bucket),
		Key:           aws.String(session.Key),
		UploadId:      aws.String(session.UploadID),
		PartNumber:    aws.Int32(int32(partNumber)),
		Body:          data,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(out.ETag), nil
}

func (s *S3Store) CompleteMultipartUpload(ctx context.Context, session *MultipartSession, parts []CompletedPart) error {
	completed := make([]s3types.CompletedPart, len(parts))
	for i, p := range parts {
		completed[i] = s3types.CompletedPart{
			ETag:       aws.String(p.ETag),
			PartNumber: aws.Int32(int32(p.PartNumber)),
		}
	}
	_, err := s.client.CompleteMultipartUpload(ctx, &s3.CompleteMultipartUploadInput{
		Bucket:          aws.String(session.Bucket),
		Key:             aws.String(session.Key),
		UploadId:        aws.String(session.UploadID),
		MultipartUpload: &s3types.CompletedMultipartUpload{Parts: completed},
	})
	return err
}

func (s *S3Store) AbortMultipartUpload(ctx context.Context, session *MultipartSession) error {
	_, err := s.client.AbortMultipartUpload(ctx, &s3.AbortMultipartUploadInput{
		Bucket:   aws.String(session.Bucket),
		Key:      aws.String(session.Key),
		UploadId: aws.String(session.UploadID),
	})
	return err
}

func (s *S3Store) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

var _ ObjectStore = (*S3Store)(nil)
