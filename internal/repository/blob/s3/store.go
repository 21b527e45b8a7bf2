package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mamadbah2/stockledger/internal/repository/blob"
)

// Store keeps attachments in a single S3 (or MinIO) bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// Config holds construction parameters.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional, e.g. MinIO
	PathStyle bool
}

// New creates an S3 archive; credentials come from the default AWS chain.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverS3 }

func (s *Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err == nil {
		return true, nil
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return false, nil
	}
	return false, err
}

// Put uploads r under name; existing names are refused.
func (s *Store) Put(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	key, err := blob.CleanName(name)
	if err != nil {
		return "", err
	}
	found, err := s.exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("head %s: %w", key, err)
	}
	if found {
		return "", fmt.Errorf("%w: %s", blob.ErrExists, key)
	}
	input := &s3.PutObjectInput{Bucket: &s.bucket, Key: &key, Body: r}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return key, nil
}

// Delete removes name; it reports false when the object was absent.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	key, err := blob.CleanName(name)
	if err != nil {
		return false, err
	}
	found, err := s.exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("head %s: %w", key, err)
	}
	if !found {
		return false, nil
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &key}); err != nil {
		return false, fmt.Errorf("delete %s: %w", key, err)
	}
	return true, nil
}

// List pages through the bucket under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]blob.Info, error) {
	input := &s3.ListObjectsV2Input{Bucket: &s.bucket}
	if prefix != "" {
		input.Prefix = aws.String(prefix)
	}
	var infos []blob.Info
	pager := s3.NewListObjectsV2Paginator(s.client, input)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range page.Contents {
			info := blob.Info{Name: aws.ToString(obj.Key), Size: aws.ToInt64(obj.Size)}
			if obj.LastModified != nil {
				info.LastModified = obj.LastModified.UTC()
			}
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Rename copies from to to and deletes the source.
func (s *Store) Rename(ctx context.Context, from, to string) error {
	src, err := blob.CleanName(from)
	if err != nil {
		return err
	}
	dst, err := blob.CleanName(to)
	if err != nil {
		return err
	}
	if found, err := s.exists(ctx, src); err != nil {
		return fmt.Errorf("head %s: %w", src, err)
	} else if !found {
		return fmt.Errorf("%w: %s", blob.ErrNotFound, src)
	}
	if found, err := s.exists(ctx, dst); err != nil {
		return fmt.Errorf("head %s: %w", dst, err)
	} else if found {
		return fmt.Errorf("%w: %s", blob.ErrExists, dst)
	}
	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     &s.bucket,
		Key:        &dst,
		CopySource: aws.String(s.bucket + "/" + src),
	})
	if err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &src}); err != nil {
		return fmt.Errorf("delete %s after copy: %w", src, err)
	}
	return nil
}
