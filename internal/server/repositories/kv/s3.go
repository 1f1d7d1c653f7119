package kv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/dmitrijs2005/drawersync/internal/shared"
)

// updatedAtMeta is the user metadata entry carrying the item timestamp.
const updatedAtMeta = "updated-at"

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// objectAPI is the subset of *s3.Client used by S3Repository.
type objectAPI interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Options locates the bucket. Endpoint may point at MinIO or any other
// S3-compatible service; path-style addressing is always used.
type S3Options struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
}

// S3Repository keeps one object per key, named Prefix+key, with the value as
// body and the timestamp in object metadata.
type S3Repository struct {
	api    objectAPI
	bucket string
	prefix string
}

func NewS3Repository(ctx context.Context, opts S3Options) (*S3Repository, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = true
	})

	return newS3Repository(client, opts.Bucket, opts.Prefix), nil
}

func newS3Repository(api objectAPI, bucket, prefix string) *S3Repository {
	return &S3Repository{api: api, bucket: bucket, prefix: prefix}
}

func (r *S3Repository) objectKey(key string) string { return r.prefix + key }

func (r *S3Repository) Get(ctx context.Context, key string) (shared.Item, error) {
	out, err := r.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.objectKey(key)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return shared.Item{}, common.ErrNotFound
		}
		return shared.Item{}, fmt.Errorf("s3 get %s: %w", key, err)
	}
	defer out.Body.Close()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return shared.Item{}, fmt.Errorf("s3 read %s: %w", key, err)
	}

	return shared.Item{
		Key:       key,
		Value:     string(body),
		UpdatedAt: parseUpdatedAt(out.Metadata),
	}, nil
}

func (r *S3Repository) Put(ctx context.Context, key, value string, updatedAt int64) error {
	_, err := r.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(r.bucket),
		Key:         aws.String(r.objectKey(key)),
		Body:        strings.NewReader(value),
		ContentType: aws.String("application/json"),
		Metadata:    map[string]string{updatedAtMeta: strconv.FormatInt(updatedAt, 10)},
	})
	if err != nil {
		return fmt.Errorf("s3 put %s: %w", key, err)
	}
	return nil
}

func (r *S3Repository) List(ctx context.Context) ([]shared.Item, error) {
	var keys []string

	p := s3.NewListObjectsV2Paginator(r.api, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3 list: %w", err)
		}
		for _, obj := range page.Contents {
			k := strings.TrimPrefix(aws.ToString(obj.Key), r.prefix)
			if shared.ValidKey(k) {
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)

	items := make([]shared.Item, 0, len(keys))
	for _, k := range keys {
		it, err := r.Get(ctx, k)
		if errors.Is(err, common.ErrNotFound) {
			// deleted between list and get
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

func (r *S3Repository) Ping(ctx context.Context) error {
	if _, err := r.api.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(r.bucket)}); err != nil {
		return fmt.Errorf("s3 head bucket %s: %w", r.bucket, err)
	}
	return nil
}

func parseUpdatedAt(meta map[string]string) int64 {
	for k, v := range meta {
		if strings.EqualFold(k, updatedAtMeta) {
			ts, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0
			}
			return ts
		}
	}
	return 0
}
