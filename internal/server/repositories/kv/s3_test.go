package kv

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/drawersync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeObject struct {
	body string
	meta map[string]string
}

// fakeS3 is an in-memory bucket. pageSize > 0 splits listings into pages.
type fakeS3 struct {
	mu       sync.Mutex
	objects  map[string]fakeObject
	pageSize int
	err      error
	lists    int
}

func newFakeS3() *fakeS3 { return &fakeS3{objects: map[string]fakeObject{}} }

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	o, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(o.body)), Metadata: o.meta}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = fakeObject{body: string(b), meta: in.Metadata}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	if f.err != nil {
		return nil, f.err
	}

	var keys []string
	for k := range f.objects {
		if strings.HasPrefix(k, aws.ToString(in.Prefix)) && k > aws.ToString(in.ContinuationToken) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	if f.pageSize > 0 && len(keys) > f.pageSize {
		keys = keys[:f.pageSize]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	return out, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Repository_PutGet(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	r := newS3Repository(api, "bucket", "kv/")

	require.NoError(t, r.Put(ctx, "drawer.days.v1", `{"a":1}`, 1234))

	obj, ok := api.objects["kv/drawer.days.v1"]
	require.True(t, ok)
	assert.Equal(t, "1234", obj.meta[updatedAtMeta])

	it, err := r.Get(ctx, "drawer.days.v1")
	require.NoError(t, err)
	assert.Equal(t, "drawer.days.v1", it.Key)
	assert.Equal(t, `{"a":1}`, it.Value)
	assert.EqualValues(t, 1234, it.UpdatedAt)
}

func TestS3Repository_GetMissing(t *testing.T) {
	r := newS3Repository(newFakeS3(), "bucket", "kv/")
	_, err := r.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestS3Repository_Errors(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	api.err = errors.New("s3 down")
	r := newS3Repository(api, "bucket", "kv/")

	_, err := r.Get(ctx, "k")
	assert.ErrorContains(t, err, "s3 down")
	assert.NotErrorIs(t, err, common.ErrNotFound)
	assert.ErrorContains(t, r.Put(ctx, "k", "v", 1), "s3 down")
	_, err = r.List(ctx)
	assert.ErrorContains(t, err, "s3 down")
	assert.ErrorContains(t, r.Ping(ctx), "s3 down")
}

func TestS3Repository_ListPagesAndSorts(t *testing.T) {
	ctx := context.Background()
	api := newFakeS3()
	api.pageSize = 2
	r := newS3Repository(api, "bucket", "kv/")

	for i, k := range []string{"c", "a", "e", "b", "d"} {
		require.NoError(t, r.Put(ctx, k, k+"!", int64(i)))
	}
	api.objects["other/x"] = fakeObject{body: "ignored"}

	items, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, want, items[i].Key)
		assert.Equal(t, want+"!", items[i].Value)
	}
	assert.Equal(t, 3, api.lists)
}

func TestParseUpdatedAt(t *testing.T) {
	assert.EqualValues(t, 9, parseUpdatedAt(map[string]string{"Updated-At": "9"}))
	assert.EqualValues(t, 0, parseUpdatedAt(map[string]string{"updated-at": "x"}))
	assert.EqualValues(t, 0, parseUpdatedAt(nil))
}

func TestNewS3Repository_ConfiguresClient(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*config.LoadOptions) error) (aws.Config, error) {
		lo := config.LoadOptions{}
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		assert.Equal(t, "eu-west-1", lo.Region)
		return aws.Config{Region: lo.Region}, nil
	}

	var got s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&got)
		}
		return s3.NewFromConfig(cfg, optFns...)
	}

	r, err := NewS3Repository(context.Background(), S3Options{
		Region:    "eu-west-1",
		Endpoint:  "http://minio:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "b",
		Prefix:    "p/",
	})
	require.NoError(t, err)
	assert.Equal(t, "b", r.bucket)
	assert.Equal(t, "p/", r.prefix)
	assert.Equal(t, "http://minio:9000", aws.ToString(got.BaseEndpoint))
	assert.True(t, got.UsePathStyle)
}

func TestNewS3Repository_ConfigError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })

	loadDefaultAWSConfig = func(context.Context, ...func(*config.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}

	_, err := NewS3Repository(context.Background(), S3Options{})
	assert.ErrorContains(t, err, "no config")
}
