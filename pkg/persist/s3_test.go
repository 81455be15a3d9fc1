package persist

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(v))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Prefix)
	var names []string
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			names = append(names, strings.TrimPrefix(k, aws.ToString(in.Bucket)+"/"))
		}
	}
	sort.Strings(names)

	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	for _, n := range names {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(n)})
	}
	return out, nil
}

func TestS3Storage(t *testing.T) {
	fake := newFakeS3()
	s := NewS3Storage(fake, "bucket", WithS3Prefix("app/"))

	_, ok, err := s.GetItem("a")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SetItem("a", `"x"`))
	require.NoError(t, s.SetItem("b", `2`))
	assert.Contains(t, fake.objects, "bucket/app/a")

	v, ok, err := s.GetItem("a")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `"x"`, v)

	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, keys)

	removed, err := Remove(s, "a")
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = Remove(s, "a")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestNewS3Client_RequiresRegion(t *testing.T) {
	_, err := NewS3Client(S3ClientConfig{})
	assert.Error(t, err)

	c, err := NewS3Client(S3ClientConfig{Region: "us-east-1", Endpoint: "http://localhost:9000", UsePathStyle: true})
	require.NoError(t, err)
	assert.NotNil(t, c)
}
