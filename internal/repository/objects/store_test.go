package objects

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/stretchr/testify/require"

	"github.com/jefftt/s3edit/internal/config"
)

// fakeS3 serves listing pages and records puts. Unimplemented methods panic
// through the embedded nil interface.
type fakeS3 struct {
	s3iface.S3API

	pages   [][]string
	objects map[string]string
	puts    map[string]string
}

func (f *fakeS3) ListObjectsV2PagesWithContext(
	_ aws.Context,
	input *s3.ListObjectsV2Input,
	fn func(*s3.ListObjectsV2Output, bool) bool,
	_ ...request.Option,
) error {
	if aws.StringValue(input.Bucket) != "logs" {
		return errors.New("NoSuchBucket")
	}

	for i, keys := range f.pages {
		page := &s3.ListObjectsV2Output{}
		for _, key := range keys {
			page.Contents = append(page.Contents, &s3.Object{Key: aws.String(key)})
		}

		if !fn(page, i == len(f.pages)-1) {
			return nil
		}
	}

	return nil
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, input *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.StringValue(input.Key)]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}

	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewBufferString(body))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, input *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(input.Body)
	if err != nil {
		return nil, err
	}

	f.puts[aws.StringValue(input.Key)] = string(body)

	return &s3.PutObjectOutput{}, nil
}

// TestListKeys follows every page.
func TestListKeys(t *testing.T) {
	t.Parallel()

	store := NewS3Store(&fakeS3{pages: [][]string{{"a", "b"}, {"c"}, {}}})

	keys, err := store.ListKeys(context.Background(), "logs", "2024/")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)

	_, err = store.ListKeys(context.Background(), "other", "")
	require.ErrorContains(t, err, "s3://other/")
}

// TestGetPut reads and overwrites objects.
func TestGetPut(t *testing.T) {
	t.Parallel()

	fake := &fakeS3{
		objects: map[string]string{"a.jsonl": `{"a":1}`},
		puts:    map[string]string{},
	}
	store := NewS3Store(fake)

	body, err := store.Get(context.Background(), "logs", "a.jsonl")
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(body))

	_, err = store.Get(context.Background(), "logs", "missing")
	require.Error(t, err)

	require.NoError(t, store.Put(context.Background(), "logs", "a.jsonl", []byte(`{"b":1}`)))
	require.Equal(t, `{"b":1}`, fake.puts["a.jsonl"])
}

// TestNewSession applies explicit settings and the region fallback.
func TestNewSession(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_DEFAULT_REGION", "")
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")
	t.Setenv("AWS_PROFILE", "")

	sess, err := NewSession(&config.Config{
		Endpoint:       "http://localhost:4566",
		ForcePathStyle: true,
	})
	require.NoError(t, err)
	require.Equal(t, config.DefaultRegion, aws.StringValue(sess.Config.Region))
	require.Equal(t, "http://localhost:4566", aws.StringValue(sess.Config.Endpoint))
	require.True(t, aws.BoolValue(sess.Config.S3ForcePathStyle))

	sess, err = NewSession(&config.Config{Region: "eu-west-1"})
	require.NoError(t, err)
	require.Equal(t, "eu-west-1", aws.StringValue(sess.Config.Region))
}
