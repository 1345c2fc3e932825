package blob

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 implements s3API over an in-memory map.
type fakeS3 struct {
	objects map[string][]byte

	putErr  error
	getErr  error
	headErr error
	delErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[*in.Key]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	if _, ok := f.objects[*in.Key]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.delErr != nil {
		return nil, f.delErr
	}
	delete(f.objects, *in.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Store_PutGetRoundTrip(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, bucket: "transfers"}
	ctx := context.Background()

	data := []byte("ciphertext")
	ref, err := s.Put(ctx, data)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "transfers/"), "dated key prefix, got %s", ref)

	got, err := s.Get(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestS3Store_ExistsAndDelete(t *testing.T) {
	fake := newFakeS3()
	s := &S3Store{client: fake, bucket: "transfers"}
	ctx := context.Background()

	ref, err := s.Put(ctx, []byte("x"))
	require.NoError(t, err)

	ok, err := s.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, s.Delete(ctx, ref))

	ok, err = s.Exists(ctx, ref)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestS3Store_ExistsPropagatesOtherErrors(t *testing.T) {
	fake := newFakeS3()
	fake.headErr = errors.New("connection refused")
	s := &S3Store{client: fake, bucket: "transfers"}

	_, err := s.Exists(context.Background(), "any")
	assert.Error(t, err)
}

func TestS3Store_PutError(t *testing.T) {
	fake := newFakeS3()
	fake.putErr = errors.New("bucket gone")
	s := &S3Store{client: fake, bucket: "transfers"}

	_, err := s.Put(context.Background(), []byte("x"))
	assert.Error(t, err)
}
