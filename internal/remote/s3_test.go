package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	smithyhttp "github.com/aws/smithy-go/transport/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects   map[string][]byte
	putErr    error
	deleteErr error
	listPages [][]string
	listCalls int
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{ETag: aws.String(`"abc"`)}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	delete(f.objects, aws.ToString(params.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, params *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.listPages[f.listCalls]
	f.listCalls++

	out := &s3.ListObjectsV2Output{}
	for _, key := range page {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(key)})
	}
	if f.listCalls < len(f.listPages) {
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String("next")
	}
	return out, nil
}

func httpResponseError(status int) error {
	return &awshttp.ResponseError{
		ResponseError: &smithyhttp.ResponseError{
			Response: &smithyhttp.Response{Response: &http.Response{StatusCode: status}},
			Err:      errors.New("boom"),
		},
		RequestID: "req-1",
	}
}

func TestS3Upload(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	storage := newS3StorageWithClient(fake, "bucket", "/mirror/")

	localPath := filepath.Join(t.TempDir(), "z.txt")
	require.NoError(t, os.WriteFile(localPath, []byte("zzz"), 0644))

	res, err := storage.Upload(context.Background(), localPath)
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, []byte("zzz"), fake.objects["mirror/z.txt"])
	assert.Contains(t, string(res.Body), `"etag":"abc"`)
}

func TestS3UploadResponseErrorBecomesResult(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, putErr: httpResponseError(http.StatusForbidden)}
	storage := newS3StorageWithClient(fake, "bucket", "mirror")

	localPath := filepath.Join(t.TempDir(), "z.txt")
	require.NoError(t, os.WriteFile(localPath, []byte("zzz"), 0644))

	res, err := storage.Upload(context.Background(), localPath)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, string(res.Body), "req-1")
}

func TestS3DeleteTransportError(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}, deleteErr: errors.New("dial tcp: refused")}
	storage := newS3StorageWithClient(fake, "bucket", "mirror")

	res, err := storage.Delete(context.Background(), "x")
	assert.Error(t, err)
	assert.Nil(t, res)
}

func TestS3Delete(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{"mirror/x": []byte("x")}}
	storage := newS3StorageWithClient(fake, "bucket", "mirror")

	res, err := storage.Delete(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.NotContains(t, fake.objects, "mirror/x")
}

func TestS3List(t *testing.T) {
	fake := &fakeS3{listPages: [][]string{{"mirror/x", "mirror/y"}, {"mirror/z"}}}
	storage := newS3StorageWithClient(fake, "bucket", "mirror")

	entries, err := storage.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, &Entry{Name: "x", Path: "mirror/x", Type: "file"}, entries[0])
	assert.Equal(t, "z", entries[2].Name)
}

func TestS3ListKeepsNestedKeysDeletable(t *testing.T) {
	fake := &fakeS3{
		objects: map[string][]byte{
			"mirror/sub/old.txt": []byte("111"),
			"mirror/old.txt":     []byte("222"),
			"other/keep.txt":     []byte("333"),
		},
		listPages: [][]string{{"mirror/old.txt", "mirror/sub/old.txt"}},
	}
	storage := newS3StorageWithClient(fake, "bucket", "mirror")

	entries, err := storage.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, &Entry{Name: "sub/old.txt", Path: "mirror/sub/old.txt", Type: "file"}, entries[1])

	for _, entry := range entries {
		res, err := storage.Delete(context.Background(), entry.Name)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, res.StatusCode)
	}

	assert.Equal(t, map[string][]byte{"other/keep.txt": []byte("333")}, fake.objects)
}
