package remote

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResultHref(t *testing.T) {
	res := &Result{StatusCode: 202, Body: []byte(`{"href": "https://status/123"}`)}
	assert.Equal(t, "https://status/123", res.Href())

	assert.Empty(t, (&Result{StatusCode: 204}).Href())
	assert.Empty(t, (&Result{StatusCode: 500, Body: []byte("not json")}).Href())

	var nilResult *Result
	assert.Empty(t, nilResult.Href())
}

func TestNewUnknownProvider(t *testing.T) {
	storage, err := New(context.Background(), &Config{Provider: "dropbox"})
	assert.ErrorIs(t, err, ErrUnknownProvider)
	assert.Nil(t, storage)
}

func TestNewYandex(t *testing.T) {
	storage, err := New(context.Background(), &Config{
		Provider: ProviderYandex,
		Folder:   "/Backup",
		Yandex:   YandexConfig{Token: "t"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yandex Drive", storage.Name())
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "a.txt", objectKey("", "a.txt"))
	assert.Equal(t, "a.txt", objectKey("/", "a.txt"))
	assert.Equal(t, "backup/a.txt", objectKey("/backup/", "a.txt"))
	assert.Equal(t, "", folderPrefix("/"))
	assert.Equal(t, "backup/", folderPrefix("backup"))
}

func TestRelativeName(t *testing.T) {
	assert.Equal(t, "a.txt", relativeName("", "a.txt"))
	assert.Equal(t, "sub/old.txt", relativeName("/backup/", "backup/sub/old.txt"))
	assert.Equal(t, "backup/sub/old.txt", objectKey("backup", relativeName("backup", "backup/sub/old.txt")))
}
