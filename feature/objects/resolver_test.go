package objects

import (
	"testing"
	"time"

	"livelist/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStatResolver_Resolve(t *testing.T) {
	modified := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := new(mocks.Client)
	client.On("StatObject", mock.Anything, "lists", "inbox/a", mock.Anything).
		Return(minio.ObjectInfo{Key: "inbox/a", Size: 42, ETag: "e1", ContentType: "text/plain", LastModified: modified}, nil)
	client.On("StatObject", mock.Anything, "lists", "inbox/gone", mock.Anything).
		Return(minio.ObjectInfo{}, minio.ErrorResponse{Code: "NoSuchKey"})
	client.On("StatObject", mock.Anything, "lists", "inbox/broken", mock.Anything).
		Return(minio.ObjectInfo{}, assert.AnError)

	r := NewStatResolver(client, "lists", 0)

	t.Run("Exists", func(t *testing.T) {
		e, err := r.Resolve("inbox/a")
		require.NoError(t, err)
		assert.Equal(t, Entry{Key: "inbox/a", Exists: true, Size: 42, ETag: "e1", ContentType: "text/plain", LastModified: modified}, e)
	})

	t.Run("Missing", func(t *testing.T) {
		e, err := r.Resolve("inbox/gone")
		require.NoError(t, err)
		assert.Equal(t, Entry{Key: "inbox/gone"}, e)
	})

	t.Run("Failure", func(t *testing.T) {
		_, err := r.Resolve("inbox/broken")
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestKeyEntry(t *testing.T) {
	e, err := KeyEntry("k")
	require.NoError(t, err)
	assert.Equal(t, Entry{Key: "k"}, e)
}
