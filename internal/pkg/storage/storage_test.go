package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Lifecycle(t *testing.T) {
	// Arrange
	ctx := context.Background()
	m := NewMemory("http://localhost:8080/assets/")

	// Act
	obj, err := m.Put(ctx, "books/covers/1.png", strings.NewReader("png-bytes"), PutOptions{Size: -1, ContentType: "image/png"})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(9), obj.Size)

	stat, err := m.Stat(ctx, "books/covers/1.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", stat.ContentType)

	data, ok := m.Bytes("books/covers/1.png")
	require.True(t, ok)
	assert.Equal(t, "png-bytes", string(data))

	url, err := m.URL(ctx, "books/covers/1.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/assets/books/covers/1.png", url)

	require.NoError(t, m.Delete(ctx, "books/covers/1.png"))
	_, err = m.Stat(ctx, "books/covers/1.png")
	assert.ErrorIs(t, err, ErrObjectNotFound)
	assert.NoError(t, m.Delete(ctx, "books/covers/1.png"))
}

func TestNewFromDriver(t *testing.T) {
	ctx := context.Background()

	s, err := NewFromDriver(ctx, "MEMORY", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, s)

	_, err = NewFromDriver(ctx, "gcs", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)

	_, err = NewFromDriver(ctx, "s3", FactoryOptions{})
	assert.ErrorIs(t, err, ErrBucketRequired)

	_, err = NewFromDriver(ctx, "minio", FactoryOptions{})
	assert.ErrorIs(t, err, ErrBucketRequired)
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/a/b.png", joinURL("https://cdn.example.com///", "a/b.png"))
	assert.Equal(t, "/a.png", joinURL("", "a.png"))
}
