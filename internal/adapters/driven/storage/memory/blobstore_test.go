package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/od-drafter/internal/core/domain"
)

func TestBlobStore_UploadIsCreateOnly(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore("od-files")

	require.NoError(t, store.Upload(ctx, "Q1.docx", []byte("first"), "application/x"))
	err := store.Upload(ctx, "Q1.docx", []byte("second"), "application/x")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	data, err := store.Download(ctx, "Q1.docx")
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
	assert.Equal(t, "application/x", store.ContentType("Q1.docx"))
}

func TestBlobStore_DownloadMissing(t *testing.T) {
	_, err := NewBlobStore("b").Download(context.Background(), "nope.docx")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBlobStore_ListSorted(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore("b")
	for _, name := range []string{"Q1_v1.docx", "Q1.docx", "A.pdf"} {
		require.NoError(t, store.Upload(ctx, name, []byte(name), ""))
	}

	objects, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, objects, 3)
	assert.Equal(t, "A.pdf", objects[0].Name)
	assert.Equal(t, "Q1.docx", objects[1].Name)
	assert.Equal(t, int64(len("Q1_v1.docx")), objects[2].Size)
	assert.Equal(t, 3, store.Len())
}

func TestBlobStore_DownloadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewBlobStore("b")
	require.NoError(t, store.Upload(ctx, "Q1.docx", []byte("abc"), ""))

	data, _ := store.Download(ctx, "Q1.docx")
	data[0] = 'z'

	again, _ := store.Download(ctx, "Q1.docx")
	assert.Equal(t, "abc", string(again))
}

func TestBlobStore_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBlobStore("b").List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBlobStore_PublicURL(t *testing.T) {
	assert.Equal(t, "memory://od-files/Q%201.docx", NewBlobStore("od-files").PublicURL("Q 1.docx"))
}
