// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package blob

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/properview/cliparse"
)

func stores(t *testing.T) map[string]Store {
	fsStore, err := NewFSStore(filepath.Join(t.TempDir(), "blobs"))
	require.NoError(t, err)
	return map[string]Store{
		"fs":     fsStore,
		"memory": NewMemoryStore(),
	}
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			key := ImageKey("l1", "img1")
			info, err := s.Put(ctx, key, strings.NewReader("jpegbytes"), "image/jpeg")
			require.NoError(t, err)
			assert.Equal(t, int64(9), info.Size)
			assert.Equal(t, "image/jpeg", info.ContentType)

			_, err = s.Put(ctx, key, strings.NewReader("again"), "image/jpeg")
			assert.ErrorIs(t, err, ErrExists)

			got, rc, err := s.Get(ctx, key)
			require.NoError(t, err)
			body, err := io.ReadAll(rc)
			rc.Close()
			require.NoError(t, err)
			assert.Equal(t, "jpegbytes", string(body))
			assert.Equal(t, "image/jpeg", got.ContentType)
			assert.Equal(t, int64(9), got.Size)

			existed, err := s.Delete(ctx, key)
			require.NoError(t, err)
			assert.True(t, existed)

			existed, err = s.Delete(ctx, key)
			require.NoError(t, err)
			assert.False(t, existed)

			_, _, err = s.Get(ctx, key)
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = s.PresignURL(ctx, key, 0)
			assert.ErrorIs(t, err, ErrUnsupported)
		})
	}
}

func TestStore_RejectsBadKeys(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"", "  ", "/etc/passwd", "listings/../../secret", "a\\b"} {
				_, err := s.Put(ctx, key, strings.NewReader("x"), "")
				assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
			}
		})
	}
}

func TestFSStore_HidesSidecars(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "blobs")
	s, err := NewFSStore(root)
	require.NoError(t, err)

	key := ImageKey("l1", "img1")
	_, err = s.Put(ctx, key, strings.NewReader("jpegbytes"), "image/jpeg")
	require.NoError(t, err)

	_, _, err = s.Get(ctx, key+".meta")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Get(ctx, "listings/l1/.tmp-123")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Put(ctx, "listings/l1/photo.meta", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, ErrInvalidKey)
	_, err = s.Delete(ctx, key+".meta")
	assert.ErrorIs(t, err, ErrInvalidKey)

	// The blob itself is untouched
	_, rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	rc.Close()
}

func TestFSStore_MissingSidecarIsNotFound(t *testing.T) {
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "blobs")
	s, err := NewFSStore(root)
	require.NoError(t, err)

	key := ImageKey("l1", "img1")
	_, err = s.Put(ctx, key, strings.NewReader("jpegbytes"), "image/jpeg")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(root, "listings", "l1", "img1.meta")))

	_, _, err = s.Get(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateKey(t *testing.T) {
	k, err := ValidateKey("listings/a//b")
	require.NoError(t, err)
	assert.Equal(t, "listings/a/b", k)

	// Dots inside a segment are fine
	_, err = ValidateKey("listings/a..b/c")
	assert.NoError(t, err)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, cliparse.Config{BlobDriver: cliparse.BlobMemory})
	require.NoError(t, err)
	assert.Equal(t, cliparse.BlobMemory, s.Driver())

	s, err = Open(ctx, cliparse.Config{BlobDriver: cliparse.BlobFS, BlobDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, cliparse.BlobFS, s.Driver())

	_, err = Open(ctx, cliparse.Config{BlobDriver: cliparse.BlobS3})
	assert.Error(t, err, "s3 without bucket")

	_, err = Open(ctx, cliparse.Config{BlobDriver: "ftp"})
	assert.Error(t, err)
}

func TestMemoryStore_Len(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Put(context.Background(), "a", strings.NewReader("1"), "")
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestIsNotFound(t *testing.T) {
	assert.False(t, isNotFound(errors.New("boom")))
}
