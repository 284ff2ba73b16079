package profile

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/modtoolkit/internal/client/api"
	"github.com/dmitrijs2005/modtoolkit/internal/filex"
	"github.com/dmitrijs2005/modtoolkit/internal/netx"
)

// AvatarAPI is the slice of the server API the avatar flow needs.
type AvatarAPI interface {
	AvatarUploadURL(ctx context.Context) (*api.AvatarUpload, error)
	AvatarDownloadURL(ctx context.Context, key string) (string, error)
}

// AvatarManager uploads avatar images through presigned object-storage URLs
// and remembers the resulting storage key in the profile store.
type AvatarManager struct {
	api   AvatarAPI
	store *Store
}

func NewAvatarManager(api AvatarAPI, store *Store) *AvatarManager {
	return &AvatarManager{api: api, store: store}
}

// Upload reads the image at path, PUTs it to a fresh presigned URL and
// saves the storage key locally. Returns the key on success.
func (m *AvatarManager) Upload(ctx context.Context, path string) (string, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading avatar file: %w", err)
	}

	up, err := m.api.AvatarUploadURL(ctx)
	if err != nil {
		return "", fmt.Errorf("requesting upload url: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if err := netx.UploadToPresignedURL(up.URL, payload, contentType); err != nil {
		return "", fmt.Errorf("uploading avatar: %w", err)
	}

	if err := m.store.SetAvatarKey(ctx, up.Key); err != nil {
		return "", err
	}
	return up.Key, nil
}

// DownloadURL returns a presigned GET URL for the stored avatar, or an
// empty string when no avatar has been uploaded yet.
func (m *AvatarManager) DownloadURL(ctx context.Context) (string, error) {
	p, err := m.store.Get(ctx)
	if err != nil {
		return "", err
	}
	if p == nil || p.AvatarKey == "" {
		return "", nil
	}
	return m.api.AvatarDownloadURL(ctx, p.AvatarKey)
}

const avatarCacheDir = "avatars"

// Download fetches the stored avatar into a local avatars/ cache directory
// and returns the cached file path. A file already in the cache is reused
// without touching the network. Returns an empty path when no avatar has
// been uploaded yet.
func (m *AvatarManager) Download(ctx context.Context) (string, error) {
	p, err := m.store.Get(ctx)
	if err != nil {
		return "", err
	}
	if p == nil || p.AvatarKey == "" {
		return "", nil
	}

	dir, err := filex.EnsureSubDir(avatarCacheDir)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(dir, filepath.Base(p.AvatarKey))
	if _, err := os.Stat(dest); err == nil {
		return dest, nil
	}

	url, err := m.api.AvatarDownloadURL(ctx, p.AvatarKey)
	if err != nil {
		return "", err
	}
	payload, err := netx.DownloadFromPresignedURL(url)
	if err != nil {
		return "", fmt.Errorf("downloading avatar: %w", err)
	}
	if err := os.WriteFile(dest, payload, 0o660); err != nil {
		return "", fmt.Errorf("caching avatar: %w", err)
	}
	return dest, nil
}
