// Package local is the filesystem backed storage variant. Objects live
// under a root directory served statically at {baseURL}/uploads/, so the
// stored URL maps back onto an on-disk path by stripping the origin and
// the uploads prefix.
package local

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/storage/provider/imaging"
	"github.com/loretops/coinvest-docs/service/types"
	"github.com/loretops/coinvest-docs/service/utils"
)

const urlPrefix = "/uploads/"

type Backend struct {
	rootDir string
	absRoot string
	baseURL string
	log     *logrus.Logger
}

func NewBackend(rootDir, baseURL string, log *logrus.Logger) *Backend {
	return &Backend{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		log:     log,
	}
}

func (b *Backend) Name() string {
	return "local"
}

func (b *Backend) Setup(_ context.Context) error {
	absRoot, err := filepath.Abs(b.rootDir)
	if err != nil {
		return types.NewStorage(err, "could not resolve local storage root %s", b.rootDir)
	}
	if err = os.MkdirAll(absRoot, 0755); err != nil {
		return types.NewStorage(err, "could not create local storage root %s", absRoot)
	}
	b.absRoot = absRoot
	return nil
}

func (b *Backend) openBucket(ctx context.Context) (*blob.Bucket, error) {
	return blob.OpenBucket(ctx, fmt.Sprintf("file://%s?create_dir=true", b.absRoot))
}

func (b *Backend) StoreFile(ctx context.Context, file *types.StoredFile, targetPath string) (string, error) {
	ext := utils.ExtensionFor(file.OriginalName, file.MimeType)
	return b.store(ctx, file, targetPath, ext, file.Content)
}

func (b *Backend) StoreImage(ctx context.Context, file *types.StoredFile, targetPath string, opts config.ImageOptions) (string, error) {
	content, ext, err := imaging.Transform(file.Content, opts)
	if err != nil {
		return "", types.NewStorage(err, "could not process image %s", file.OriginalName)
	}
	return b.store(ctx, file, targetPath, ext, content)
}

func (b *Backend) store(ctx context.Context, file *types.StoredFile, targetPath, ext string, content []byte) (string, error) {
	bucket, err := b.openBucket(ctx)
	if err != nil {
		return "", types.NewStorage(err, "could not open local storage at %s", b.absRoot)
	}
	defer closeAndLog(b.log, bucket)

	key := path.Join(targetPath, utils.UniqueFileName(file.OriginalName, ext))
	if err = bucket.WriteAll(ctx, key, content, nil); err != nil {
		return "", types.NewStorage(err, "could not store file %s", file.OriginalName)
	}

	return b.PublicURL(key), nil
}

// DeleteFile re-derives the on-disk key from a URL and removes the object.
// Absent objects, foreign URLs and backend failures all report false.
func (b *Backend) DeleteFile(ctx context.Context, fileURL string) bool {
	key, err := b.keyFromURL(fileURL)
	if err != nil {
		b.log.WithError(err).WithField("url", fileURL).Warn("Could not derive storage key from URL")
		return false
	}

	bucket, err := b.openBucket(ctx)
	if err != nil {
		b.log.WithError(err).Warn("Could not open local storage")
		return false
	}
	defer closeAndLog(b.log, bucket)

	exists, err := bucket.Exists(ctx, key)
	if err != nil || !exists {
		if err != nil {
			b.log.WithError(err).WithField("key", key).Warn("Could not check stored file")
		}
		return false
	}

	if err = bucket.Delete(ctx, key); err != nil {
		b.log.WithError(err).WithField("key", key).Warn("Could not delete stored file")
		return false
	}
	return true
}

// SignedURL is a passthrough: a plain filesystem has no access control to
// enforce, so local deployments run in a reduced security mode and the
// original URL is returned unchanged.
func (b *Backend) SignedURL(_ context.Context, fileURL string, _ time.Duration) (string, error) {
	return fileURL, nil
}

func (b *Backend) PublicURL(p string) string {
	return b.baseURL + urlPrefix + strings.TrimPrefix(p, "/")
}

// Root is the resolved directory objects live under, for the static file
// route that serves the /uploads/ URL space. Only set after Setup.
func (b *Backend) Root() string {
	return b.absRoot
}

func (b *Backend) keyFromURL(fileURL string) (string, error) {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return "", err
	}
	if !strings.HasPrefix(parsed.Path, urlPrefix) {
		return "", fmt.Errorf("url %s is not under %s", fileURL, urlPrefix)
	}
	key := strings.TrimPrefix(parsed.Path, urlPrefix)
	if key == "" || strings.Contains(key, "..") {
		return "", fmt.Errorf("url %s has no usable storage key", fileURL)
	}
	return key, nil
}

func closeAndLog(log *logrus.Logger, bucket *blob.Bucket) {
	if err := bucket.Close(); err != nil {
		log.WithError(err).Warn("Could not close storage bucket")
	}
}
