// Package testsutil carries shared helpers for service level tests: an
// in-memory metadata database and a scriptable storage backend.
package testsutil

import (
	"context"
	"fmt"
	"path"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/storage/models"
	"github.com/loretops/coinvest-docs/service/types"
	"github.com/loretops/coinvest-docs/service/utils"
)

// NewTestDatabase opens an in-memory sqlite database migrated with the
// service models.
func NewTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("could not open test database: %v", err)
	}
	if err = db.AutoMigrate(&models.Project{}, &models.ProjectDocument{}, &models.DocumentView{}); err != nil {
		t.Fatalf("could not migrate test database: %v", err)
	}
	return db
}

// FakeBackend implements storage.Backend in memory and records every call
// so tests can assert on interaction order and counts.
type FakeBackend struct {
	mu sync.Mutex

	// Objects maps stored URL to content.
	Objects map[string][]byte

	StoreCalls  []string
	DeleteCalls []string
	SignCalls   []string

	// SignedURLFor overrides the URL SignedURL returns, when set.
	SignedURLFor func(fileURL string) string

	// FailStores makes every store call fail, for error path tests.
	FailStores bool
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{Objects: make(map[string][]byte)}
}

func (f *FakeBackend) Name() string { return "fake" }

func (f *FakeBackend) Setup(_ context.Context) error { return nil }

func (f *FakeBackend) StoreFile(_ context.Context, file *types.StoredFile, targetPath string) (string, error) {
	return f.store(file, targetPath, utils.ExtensionFor(file.OriginalName, file.MimeType), file.Content)
}

func (f *FakeBackend) StoreImage(_ context.Context, file *types.StoredFile, targetPath string, opts config.ImageOptions) (string, error) {
	format := opts.Format
	if format == "" {
		format = config.DefaultImageFormat
	}
	return f.store(file, targetPath, "."+format, file.Content)
}

func (f *FakeBackend) store(file *types.StoredFile, targetPath, ext string, content []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.FailStores {
		return "", types.NewStorage(fmt.Errorf("store disabled"), "could not store file %s", file.OriginalName)
	}

	url := "https://files.test" + "/" + path.Join(targetPath, utils.UniqueFileName(file.OriginalName, ext))
	f.Objects[url] = content
	f.StoreCalls = append(f.StoreCalls, url)
	return url, nil
}

func (f *FakeBackend) DeleteFile(_ context.Context, fileURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeleteCalls = append(f.DeleteCalls, fileURL)
	if _, ok := f.Objects[fileURL]; !ok {
		return false
	}
	delete(f.Objects, fileURL)
	return true
}

func (f *FakeBackend) SignedURL(_ context.Context, fileURL string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SignCalls = append(f.SignCalls, fileURL)
	if f.SignedURLFor != nil {
		return f.SignedURLFor(fileURL), nil
	}
	return fileURL, nil
}

func (f *FakeBackend) PublicURL(p string) string {
	return "https://files.test/" + p
}

// StoreCount returns how many store calls the backend has seen.
func (f *FakeBackend) StoreCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.StoreCalls)
}
