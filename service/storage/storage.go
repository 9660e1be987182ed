package storage

import (
	"context"
	"time"

	"github.com/loretops/coinvest-docs/config"
	"github.com/loretops/coinvest-docs/service/types"
)

// Backend is the capability contract every storage variant implements.
// Implementations must be safe for concurrent use; they hold configuration
// only and no per-request state.
//
// The stored URL is the sole persisted address of an object, so DeleteFile
// and SignedURL re-derive the backend native key from the URL string alone.
type Backend interface {
	Name() string

	// Setup prepares the backend (directories, remote clients). Called once
	// by the factory before the instance is shared.
	Setup(ctx context.Context) error

	// StoreFile persists raw bytes under a backend chosen unique name inside
	// targetPath and returns the canonical delivery URL.
	StoreFile(ctx context.Context, file *types.StoredFile, targetPath string) (string, error)

	// StoreImage pipes the bytes through the resize/re-encode pipeline
	// before persisting. The stored name carries the output format's
	// extension, not the original's.
	StoreImage(ctx context.Context, file *types.StoredFile, targetPath string, opts config.ImageOptions) (string, error)

	// DeleteFile removes the object a URL points at. It reports false
	// instead of failing when the object is absent, the URL is malformed or
	// the backend errs; the cause is logged. Safe to call on unknown URLs.
	DeleteFile(ctx context.Context, fileURL string) bool

	// SignedURL produces a time limited delivery URL. Backends without real
	// access control return the input unchanged; callers must not assume
	// enforcement with such variants.
	SignedURL(ctx context.Context, fileURL string, expiresIn time.Duration) (string, error)

	// PublicURL is pure string construction from configuration plus path.
	PublicURL(path string) string
}
