package repo

import (
	"context"
)

// CartRepository stores encoded cart records under a storage key. Writers
// to the same key do not coordinate: the last save wins.
type CartRepository interface {
	Save(ctx context.Context, key string, record []byte) error
	// Load returns domain.ErrNotFound when nothing is stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
