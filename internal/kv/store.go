// Package kv defines the key-value persistence contract the history
// manager writes through. Values are whole JSON collections; a Put
// replaces the value for its key atomically or not at all.
package kv

import (
	"context"
	"errors"
)

// Logical keys for the persisted collections.
const (
	KeyUserProfile     = "userProfile"
	KeyCartItems       = "cartItems"
	KeyMenuHistory     = "menuHistory"
	KeyPendingUploads  = "pendingUploadQueue"
	KeyMaxStorageLimit = "maxStorageLimit"
)

var ErrKeyNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
