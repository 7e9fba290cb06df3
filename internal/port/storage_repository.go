package port

import "context"

// CartStorageKey is the storage key holding the serialized cart.
const CartStorageKey = "@RocketShoes:cart"

type KeyValueStorage interface {
	// Get returns the value stored under key, ok is false if the key is absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value stored under key
	Set(ctx context.Context, key string, value string) error
}
