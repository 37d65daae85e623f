package notification

import "context"

// DefaultStorageKey is the fixed key the inbox is persisted under
const DefaultStorageKey = "dashboardNotifications"

// Store is durable key/value storage holding the serialized inbox.
// Get reports a missing key with ok == false and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
