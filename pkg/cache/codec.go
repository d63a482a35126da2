package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// GetJSON loads the value stored under key into v. It reports false on a
// miss. A value that no longer decodes is treated as a miss and removed.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, err := c.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		_, _ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON stores v under key as JSON.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache value for %s: %w", key, err)
	}
	return c.Set(ctx, key, data, ttl)
}
