package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	store.Set(ctx, "userAuthState", `{"uid":"u1"}`)
	value, ok := store.Get(ctx, "userAuthState")
	assert.True(t, ok)
	assert.Equal(t, `{"uid":"u1"}`, value)

	store.Set(ctx, "userAuthState", `{"uid":"u2"}`)
	value, _ = store.Get(ctx, "userAuthState")
	assert.Equal(t, `{"uid":"u2"}`, value)

	store.Remove(ctx, "userAuthState")
	_, ok = store.Get(ctx, "userAuthState")
	assert.False(t, ok)

	// Removing an absent key is a no-op, never an error.
	store.Remove(ctx, "userAuthState")
}

func TestMemoryStoreRemoveAllAndListKeys(t *testing.T) {
	ctx := context.Background()
	store := NewMemory()

	store.Set(ctx, "userAuthState", "s")
	store.Set(ctx, "user_data_u1", "a")
	store.Set(ctx, "user_data_u2", "b")
	store.Set(ctx, "unrelated", "c")

	assert.ElementsMatch(t,
		[]string{"userAuthState", "user_data_u1", "user_data_u2", "unrelated"},
		store.ListKeys(ctx),
	)

	store.RemoveAll(ctx, []string{"userAuthState", "user_data_u1", "user_data_u2"})
	assert.ElementsMatch(t, []string{"unrelated"}, store.ListKeys(ctx))
}
