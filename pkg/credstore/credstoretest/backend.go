// Package credstoretest holds the behaviour every credstore.Backend must
// show, as a reusable test suite.
package credstoretest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/aussiebroadwan/caronte/pkg/credstore"
	"github.com/stretchr/testify/require"
)

// RunBackendTests exercises a Backend created by newBackend. Each subtest
// gets its own backend.
func RunBackendTests(t *testing.T, newBackend func(t *testing.T) credstore.Backend) {
	t.Helper()
	ctx := context.Background()

	t.Run("get missing", func(t *testing.T) {
		b := newBackend(t)
		_, err := b.Get(ctx, "missing0000000000000")
		require.ErrorIs(t, err, credstore.ErrNotFound)
	})

	t.Run("put then get", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, "abcDEF0123456789wxyz", "a.b.c"))

		raw, err := b.Get(ctx, "abcDEF0123456789wxyz")
		require.NoError(t, err)
		require.Equal(t, "a.b.c", raw)
	})

	t.Run("put overwrites", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, "id00000000000000000a", "old"))
		require.NoError(t, b.Put(ctx, "id00000000000000000a", "new"))

		raw, err := b.Get(ctx, "id00000000000000000a")
		require.NoError(t, err)
		require.Equal(t, "new", raw)
	})

	t.Run("delete", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, "id00000000000000000b", "tok"))
		require.NoError(t, b.Delete(ctx, "id00000000000000000b"))

		_, err := b.Get(ctx, "id00000000000000000b")
		require.ErrorIs(t, err, credstore.ErrNotFound)

		// Deleting again is fine.
		require.NoError(t, b.Delete(ctx, "id00000000000000000b"))
	})

	t.Run("ids are independent", func(t *testing.T) {
		b := newBackend(t)
		require.NoError(t, b.Put(ctx, "user1", "tok-1"))
		require.NoError(t, b.Put(ctx, "user2", "tok-2"))
		require.NoError(t, b.Delete(ctx, "user1"))

		raw, err := b.Get(ctx, "user2")
		require.NoError(t, err)
		require.Equal(t, "tok-2", raw)
	})

	t.Run("concurrent writers", func(t *testing.T) {
		b := newBackend(t)

		var wg sync.WaitGroup
		for i := range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = b.Put(ctx, "shared", fmt.Sprintf("tok-%d", i))
				_ = b.Put(ctx, fmt.Sprintf("own%d", i), "mine")
			}()
		}
		wg.Wait()

		raw, err := b.Get(ctx, "shared")
		require.NoError(t, err)
		require.Regexp(t, `^tok-\d$`, raw)

		for i := range 10 {
			raw, err := b.Get(ctx, fmt.Sprintf("own%d", i))
			require.NoError(t, err)
			require.Equal(t, "mine", raw)
		}
	})
}
