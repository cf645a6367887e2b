package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saveWithID(t *testing.T, store *Store, id string) {
	t.Helper()
	r := New("hands.jsonl", 25, failingResult(0), time.UnixMilli(1000))
	r.ID = id
	require.NoError(t, store.Save(context.Background(), r))
}

func TestResolveID(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	saveWithID(t, store, "abcdef12-0000-4000-8000-000000000001")
	saveWithID(t, store, "abcdef12-0000-4000-8000-000000000002")
	saveWithID(t, store, "99887766-0000-4000-8000-000000000003")

	t.Run("full uuid", func(t *testing.T) {
		id, err := ResolveID(ctx, store, "99887766-0000-4000-8000-000000000003")
		require.NoError(t, err)
		assert.Equal(t, "99887766-0000-4000-8000-000000000003", id)
	})

	t.Run("full uuid not stored", func(t *testing.T) {
		_, err := ResolveID(ctx, store, "00000000-0000-4000-8000-000000000000")
		assert.True(t, IsNotFoundError(err))
	})

	t.Run("unique prefix", func(t *testing.T) {
		id, err := ResolveID(ctx, store, "998877")
		require.NoError(t, err)
		assert.Equal(t, "99887766-0000-4000-8000-000000000003", id)
	})

	t.Run("prefix is lowercased before scanning", func(t *testing.T) {
		id, err := ResolveID(ctx, store, "ABCDEF12-0000-4000-8000-0000000000")
		require.Error(t, err)
		assert.True(t, IsAmbiguousError(err))
		assert.Empty(t, id)
	})

	t.Run("too short", func(t *testing.T) {
		_, err := ResolveID(ctx, store, "abc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "at least 6 characters")
	})

	t.Run("no match", func(t *testing.T) {
		_, err := ResolveID(ctx, store, "ffffff")
		assert.True(t, IsNotFoundError(err))
		assert.Contains(t, err.Error(), "no reports found matching 'ffffff'")
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := ResolveID(ctx, store, "abcdef")
		require.Error(t, err)
		require.True(t, IsAmbiguousError(err))

		amb := err.(*AmbiguousError)
		assert.Len(t, amb.Matches, 2)
		assert.Contains(t, FormatAmbiguousError(amb), "Use a longer prefix")
	})
}

func TestFormatAmbiguousError_Truncates(t *testing.T) {
	var matches []string
	for i := 0; i < 12; i++ {
		matches = append(matches, fmt.Sprintf("id-%02d", i))
	}

	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "id-", Matches: matches})
	assert.Contains(t, msg, "matches 12 reports")
	assert.Contains(t, msg, "id-09")
	assert.NotContains(t, msg, "id-10")
	assert.Contains(t, msg, "...and 2 more")
}
