package report

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dyluth/holdcheck/internal/diag"
	"github.com/dyluth/holdcheck/internal/verify"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := NewStore(&redis.Options{Addr: mr.Addr()}, "test-ns")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, mr
}

func failingResult(n int) verify.Result {
	res := verify.Result{Hands: 3}
	for i := 0; i < n; i++ {
		res.Diagnostics = append(res.Diagnostics, diag.New(diag.KindLedger, 1, "Chip conservation violated at hand %d", 1))
	}
	return res
}

func newTestReport(t *testing.T, input string, createdMs int64, diags int) *Report {
	t.Helper()
	r := New(input, 25, failingResult(diags), time.UnixMilli(createdMs))
	return r
}

func TestNew(t *testing.T) {
	now := time.UnixMilli(1700000000000)

	t.Run("clean run", func(t *testing.T) {
		r := New("hands.jsonl", 25, verify.Result{Hands: 12}, now)
		_, err := uuid.Parse(r.ID)
		require.NoError(t, err)
		assert.True(t, r.OK)
		assert.Equal(t, 12, r.Hands)
		assert.Equal(t, 0, r.DiagnosticCount)
		assert.Empty(t, r.CountsByKind)
		assert.Equal(t, int64(1700000000000), r.CreatedAtMs)
		assert.False(t, r.Truncated())
		require.NoError(t, r.Validate())
	})

	t.Run("stored diagnostics are capped", func(t *testing.T) {
		r := New("hands.jsonl", 25, failingResult(MaxStoredDiagnostics+5), now)
		assert.False(t, r.OK)
		assert.Len(t, r.Diagnostics, MaxStoredDiagnostics)
		assert.Equal(t, MaxStoredDiagnostics+5, r.DiagnosticCount)
		assert.Equal(t, MaxStoredDiagnostics+5, r.CountsByKind[diag.KindLedger])
		assert.True(t, r.Truncated())
		require.NoError(t, r.Validate())
	})
}

func TestReport_Validate(t *testing.T) {
	valid := func() *Report {
		return New("hands.jsonl", 25, verify.Result{Hands: 1}, time.UnixMilli(1))
	}

	tests := []struct {
		name    string
		mutate  func(r *Report)
		wantErr string
	}{
		{"bad id", func(r *Report) { r.ID = "nope" }, "valid UUID"},
		{"empty input", func(r *Report) { r.Input = "" }, "input cannot be empty"},
		{"negative hands", func(r *Report) { r.Hands = -1 }, "hands must be >= 0"},
		{"count below stored", func(r *Report) {
			r.Diagnostics = []diag.Diagnostic{{Kind: diag.KindField, Message: "x"}}
			r.OK = false
		}, "below the 1 stored"},
		{"ok disagrees with count", func(r *Report) { r.OK = false }, "ok must be true"},
		{"missing timestamp", func(r *Report) { r.CreatedAtMs = 0 }, "created_at_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid()
			tt.mutate(r)
			err := r.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHashRoundTrip(t *testing.T) {
	r := newTestReport(t, "logs/day1.jsonl.zst", 1700000000000, 2)

	hash, err := ToHash(r)
	require.NoError(t, err)
	assert.Equal(t, "false", hash["ok"])

	// Redis hands every field back as a string
	strHash := make(map[string]string, len(hash))
	for k, v := range hash {
		switch val := v.(type) {
		case string:
			strHash[k] = val
		case int:
			strHash[k] = strconv.Itoa(val)
		case int64:
			strHash[k] = strconv.FormatInt(val, 10)
		}
	}

	back, err := FromHash(strHash)
	require.NoError(t, err)
	assert.Equal(t, r, back)
}

func TestFromHash_Malformed(t *testing.T) {
	_, err := FromHash(map[string]string{"hands": "x", "ok": "true", "diagnostic_count": "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid hands field")

	_, err = FromHash(map[string]string{"hands": "1", "ok": "maybe", "diagnostic_count": "0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ok field")

	_, err = FromHash(map[string]string{"hands": "1", "ok": "true", "diagnostic_count": "0", "diagnostics": "{"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagnostics")
}

func TestSchemaKeys(t *testing.T) {
	assert.Equal(t, "holdcheck:prod:report:abc", ReportKey("prod", "abc"))
	assert.Equal(t, "holdcheck:prod:report:", ReportKeyPrefix("prod"))
	assert.Equal(t, "holdcheck:prod:reports", IndexKey("prod"))
	assert.Equal(t, "holdcheck:prod:report_events", EventsChannel("prod"))
}

func TestNewStore_EmptyNamespace(t *testing.T) {
	_, err := NewStore(&redis.Options{Addr: "localhost:0"}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "namespace cannot be empty")
}

func TestOpen_BadURL(t *testing.T) {
	_, err := Open("http://nope", "ns")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestStore_SaveAndGet(t *testing.T) {
	store, mr := setupTestStore(t)
	ctx := context.Background()

	r := newTestReport(t, "hands.jsonl", 1700000000000, 1)
	require.NoError(t, store.Save(ctx, r))

	assert.True(t, mr.Exists(ReportKey("test-ns", r.ID)))

	got, err := store.Get(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, r, got)

	ids, err := store.IDsBetween(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store, _ := setupTestStore(t)
	r := newTestReport(t, "hands.jsonl", 1700000000000, 0)
	r.Input = ""

	err := store.Save(context.Background(), r)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid report")
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := setupTestStore(t)

	_, err := store.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestStore_IDsBetween(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	old := newTestReport(t, "a.jsonl", 1000, 0)
	mid := newTestReport(t, "b.jsonl", 2000, 0)
	recent := newTestReport(t, "c.jsonl", 3000, 0)
	for _, r := range []*Report{recent, old, mid} {
		require.NoError(t, store.Save(ctx, r))
	}

	ids, err := store.IDsBetween(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{old.ID, mid.ID, recent.ID}, ids)

	ids, err = store.IDsBetween(ctx, 1500, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{mid.ID, recent.ID}, ids)

	ids, err = store.IDsBetween(ctx, 1500, 2500)
	require.NoError(t, err)
	assert.Equal(t, []string{mid.ID}, ids)
}

func TestStore_ScanIDs(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx := context.Background()

	r := newTestReport(t, "a.jsonl", 1000, 0)
	require.NoError(t, store.Save(ctx, r))

	ids, err := store.ScanIDs(ctx, r.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, []string{r.ID}, ids)

	ids, err = store.ScanIDs(ctx, "zzzzzzzz")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_NamespaceIsolation(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	a, err := NewStore(&redis.Options{Addr: mr.Addr()}, "a")
	require.NoError(t, err)
	defer a.Close()
	b, err := NewStore(&redis.Options{Addr: mr.Addr()}, "b")
	require.NoError(t, err)
	defer b.Close()

	r := newTestReport(t, "a.jsonl", 1000, 0)
	require.NoError(t, a.Save(ctx, r))

	_, err = b.Get(ctx, r.ID)
	assert.True(t, IsNotFound(err))

	ids, err := b.IDsBetween(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestStore_Subscribe(t *testing.T) {
	store, _ := setupTestStore(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	sub, err := store.Subscribe(ctx)
	require.NoError(t, err)
	defer sub.Close()

	r := newTestReport(t, "live.jsonl", 1700000000000, 0)
	require.NoError(t, store.Save(ctx, r))

	select {
	case got := <-sub.Events():
		require.NotNil(t, got)
		assert.Equal(t, r.ID, got.ID)
		assert.Equal(t, "live.jsonl", got.Input)
	case err := <-sub.Errors():
		t.Fatalf("unexpected subscription error: %v", err)
	case <-ctx.Done():
		t.Fatal("timed out waiting for report event")
	}
}

func TestSubscription_CloseEndsEvents(t *testing.T) {
	store, _ := setupTestStore(t)

	sub, err := store.Subscribe(context.Background())
	require.NoError(t, err)
	require.NoError(t, sub.Close())

	select {
	case _, ok := <-sub.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("events channel was not closed")
	}
}
