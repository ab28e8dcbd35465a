package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{studentsTable, propertiesTable, eventsTable, "global_sequence"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Fatalf("query sqlite_master for %s: %v", table, err)
		}
		if name != table {
			t.Errorf("table name = %q, want %q", name, table)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Should be monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestPropertyGetMissing(t *testing.T) {
	s := openTestStore(t)
	p, err := s.PropertyRepo().Get(context.Background(), "alice", "linear-course-completion")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestPropertyCreatePutGet(t *testing.T) {
	s := openTestStore(t)
	repo := s.PropertyRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, "alice", "progress")
	require.NoError(t, err)
	assert.Equal(t, "", created.Value)

	got, err := repo.Get(ctx, "alice", "progress")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "", got.Value)

	created.Value = `{"u.1":1}`
	require.NoError(t, repo.Put(ctx, created))

	got, err = repo.Get(ctx, "alice", "progress")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, `{"u.1":1}`, got.Value)

	// Other names and students are unaffected.
	other, err := repo.Get(ctx, "bob", "progress")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func TestPropertyCreateDuplicateFails(t *testing.T) {
	s := openTestStore(t)
	repo := s.PropertyRepo()
	ctx := context.Background()

	_, err := repo.Create(ctx, "alice", "progress")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "alice", "progress")
	assert.Error(t, err)
}

func TestPropertyScanPages(t *testing.T) {
	s := openTestStore(t)
	repo := s.PropertyRepo()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Put(ctx, &Property{
			StudentID: fmt.Sprintf("s%d", i),
			Name:      "progress",
			Value:     "{}",
		}))
	}
	require.NoError(t, repo.Put(ctx, &Property{StudentID: "s9", Name: "other", Value: "{}"}))

	var ids []string
	opts := ScanOpts{Limit: 2}
	pages := 0
	for {
		page, err := repo.Scan(ctx, "progress", opts)
		require.NoError(t, err)
		pages++
		for _, p := range page.Items {
			ids = append(ids, p.StudentID)
		}
		if page.Next == "" {
			break
		}
		opts.Cursor = page.Next
	}

	assert.Equal(t, []string{"s0", "s1", "s2", "s3", "s4"}, ids)
	assert.Equal(t, 3, pages)
}

func TestStudentPutGetAndScores(t *testing.T) {
	s := openTestStore(t)
	repo := s.StudentRepo()
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, &Student{ID: "alice", Name: "Alice", Enrolled: true}))

	got, err := repo.Get(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Enrolled)
	assert.Empty(t, got.Scores)

	require.NoError(t, repo.SetScore(ctx, "alice", "Pre", 80))
	require.NoError(t, repo.SetScore(ctx, "alice", "Mid", 65.5))

	got, err = repo.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Pre": 80, "Mid": 65.5}, got.Scores)

	err = repo.SetScore(ctx, "nobody", "Pre", 10)
	assert.ErrorIs(t, err, ErrStudentNotFound)

	missing, err := repo.Get(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStudentScan(t *testing.T) {
	s := openTestStore(t)
	repo := s.StudentRepo()
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, repo.Put(ctx, &Student{ID: id, Enrolled: id != "b"}))
	}

	page, err := repo.Scan(ctx, ScanOpts{})
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "a", page.Items[0].ID)
	assert.False(t, page.Items[1].Enrolled)
	assert.Empty(t, page.Next)
}

func TestEventAppendAndScan(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		seq, err := repo.Append(ctx, EventData{
			StudentID: "alice",
			Source:    "attempt-activity",
			Data:      fmt.Sprintf(`{"index":%d}`, i),
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	page, err := repo.Scan(ctx, ScanOpts{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "2", page.Next)

	page, err = repo.Scan(ctx, ScanOpts{Limit: 2, Cursor: page.Next})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, `{"index":2}`, page.Items[0].Data)
	assert.Empty(t, page.Next)

	_, err = repo.Scan(ctx, ScanOpts{Cursor: "bogus"})
	assert.Error(t, err)
}
