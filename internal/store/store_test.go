package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "open test store")
	t.Cleanup(func() { s.Close() })
	return s
}

// put stores rec for its key, replacing whatever is there.
func put(t *testing.T, repo ProgressRepo, rec ProgressRecord) {
	t.Helper()
	_, err := repo.Update(context.Background(), rec.LearnerID, rec.ItemID,
		func(*ProgressRecord) (*ProgressRecord, *AttemptEventData, error) {
			return &rec, nil, nil
		})
	require.NoError(t, err)
}

func record(learner, item string, next time.Time) ProgressRecord {
	return ProgressRecord{
		LearnerID:      learner,
		ItemID:         item,
		EaseFactor:     2.5,
		Repetition:     1,
		IntervalDays:   1,
		NextReviewAt:   next,
		LastReviewedAt: t0,
		CreatedAt:      t0,
		UpdatedAt:      t0,
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		require.NoError(t, err, "PRAGMA %s", tt.pragma)
		assert.Equal(t, tt.want, got, "PRAGMA %s", tt.pragma)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(path)
	require.NoError(t, err)
	put(t, s.ProgressRepo(), record("ada", "q1", t0))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	rec, err := s.ProgressRepo().Get(context.Background(), "ada", "q1")
	require.NoError(t, err)
	assert.Equal(t, "q1", rec.ItemID)
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.ProgressRepo().Get(context.Background(), "ada", "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdate_InsertThenUpdate(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	var seen []*ProgressRecord
	fn := func(cur *ProgressRecord) (*ProgressRecord, *AttemptEventData, error) {
		seen = append(seen, cur)
		next := record("", "", t0.AddDate(0, 0, 1))
		if cur != nil {
			next.Repetition = cur.Repetition + 1
			next.CorrectCount = cur.CorrectCount + 1
			next.CreatedAt = t0.Add(time.Hour) // ignored on update
		}
		next.UpdatedAt = t0.Add(time.Duration(len(seen)) * time.Minute)
		return &next, nil, nil
	}

	_, err := repo.Update(ctx, "ada", "q1", fn)
	require.NoError(t, err)
	_, err = repo.Update(ctx, "ada", "q1", fn)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Nil(t, seen[0], "first update sees no record")
	require.NotNil(t, seen[1])
	assert.Equal(t, 1, seen[1].Repetition)

	got, err := repo.Get(ctx, "ada", "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Repetition)
	assert.Equal(t, 1, got.CorrectCount)
	assert.True(t, got.CreatedAt.Equal(t0), "created_at preserved, got %v", got.CreatedAt)
	assert.True(t, got.UpdatedAt.Equal(t0.Add(2*time.Minute)))
}

func TestUpdate_RoundTripsTimestamps(t *testing.T) {
	s := openTestStore(t)
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	next := time.Date(2024, 3, 15, 9, 0, 0, 123456789, ny)
	put(t, s.ProgressRepo(), record("ada", "q1", next))

	got, err := s.ProgressRepo().Get(context.Background(), "ada", "q1")
	require.NoError(t, err)
	assert.True(t, got.NextReviewAt.Equal(next), "got %v want %v", got.NextReviewAt, next)
}

func TestUpdate_FarFutureReviewStaysReadable(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	far := time.Date(17565, 3, 8, 0, 0, 0, 0, time.UTC)
	put(t, repo, record("ada", "far", far))
	put(t, repo, record("ada", "near", t0))

	got, err := repo.Get(ctx, "ada", "far")
	require.NoError(t, err)
	assert.True(t, got.NextReviewAt.Equal(far), "got %v", got.NextReviewAt)

	due, err := repo.Due(ctx, "ada", t0.AddDate(0, 0, 1), 0)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "near", due[0].ItemID)

	sum, err := repo.Summary(ctx, "ada", t0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Due)

	due, err = repo.Due(ctx, "ada", far, 0)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestDue_ComparesSubsecondTimes(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	now := t0.Add(500 * time.Millisecond)

	put(t, repo, record("ada", "before", t0.Add(499*time.Millisecond)))
	put(t, repo, record("ada", "exact", now))
	put(t, repo, record("ada", "after", t0.Add(501*time.Millisecond)))

	due, err := repo.Due(context.Background(), "ada", now, 0)
	require.NoError(t, err)
	var ids []string
	for _, r := range due {
		ids = append(ids, r.ItemID)
	}
	assert.Equal(t, []string{"before", "exact"}, ids)
}

func TestUpdate_FuncErrorRollsBack(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	boom := errors.New("boom")

	_, err := repo.Update(context.Background(), "ada", "q1",
		func(*ProgressRecord) (*ProgressRecord, *AttemptEventData, error) {
			return nil, nil, boom
		})
	require.ErrorIs(t, err, boom)

	_, err = repo.Get(context.Background(), "ada", "q1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdate_AppendsAttemptEvent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rt := 1500 * time.Millisecond

	for i, correct := range []bool{true, false} {
		answeredAt := t0.Add(time.Duration(i) * time.Hour)
		_, err := s.ProgressRepo().Update(ctx, "ada", "q1",
			func(*ProgressRecord) (*ProgressRecord, *AttemptEventData, error) {
				rec := record("ada", "q1", answeredAt.AddDate(0, 0, 1))
				ev := &AttemptEventData{
					LearnerID:    "ada",
					ItemID:       "q1",
					Correct:      correct,
					AnsweredAt:   answeredAt,
					EaseBefore:   2.5,
					EaseAfter:    2.5,
					NextReviewAt: rec.NextReviewAt,
				}
				if correct {
					ev.ResponseTime = &rt
				}
				return &rec, ev, nil
			})
		require.NoError(t, err)
	}

	events, err := s.EventRepo().QueryAttempts(ctx, "ada", "q1", QueryOpts{})
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Newest first.
	assert.False(t, events[0].Correct)
	assert.Nil(t, events[0].ResponseTime)
	assert.True(t, events[1].Correct)
	require.NotNil(t, events[1].ResponseTime)
	assert.Equal(t, rt, *events[1].ResponseTime)
	assert.Greater(t, events[0].Sequence, events[1].Sequence)
	assert.NotEqual(t, events[0].ID, events[1].ID)
	assert.True(t, events[1].AnsweredAt.Equal(t0))

	limited, err := s.EventRepo().QueryAttempts(ctx, "ada", "q1", QueryOpts{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, events[0].ID, limited[0].ID)

	after, err := s.EventRepo().QueryAttempts(ctx, "ada", "q1", QueryOpts{After: events[1].Sequence})
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, events[0].ID, after[0].ID)

	upTo, err := s.EventRepo().QueryAttempts(ctx, "ada", "q1", QueryOpts{To: t0})
	require.NoError(t, err)
	require.Len(t, upTo, 1)
	assert.Equal(t, events[1].ID, upTo[0].ID)
}

func TestUpdate_ConcurrentSameKeyNoLostUpdates(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Update(ctx, "ada", "q1", func(cur *ProgressRecord) (*ProgressRecord, *AttemptEventData, error) {
				next := record("ada", "q1", t0)
				if cur != nil {
					next.CorrectCount = cur.CorrectCount
				}
				next.CorrectCount++
				return &next, nil, nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.Get(ctx, "ada", "q1")
	require.NoError(t, err)
	assert.Equal(t, workers, got.CorrectCount)
}

func TestDue_FiltersAndOrders(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	now := t0.AddDate(0, 0, 10)

	put(t, repo, record("ada", "late", now.AddDate(0, 0, -5)))
	put(t, repo, record("ada", "exact", now))
	put(t, repo, record("ada", "future", now.Add(time.Second)))
	put(t, repo, record("ada", "later", now.AddDate(0, 0, -1)))
	put(t, repo, record("bob", "other", now.AddDate(0, 0, -9)))

	due, err := repo.Due(context.Background(), "ada", now, 0)
	require.NoError(t, err)

	var ids []string
	for _, r := range due {
		ids = append(ids, r.ItemID)
	}
	assert.Equal(t, []string{"late", "later", "exact"}, ids)

	due, err = repo.Due(context.Background(), "ada", now, 2)
	require.NoError(t, err)
	assert.Len(t, due, 2)
}

func TestSummary(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	now := t0.AddDate(0, 0, 3)

	a := record("ada", "q1", now.AddDate(0, 0, -1))
	a.CorrectCount, a.IncorrectCount = 3, 1
	b := record("ada", "q2", now.AddDate(0, 0, 4))
	b.CorrectCount, b.IncorrectCount = 2, 0
	put(t, repo, a)
	put(t, repo, b)
	put(t, repo, record("bob", "q1", now.AddDate(0, 0, -1)))

	sum, err := repo.Summary(context.Background(), "ada", now)
	require.NoError(t, err)
	assert.Equal(t, &ProgressSummary{ItemsStudied: 2, Due: 1, TotalCorrect: 5, TotalIncorrect: 1}, sum)

	empty, err := repo.Summary(context.Background(), "nobody", now)
	require.NoError(t, err)
	assert.Equal(t, &ProgressSummary{}, empty)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	repo := s.ProgressRepo()
	ctx := context.Background()

	put(t, repo, record("ada", "q1", t0))
	require.NoError(t, repo.Delete(ctx, "ada", "q1"))

	_, err := repo.Get(ctx, "ada", "q1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "ada", "q1"), ErrNotFound)
}

func TestWithTxLock(t *testing.T) {
	assert.Equal(t, "a.db?_txlock=immediate", withTxLock("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_txlock=immediate", withTxLock("file:a.db?mode=rwc"))
	assert.Equal(t, "a.db?_txlock=deferred", withTxLock("a.db?_txlock=deferred"))
}

func TestDefaultDBPath_IgnoresKnowingDB(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("KNOWING_DB", filepath.Join(dir, "elsewhere.db"))
	t.Setenv("XDG_DATA_HOME", dir)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "knowing", "knowing.db"), got)
}

func TestDefaultDBPath_XDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	got, err := DefaultDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "knowing", "knowing.db"), got)
}
