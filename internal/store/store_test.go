package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/tuiquiz/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "tuiquiz.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestStoreKV(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	if _, ok, err := st.Get(ctx, "quizState"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := st.Set(ctx, "quizState", `{"score":1}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := st.Set(ctx, "quizState", `{"score":2}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := st.Get(ctx, "quizState")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if v != `{"score":2}` {
		t.Fatalf("unexpected value %q", v)
	}
	if err := st.Delete(ctx, "quizState"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := st.Get(ctx, "quizState"); ok {
		t.Fatalf("expected key to be deleted")
	}
	if err := st.Delete(ctx, "quizState"); err != nil {
		t.Fatalf("deleting a missing key should not fail: %v", err)
	}
}

func TestStoreAttempts(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		a := model.Attempt{
			ID:            string(rune('a' + i)),
			StartedAt:     base.Add(time.Duration(i) * time.Hour),
			EndedAt:       base.Add(time.Duration(i)*time.Hour + 5*time.Minute),
			Score:         i + 5,
			Total:         10,
			Reason:        model.ReasonAllQuestionsAnswered,
			TimeRemaining: 300,
		}
		if err := st.RecordAttempt(ctx, a); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	all, err := st.ListAttempts(ctx, 0)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(all))
	}
	if all[0].ID != "a" || all[2].ID != "c" {
		t.Fatalf("expected oldest first, got %+v", all)
	}
	if !all[1].EndedAt.Equal(base.Add(time.Hour + 5*time.Minute)) {
		t.Fatalf("unexpected ended_at %v", all[1].EndedAt)
	}
	if all[2].Reason != model.ReasonAllQuestionsAnswered {
		t.Fatalf("unexpected reason %q", all[2].Reason)
	}

	recent, err := st.ListAttempts(ctx, 2)
	if err != nil {
		t.Fatalf("list recent attempts: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "b" || recent[1].ID != "c" {
		t.Fatalf("unexpected recent attempts: %+v", recent)
	}
}

func TestMemoryKV(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if v, ok, _ := m.Get(ctx, "k"); !ok || v != "v" {
		t.Fatalf("unexpected get result %q %v", v, ok)
	}
	if err := m.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := m.Get(ctx, "k"); ok {
		t.Fatalf("expected key to be deleted")
	}
}
