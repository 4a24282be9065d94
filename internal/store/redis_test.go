package store

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisKV(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(client, "tuiquiz:")
	defer func() {
		_ = kv.Close()
	}()
	ctx := context.Background()

	if _, ok, err := kv.Get(ctx, "quizState"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}
	if err := kv.Set(ctx, "quizState", `{"score":3}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !mr.Exists("tuiquiz:quizState") {
		t.Fatalf("expected prefixed redis key to be set")
	}
	v, ok, err := kv.Get(ctx, "quizState")
	if err != nil || !ok || v != `{"score":3}` {
		t.Fatalf("unexpected get result %q ok=%v err=%v", v, ok, err)
	}
	if err := kv.Delete(ctx, "quizState"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("tuiquiz:quizState") {
		t.Fatalf("expected redis key to be removed")
	}
}
