// README: Redis ledger tests; skipped unless TRAVELBOOK_TEST_REDIS is set.
package payment

import (
	"context"
	"os"
	"testing"

	"travelbook/internal/infra"
)

func TestRedisLedger(t *testing.T) {
	addr := os.Getenv("TRAVELBOOK_TEST_REDIS")
	if addr == "" {
		t.Skip("TRAVELBOOK_TEST_REDIS not set; skipping redis ledger test")
	}
	ctx := context.Background()
	rdb, err := infra.NewRedis(ctx, addr, "")
	if err != nil {
		t.Fatalf("redis: %v", err)
	}
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisLedger(rdb)
	id := "test-" + t.Name()
	_ = l.Release(ctx, id)

	ok, err := l.Claim(ctx, id)
	if err != nil || !ok {
		t.Fatalf("first claim: ok=%v err=%v", ok, err)
	}
	ok, err = l.Claim(ctx, id)
	if err != nil || ok {
		t.Fatalf("second claim must fail: ok=%v err=%v", ok, err)
	}
	if err := l.Bind(ctx, id, 77); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if v, err := l.Lookup(ctx, id); err != nil || v != "77" {
		t.Fatalf("lookup = %q, %v", v, err)
	}
	if err := l.Release(ctx, id); err != nil {
		t.Fatalf("release: %v", err)
	}
	if v, err := l.Lookup(ctx, id); err != nil || v != "" {
		t.Fatalf("lookup after release = %q, %v", v, err)
	}
}
