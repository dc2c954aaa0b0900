// README: Payment service tests with a fake gateway and an in-memory ledger.
package payment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"travelbook/internal/logger"
	"travelbook/internal/types"
)

type fakeGateway struct {
	capture *Capture
	err     error
	calls   int
}

func (g *fakeGateway) Capture(ctx context.Context, id string) (*Capture, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	c := *g.capture
	c.PayPalOrderID = id
	return &c, nil
}

type memLedger struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemLedger() *memLedger { return &memLedger{entries: map[string]string{}} }

func (l *memLedger) Claim(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[id]; ok {
		return false, nil
	}
	l.entries[id] = claimPending
	return true, nil
}

func (l *memLedger) Release(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, id)
	return nil
}

func (l *memLedger) Bind(ctx context.Context, id string, orderID types.ID) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[id]; !ok {
		return errors.New("not claimed")
	}
	l.entries[id] = orderID.String()
	return nil
}

var quote = types.Money{Amount: 50000, Currency: "ILS"}

func completed(amount int64) *Capture {
	return &Capture{Status: StatusCompleted, CaptureID: "cap-1", Amount: types.Money{Amount: amount, Currency: "ILS"}}
}

func TestService_CaptureAndBind(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(&fakeGateway{capture: completed(50000)}, ledger, logger.Nop())
	ctx := context.Background()

	c, err := svc.Capture(ctx, "PP-1", quote)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if c.CaptureID != "cap-1" {
		t.Fatalf("unexpected capture %+v", c)
	}
	if err := svc.Bind(ctx, "PP-1", 42); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if ledger.entries["PP-1"] != "42" {
		t.Fatalf("ledger entry = %q", ledger.entries["PP-1"])
	}
}

func TestService_RejectsReuse(t *testing.T) {
	gw := &fakeGateway{capture: completed(50000)}
	svc := NewService(gw, newMemLedger(), logger.Nop())
	ctx := context.Background()

	if _, err := svc.Capture(ctx, "PP-1", quote); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	if _, err := svc.Capture(ctx, "PP-1", quote); !errors.Is(err, ErrAlreadyUsed) {
		t.Fatalf("expected already used, got %v", err)
	}
	if gw.calls != 1 {
		t.Fatalf("gateway called %d times", gw.calls)
	}
}

func TestService_GatewayFailureReleasesClaim(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(&fakeGateway{err: errors.New("timeout")}, ledger, logger.Nop())

	if _, err := svc.Capture(context.Background(), "PP-1", quote); !errors.Is(err, ErrGateway) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if _, ok := ledger.entries["PP-1"]; ok {
		t.Fatal("claim not released after gateway failure")
	}
}

func TestService_NotCompletedReleasesClaim(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(&fakeGateway{capture: &Capture{Status: "PENDING"}}, ledger, logger.Nop())

	if _, err := svc.Capture(context.Background(), "PP-1", quote); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected not completed, got %v", err)
	}
	if len(ledger.entries) != 0 {
		t.Fatal("claim not released")
	}
}

func TestService_InsufficientKeepsClaim(t *testing.T) {
	ledger := newMemLedger()
	svc := NewService(&fakeGateway{capture: completed(100)}, ledger, logger.Nop())

	if _, err := svc.Capture(context.Background(), "PP-1", quote); !errors.Is(err, ErrInsufficient) {
		t.Fatalf("expected insufficient, got %v", err)
	}
	if ledger.entries["PP-1"] != claimPending {
		t.Fatal("charged payment must stay claimed")
	}
}

func TestService_EmptyID(t *testing.T) {
	svc := NewService(&fakeGateway{}, newMemLedger(), logger.Nop())
	if _, err := svc.Capture(context.Background(), "", quote); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
}
