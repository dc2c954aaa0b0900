package user

import (
	"context"
	"errors"
	"sync"
	"testing"

	"travelbook/internal/logger"
	"travelbook/internal/types"
)

type memStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*User
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*User{}}
}

func (m *memStore) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.Username]; ok {
		return ErrDuplicate
	}
	m.nextID++
	u.ID = types.ID(m.nextID)
	cp := *u
	m.users[u.Username] = &cp
	return nil
}

func (m *memStore) GetByUsername(_ context.Context, username string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[username]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, username, role string) (string, error) {
	return username + ":" + role, nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemStore(), stubIssuer{}, logger.Nop())
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterCommand{
		Username: "yael",
		Name:     "Yael Cohen",
		Email:    "yael@example.com",
		Phone:    "050-1234567",
		Password: "correct-horse",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Role != RoleUser {
		t.Fatalf("expected default role user, got %s", u.Role)
	}
	if u.PasswordHash == "correct-horse" || u.PasswordHash == "" {
		t.Fatal("expected password to be hashed")
	}

	res, err := svc.Login(ctx, "yael", "correct-horse")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.Token != "yael:user" {
		t.Fatalf("unexpected token %q", res.Token)
	}

	if _, err := svc.Login(ctx, "yael", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := NewService(newMemStore(), stubIssuer{}, logger.Nop())
	ctx := context.Background()

	cases := []RegisterCommand{
		{Username: "", Name: "x", Email: "x@example.com", Password: "longenough"},
		{Username: "x", Name: "x", Email: "not-an-email", Password: "longenough"},
		{Username: "x", Name: "x", Email: "x@example.com", Password: "short"},
		{Username: "x", Name: "x", Email: "x@example.com", Password: "longenough", Role: "pilot"},
	}
	for i, cmd := range cases {
		if _, err := svc.Register(ctx, cmd); !errors.Is(err, ErrBadRequest) {
			t.Errorf("case %d: expected ErrBadRequest, got %v", i, err)
		}
	}
}

func TestRegisterDuplicate(t *testing.T) {
	svc := NewService(newMemStore(), stubIssuer{}, logger.Nop())
	ctx := context.Background()
	cmd := RegisterCommand{Username: "omer", Name: "Omer", Email: "omer@example.com", Password: "longenough", Role: RoleDriver}
	if _, err := svc.Register(ctx, cmd); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := svc.Register(ctx, cmd); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}
