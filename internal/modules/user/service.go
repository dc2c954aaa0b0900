// README: Account service: registration with bcrypt hashes and password login issuing JWTs.
package user

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"travelbook/internal/logger"
)

var (
	ErrBadRequest         = errors.New("bad request")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
}

type TokenIssuer interface {
	Issue(userID int64, username, role string) (string, error)
}

type Service struct {
	store  Repository
	tokens TokenIssuer
	log    logger.ILogger
}

func NewService(store Repository, tokens TokenIssuer, log logger.ILogger) *Service {
	return &Service{store: store, tokens: tokens, log: log}
}

type RegisterCommand struct {
	Username string
	Name     string
	Email    string
	Phone    string
	Address  string
	Password string
	Role     Role
}

type LoginResult struct {
	Token string
	User  *User
}

func (s *Service) Register(ctx context.Context, cmd RegisterCommand) (*User, error) {
	cmd.Username = strings.TrimSpace(cmd.Username)
	cmd.Email = strings.TrimSpace(cmd.Email)
	if cmd.Role == "" {
		cmd.Role = RoleUser
	}
	if cmd.Username == "" || cmd.Name == "" || len(cmd.Password) < 8 || !cmd.Role.Valid() {
		return nil, ErrBadRequest
	}
	if _, err := mail.ParseAddress(cmd.Email); err != nil {
		return nil, ErrBadRequest
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cmd.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &User{
		Username:     cmd.Username,
		Name:         cmd.Name,
		Email:        cmd.Email,
		Phone:        cmd.Phone,
		Address:      cmd.Address,
		Role:         cmd.Role,
		PasswordHash: string(hash),
	}
	if err := s.store.Create(ctx, u); err != nil {
		if !errors.Is(err, ErrDuplicate) {
			s.log.Error("failed to create user", logger.String("username", u.Username), logger.Error(err))
		}
		return nil, err
	}
	s.log.Info("user registered", logger.Int64("user_id", int64(u.ID)), logger.String("role", string(u.Role)))
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.store.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(int64(u.ID), u.Username, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: u}, nil
}
