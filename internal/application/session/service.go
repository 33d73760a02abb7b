package session

import (
	"context"
	"fmt"

	"github.com/go-iot-telemetry/internal/domain"
	"github.com/go-iot-telemetry/internal/pkg/id"
	"github.com/go-iot-telemetry/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	Bearer    string
	SessionID string
	User      *domain.User
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResult, error)
}

type userStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
}

type service struct {
	userRepo    userStore
	jwtProvider jwtSigner
}

func NewService(userRepo userStore, jwtProvider jwtSigner) Service {
	return &service{userRepo: userRepo, jwtProvider: jwtProvider}
}

// Login accepts a username or an email. Unknown users and wrong passwords
// get the same error.
func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.userRepo.GetByUsername(ctx, req.Username)
	if err != nil {
		u, err = s.userRepo.GetByEmail(ctx, req.Username)
		if err != nil {
			return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
		}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	sessionID := id.New()
	bearer, err := s.jwtProvider.Sign(u.UserID, u.Role, sessionID)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Bearer: bearer, SessionID: sessionID, User: u}, nil
}
