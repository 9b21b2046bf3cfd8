package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/models"
	"campus_shuttle/internal/store"
)

// OpeningBalance is credited to every new student wallet.
const OpeningBalance int64 = 500

type RegisterInput struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=6"`
	UniversityCode string `json:"university_code" binding:"required"`
}

type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

type AuthService struct {
	store  store.Store
	tokens *auth.TokenManager
	Now    func() time.Time
}

func NewAuthService(s store.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: s, tokens: tokens, Now: time.Now}
}

// Register creates a user in the university named by its code. The email
// domain must match the university; listed admin emails become admins and
// everyone else a student with the opening balance.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	code := strings.TrimSpace(in.UniversityCode)
	if name == "" || email == "" || in.Password == "" || code == "" {
		return nil, ValidationError{Msg: "All fields are required"}
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, RuleError{Msg: "User already exists"}
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	univ, err := s.store.GetUniversityByCode(ctx, code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ValidationError{Msg: "University does not exist"}
	}
	if err != nil {
		return nil, err
	}
	if !univ.AcceptsEmail(email) {
		return nil, ValidationError{Msg: fmt.Sprintf("Email must belong to the %s domain", univ.Domain)}
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UniversityID: univ.ID,
		Name:         name,
		Email:        email,
		Password:     hashed,
		Role:         models.RoleStudent,
	}
	if univ.IsAdminEmail(email) {
		user.Role = models.RoleAdmin
	}

	err = s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.CreateUser(ctx, &user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return RuleError{Msg: "User already exists", Err: err}
			}
			return err
		}
		if user.Role != models.RoleStudent {
			return nil
		}
		if _, err := applyWalletChange(ctx, tx, user.ID, OpeningBalance, models.MethodAdmin, "Initial wallet balance", s.Now()); err != nil {
			return err
		}
		user.WalletBalance = OpeningBalance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ValidationError{Msg: "Email and password are required"}
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ValidationError{Msg: "User not found. Please register first."}
	}
	if err != nil {
		return nil, err
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, ValidationError{Msg: "Invalid credentials"}
	}

	token, expiresAt, err := s.tokens.Generate(*user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}
