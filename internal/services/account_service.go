package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type TokenIssuer interface {
	Issue(who core.Identity) (string, time.Time, error)
}

// Session is the result of a successful login.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	User      core.Identity `json:"user"`
}

// ProfileInput holds the editable profile fields. Blank optional strings
// are stored as NULL.
type ProfileInput struct {
	Name        string
	PhoneNumber *string
	AvatarURL   *string
}

// AccountService handles registration, email verification, login and
// profile edits.
type AccountService struct {
	storage  *storage.SQLiteRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	notifier Notifier
	links    Links
}

func NewAccountService(storage *storage.SQLiteRepository, hasher PasswordHasher, tokens TokenIssuer, notifier Notifier, links Links) *AccountService {
	return &AccountService{
		storage:  storage,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		links:    links,
	}
}

func credentials(name, email, password string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = core.NormalizeEmail(email)
	switch {
	case name == "":
		return "", "", core.ErrEmptyName
	case email == "":
		return "", "", core.ErrEmptyEmail
	case password == "":
		return "", "", core.Invalid("password is required")
	}
	return name, email, nil
}

// Register creates an unverified account and sends its verification link.
// The user row and the notification hand-off share one transaction.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (core.User, error) {
	name, email, err := credentials(name, email, password)
	if err != nil {
		return core.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return core.User{}, err
	}
	token, err := newToken()
	if err != nil {
		return core.User{}, err
	}

	var user core.User
	err = s.storage.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		user, err = tx.CreateUser(ctx, storage.CreateUserParams{
			Name:              name,
			Email:             email,
			PasswordHash:      hash,
			VerificationToken: &token,
		})
		if err != nil {
			return err
		}
		return s.notifier.Notify(ctx, core.Notification{
			Kind:          core.NotifyVerifyEmail,
			To:            user.Email,
			RecipientName: user.Name,
			Link:          s.links.VerifyEmail(token),
		})
	})
	if err != nil {
		return core.User{}, fmt.Errorf("register: %w", err)
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

// CreateVerifiedUser creates an account that can log in right away. It is
// meant for operators and sends no email.
func (s *AccountService) CreateVerifiedUser(ctx context.Context, name, email, password string) (core.User, error) {
	name, email, err := credentials(name, email, password)
	if err != nil {
		return core.User{}, err
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return core.User{}, err
	}
	return s.storage.Queries().CreateUser(ctx, storage.CreateUserParams{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Verified:     true,
	})
}

// Login checks the password first and the verification state second, so
// an unverified account is only revealed to someone who knows its password.
func (s *AccountService) Login(ctx context.Context, email, password string) (Session, error) {
	user, err := s.storage.Queries().GetUserByEmail(ctx, email)
	if errors.Is(err, core.ErrUserNotFound) {
		return Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, core.ErrInvalidCredentials
	}
	if !user.IsVerified {
		return Session{}, core.ErrEmailNotVerified
	}

	who := core.Identity{UserID: user.ID, Name: user.Name, Email: user.Email}
	token, exp, err := s.tokens.Issue(who)
	if err != nil {
		return Session{}, err
	}
	return Session{Token: token, ExpiresAt: exp, User: who}, nil
}

// VerifyEmail consumes a verification token. A token works exactly once.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return core.ErrInvalidVerificationToken
	}
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		user, err := tx.GetUserByVerificationToken(ctx, token)
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrInvalidVerificationToken
		}
		if err != nil {
			return err
		}
		return tx.MarkUserVerified(ctx, user.ID)
	})
	if err != nil {
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// VerifyByEmail marks the account registered with email as verified without
// a token.
func (s *AccountService) VerifyByEmail(ctx context.Context, email string) (core.User, error) {
	var user core.User
	err := s.storage.InTx(ctx, func(tx *storage.Tx) error {
		var err error
		if user, err = tx.GetUserByEmail(ctx, email); err != nil {
			return err
		}
		if err := tx.MarkUserVerified(ctx, user.ID); err != nil {
			return err
		}
		user, err = tx.GetUserByID(ctx, user.ID)
		return err
	})
	if err != nil {
		return core.User{}, fmt.Errorf("verify user: %w", err)
	}
	return user, nil
}

func (s *AccountService) Profile(ctx context.Context, actor core.Identity) (core.User, error) {
	return s.storage.Queries().GetUserByID(ctx, actor.UserID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, actor core.Identity, in ProfileInput) (core.User, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return core.User{}, core.ErrEmptyName
	}
	return s.storage.Queries().UpdateProfile(ctx, storage.UpdateProfileParams{
		UserID:      actor.UserID,
		Name:        name,
		PhoneNumber: blankToNil(in.PhoneNumber),
		AvatarURL:   blankToNil(in.AvatarURL),
	})
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
