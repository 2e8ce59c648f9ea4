package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetplanner/internal/core"
)

const userColumns = `id, name, email, password_hash, is_verified, verification_token,
	phone_number, avatar_url, currency, created_at`

type CreateUserParams struct {
	Name              string
	Email             string
	PasswordHash      string
	VerificationToken *string
	Verified          bool
}

type UpdateProfileParams struct {
	UserID      int64
	Name        string
	PhoneNumber *string
	AvatarURL   *string
}

func scanUser(row rowScanner) (core.User, error) {
	var (
		u        core.User
		token    sql.NullString
		phone    sql.NullString
		avatar   sql.NullString
		verified int64
		created  timestamp
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &verified, &token,
		&phone, &avatar, &u.Currency, &created); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = created.Time
	u.IsVerified = verified != 0
	u.VerificationToken = nullableString(token)
	u.PhoneNumber = nullableString(phone)
	u.AvatarURL = nullableString(avatar)
	return u, nil
}

func (q *Queries) CreateUser(ctx context.Context, p CreateUserParams) (core.User, error) {
	row := q.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password_hash, verification_token, is_verified)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		p.Name, core.NormalizeEmail(p.Email), p.PasswordHash, p.VerificationToken, p.Verified,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) && violates(err, "users.email") {
			return core.User{}, core.ErrDuplicateEmail
		}
		return core.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (q *Queries) GetUserByID(ctx context.Context, id int64) (core.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return q.userResult(row, "get user by id")
}

// GetUserByEmail looks a user up case-insensitively.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`,
		core.NormalizeEmail(email))
	return q.userResult(row, "get user by email")
}

func (q *Queries) GetUserByVerificationToken(ctx context.Context, token string) (core.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = ?`, token)
	return q.userResult(row, "get user by verification token")
}

func (q *Queries) userResult(row *sql.Row, op string) (core.User, error) {
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.ErrUserNotFound
	}
	if err != nil {
		return core.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}

// MarkUserVerified flags the account as verified and consumes its one-time
// token. It reports ErrUserNotFound when no row changed.
func (q *Queries) MarkUserVerified(ctx context.Context, id int64) error {
	res, err := q.db.ExecContext(ctx,
		`UPDATE users SET is_verified = 1, verification_token = NULL WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark user verified: %w", err)
	}
	return expectAffected(res, core.ErrUserNotFound)
}

func (q *Queries) UpdateProfile(ctx context.Context, p UpdateProfileParams) (core.User, error) {
	row := q.db.QueryRowContext(ctx,
		`UPDATE users SET name = ?, phone_number = ?, avatar_url = ?
		 WHERE id = ?
		 RETURNING `+userColumns,
		p.Name, p.PhoneNumber, p.AvatarURL, p.UserID,
	)
	u, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) && violates(err, "users.phone_number") {
			return core.User{}, core.ErrDuplicatePhone
		}
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, fmt.Errorf("update profile: %w", err)
	}
	return u, nil
}
