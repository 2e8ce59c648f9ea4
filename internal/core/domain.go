package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied to budgets and users created without one.
const DefaultCurrency = "EUR"

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRejected InvitationStatus = "rejected"
)

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

const (
	EntityBudget      EntityType = "BUDGET"
	EntityTransaction EntityType = "TRANSACTION"

	ActionUpdate Action = "UPDATE"
)

type (
	Role             string
	InvitationStatus string
	TransactionType  string
	EntityType       string
	Action           string

	// Identity is the acting user as resolved from a bearer token.
	Identity struct {
		UserID int64  `json:"id"`
		Name   string `json:"name"`
		Email  string `json:"email"`
	}

	User struct {
		ID                int64     `json:"id"`
		Name              string    `json:"name"`
		Email             string    `json:"email"`
		PasswordHash      string    `json:"-"`
		IsVerified        bool      `json:"is_verified"`
		VerificationToken *string   `json:"-"`
		PhoneNumber       *string   `json:"phone_number"`
		AvatarURL         *string   `json:"avatar_url"`
		Currency          string    `json:"currency"`
		CreatedAt         time.Time `json:"created_at"`
	}

	Budget struct {
		ID        int64     `json:"id"`
		Name      string    `json:"name"`
		Currency  string    `json:"currency"`
		CreatedAt time.Time `json:"created_at"`
	}

	Membership struct {
		UserID   int64     `json:"user_id"`
		BudgetID int64     `json:"budget_id"`
		Role     Role      `json:"role"`
		JoinedAt time.Time `json:"joined_at"`
	}

	// Member is a membership joined with the member's public profile.
	Member struct {
		ID        int64   `json:"id"`
		Name      string  `json:"name"`
		Email     string  `json:"email"`
		AvatarURL *string `json:"avatar_url"`
		Role      Role    `json:"role"`
	}

	Invitation struct {
		ID             int64            `json:"id"`
		BudgetID       int64            `json:"budget_id"`
		SenderID       int64            `json:"sender_id"`
		RecipientEmail string           `json:"recipient_email"`
		Token          string           `json:"-"`
		Status         InvitationStatus `json:"status"`
		CreatedAt      time.Time        `json:"created_at"`
		RespondedAt    *time.Time       `json:"responded_at,omitempty"`
		BudgetName     string           `json:"budget_name,omitempty"`
		SenderName     string           `json:"sender_name,omitempty"`
	}

	Category struct {
		ID            int64            `json:"id"`
		BudgetID      int64            `json:"budget_id"`
		Name          string           `json:"name"`
		MonthlyBudget *decimal.Decimal `json:"monthly_budget"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		BudgetID    int64           `json:"budget_id"`
		UserID      int64           `json:"user_id"`
		CategoryID  *int64          `json:"category_id"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
		Description string          `json:"description"`
		Date        Date            `json:"transaction_date"`
		CreatedAt   time.Time       `json:"created_at"`
		UserName    string          `json:"user_name,omitempty"`
	}

	// HistoryEntry is one immutable audit record.
	HistoryEntry struct {
		ID         int64      `json:"id"`
		BudgetID   int64      `json:"budget_id"`
		UserID     int64      `json:"user_id"`
		EntityType EntityType `json:"entity_type"`
		EntityID   int64      `json:"entity_id"`
		Action     Action     `json:"action"`
		Details    string     `json:"details"`
		CreatedAt  time.Time  `json:"created_at"`
		UserName   string     `json:"user_name,omitempty"`
	}
)

var (
	ErrEmptyName  = &Error{KindValidation, "name is required"}
	ErrEmptyEmail = &Error{KindValidation, "email is required"}
)

// NormalizeEmail lower-cases and trims an email address. Emails are compared
// case-insensitively everywhere, so every stored address goes through here.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizeCurrency upper-cases a currency code, falling back to DefaultCurrency.
func NormalizeCurrency(currency string) string {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return DefaultCurrency
	}
	return currency
}

// Valid reports whether s is one of the values a client may respond with.
func (s InvitationStatus) Valid() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

// Terminal reports whether no further transition is allowed from s.
func (s InvitationStatus) Terminal() bool {
	return s == InvitationAccepted || s == InvitationRejected
}

func (r Role) IsOwner() bool {
	return r == RoleOwner
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Name) == "" {
		return ErrEmptyName
	}
	return nil
}
