package core

import "errors"

// Kind classifies a domain error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthenticated
	KindForbidden
	KindNotFound
	// KindConflict covers unique-key violations and illegal state transitions.
	KindConflict
	// KindConstraint covers check-constraint violations reported by the store.
	KindConstraint
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindConstraint:
		return "constraint"
	default:
		return "internal"
	}
}

// Error is a recoverable business-rule failure with a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Invalid returns a validation error carrying msg.
func Invalid(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Message returns the client-safe message of err, or "" when err is not a
// domain error.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return ""
}

var (
	ErrUnauthenticated = &Error{KindUnauthenticated, "missing or invalid bearer token"}

	ErrForbidden           = &Error{KindForbidden, "action not allowed"}
	ErrNotAMember          = &Error{KindForbidden, "you are not a member of this budget"}
	ErrNotOwner            = &Error{KindForbidden, "only the budget owner can perform this action"}
	ErrEmailNotVerified    = &Error{KindForbidden, "your account is not verified, check your emails"}
	ErrRecipientMismatch   = &Error{KindForbidden, "this invitation was sent to another email address"}
	ErrBudgetNotFound      = &Error{KindNotFound, "budget not found"}
	ErrInvitationNotFound  = &Error{KindNotFound, "invitation not found"}
	ErrCategoryNotFound    = &Error{KindNotFound, "category not found"}
	ErrTransactionNotFound = &Error{KindNotFound, "transaction not found"}
	ErrUserNotFound        = &Error{KindNotFound, "user not found"}

	ErrInvalidStatus            = &Error{KindValidation, "status must be 'accepted' or 'rejected'"}
	ErrCategoryMismatch         = &Error{KindValidation, "this category does not belong to this budget"}
	ErrInvalidCredentials       = &Error{KindValidation, "invalid email or password"}
	ErrInvalidVerificationToken = &Error{KindValidation, "invalid or expired verification token"}

	ErrAlreadyMember        = &Error{KindConflict, "this user is already a member of the budget"}
	ErrDuplicateInvitation  = &Error{KindConflict, "an invitation is already pending for this email"}
	ErrInvitationNotPending = &Error{KindConflict, "this invitation has already been answered"}
	ErrDuplicateEmail       = &Error{KindConflict, "a user with this email already exists"}
	ErrDuplicateCategory    = &Error{KindConflict, "a category with this name already exists in this budget"}
	ErrDuplicatePhone       = &Error{KindConflict, "this phone number is already used by another account"}

	ErrInvalidTransactionType = &Error{KindConstraint, "transaction type must be 'income' or 'expense'"}
)
