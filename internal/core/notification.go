package core

type NotificationKind string

const (
	NotifyVerifyEmail NotificationKind = "verify_email"
	NotifyInvitation  NotificationKind = "budget_invitation"
)

// Notification is an outbound email request. Link carries the single-use
// token the recipient needs to act on it.
type Notification struct {
	Kind          NotificationKind `json:"kind"`
	To            string           `json:"to"`
	RecipientName string           `json:"recipient_name,omitempty"`
	BudgetName    string           `json:"budget_name,omitempty"`
	SenderName    string           `json:"sender_name,omitempty"`
	Link          string           `json:"link"`
}

func (k NotificationKind) Valid() bool {
	return k == NotifyVerifyEmail || k == NotifyInvitation
}
