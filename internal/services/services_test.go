package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
	"budgetplanner/internal/storage"
)

type fakeNotifier struct {
	mu   sync.Mutex
	sent []core.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n core.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, n)
	return nil
}

func (f *fakeNotifier) last() core.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[len(f.sent)-1]
}

// plainHasher keeps tests fast; bcrypt is covered in the identity package.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "plain:" + p, nil }

func (plainHasher) Compare(hash, p string) (bool, error) { return hash == "plain:"+p, nil }

type fakeTokens struct{}

func (fakeTokens) Issue(who core.Identity) (string, time.Time, error) {
	return "token-for-" + who.Email, time.Now().Add(time.Hour), nil
}

type fixture struct {
	ctx          context.Context
	repo         *storage.SQLiteRepository
	notifier     *fakeNotifier
	budgets      *BudgetService
	invitations  *InvitationService
	categories   *CategoryService
	transactions *TransactionService
	history      *HistoryService
	accounts     *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budget.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	notifier := &fakeNotifier{}
	links := NewLinks("http://frontend.test/")
	return &fixture{
		ctx:          context.Background(),
		repo:         repo,
		notifier:     notifier,
		budgets:      NewBudgetService(repo),
		invitations:  NewInvitationService(repo, notifier, links),
		categories:   NewCategoryService(repo),
		transactions: NewTransactionService(repo),
		history:      NewHistoryService(repo),
		accounts:     NewAccountService(repo, plainHasher{}, fakeTokens{}, notifier, links),
	}
}

func (f *fixture) user(t *testing.T, name, email string) core.Identity {
	t.Helper()
	u, err := f.accounts.CreateVerifiedUser(f.ctx, name, email, "password")
	require.NoError(t, err)
	return core.Identity{UserID: u.ID, Name: u.Name, Email: u.Email}
}

func (f *fixture) budget(t *testing.T, owner core.Identity) core.Budget {
	t.Helper()
	b, err := f.budgets.CreateBudget(f.ctx, owner, "Household", "")
	require.NoError(t, err)
	return b
}

// join invites who into budgetID and accepts on their behalf.
func (f *fixture) join(t *testing.T, owner, who core.Identity, budgetID int64) {
	t.Helper()
	inv, err := f.invitations.Invite(f.ctx, owner, budgetID, who.Email)
	require.NoError(t, err)
	_, err = f.invitations.Respond(f.ctx, who, inv.ID, core.InvitationAccepted)
	require.NoError(t, err)
}

func (f *fixture) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, f.repo.DB().QueryRow(query, args...).Scan(&n))
	return n
}

func (f *fixture) historyCount(t *testing.T, budgetID int64) int {
	return f.count(t, `SELECT COUNT(*) FROM history WHERE budget_id = ?`, budgetID)
}

func TestRequireMember(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	member := f.user(t, "Member", "member@example.com")
	stranger := f.user(t, "Stranger", "stranger@example.com")
	b := f.budget(t, owner)
	f.join(t, owner, member, b.ID)
	q := f.repo.Queries()

	m, err := RequireMember(f.ctx, q, owner.UserID, b.ID)
	require.NoError(t, err)
	require.Equal(t, core.RoleOwner, m.Role)

	m, err = RequireMember(f.ctx, q, member.UserID, b.ID)
	require.NoError(t, err)
	require.Equal(t, core.RoleMember, m.Role)

	_, err = RequireMember(f.ctx, q, stranger.UserID, b.ID)
	require.ErrorIs(t, err, core.ErrNotAMember)

	_, err = RequireOwner(f.ctx, q, member.UserID, b.ID)
	require.ErrorIs(t, err, core.ErrNotOwner)

	_, err = RequireMember(f.ctx, q, owner.UserID, b.ID+100)
	require.ErrorIs(t, err, core.ErrNotAMember)
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
