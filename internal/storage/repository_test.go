package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"budgetplanner/internal/core"
)

type RepositorySuite struct {
	suite.Suite
	repo *SQLiteRepository
	ctx  context.Context
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	repo, err := NewSQLiteRepository(filepath.Join(s.T().TempDir(), "budget.db"))
	s.Require().NoError(err)
	s.repo = repo
	s.ctx = context.Background()
}

func (s *RepositorySuite) TearDownTest() {
	s.Require().NoError(s.repo.Close())
}

func (s *RepositorySuite) user(email string) core.User {
	u, err := s.repo.Queries().CreateUser(s.ctx, CreateUserParams{
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Verified:     true,
	})
	s.Require().NoError(err)
	return u
}

func (s *RepositorySuite) budget(owner core.User) core.Budget {
	q := s.repo.Queries()
	b, err := q.CreateBudget(s.ctx, "Household", core.DefaultCurrency)
	s.Require().NoError(err)
	s.Require().NoError(q.AddMembership(s.ctx, owner.ID, b.ID, core.RoleOwner))
	return b
}

func (s *RepositorySuite) count(table string) int {
	var n int
	s.Require().NoError(s.repo.DB().QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n))
	return n
}

func (s *RepositorySuite) TestCreateUserNormalizesEmailAndRejectsDuplicates() {
	q := s.repo.Queries()
	u := s.user("  Alice@Example.COM ")
	s.Equal("alice@example.com", u.Email)
	s.Equal(core.DefaultCurrency, u.Currency)
	s.False(u.CreatedAt.IsZero())

	_, err := q.CreateUser(s.ctx, CreateUserParams{Name: "Other", Email: "ALICE@example.com", PasswordHash: "x"})
	s.ErrorIs(err, core.ErrDuplicateEmail)

	found, err := q.GetUserByEmail(s.ctx, "alice@EXAMPLE.com")
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
}

func (s *RepositorySuite) TestVerificationTokenIsConsumed() {
	q := s.repo.Queries()
	token := "abc123"
	u, err := q.CreateUser(s.ctx, CreateUserParams{
		Name: "Bob", Email: "bob@example.com", PasswordHash: "x", VerificationToken: &token,
	})
	s.Require().NoError(err)
	s.False(u.IsVerified)

	byToken, err := q.GetUserByVerificationToken(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(u.ID, byToken.ID)

	s.Require().NoError(q.MarkUserVerified(s.ctx, u.ID))
	_, err = q.GetUserByVerificationToken(s.ctx, token)
	s.ErrorIs(err, core.ErrUserNotFound)

	reloaded, err := q.GetUserByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(reloaded.IsVerified)
	s.Nil(reloaded.VerificationToken)
}

func (s *RepositorySuite) TestUpdateProfileRejectsDuplicatePhone() {
	q := s.repo.Queries()
	a := s.user("a@example.com")
	b := s.user("b@example.com")
	phone := "+39 333 000"

	_, err := q.UpdateProfile(s.ctx, UpdateProfileParams{UserID: a.ID, Name: "A", PhoneNumber: &phone})
	s.Require().NoError(err)

	_, err = q.UpdateProfile(s.ctx, UpdateProfileParams{UserID: b.ID, Name: "B", PhoneNumber: &phone})
	s.ErrorIs(err, core.ErrDuplicatePhone)
}

func (s *RepositorySuite) TestMembershipIsUnique() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	err := q.AddMembership(s.ctx, owner.ID, b.ID, core.RoleMember)
	s.ErrorIs(err, core.ErrAlreadyMember)

	m, err := q.FindMembership(s.ctx, owner.ID, b.ID)
	s.Require().NoError(err)
	s.Require().NotNil(m)
	s.Equal(core.RoleOwner, m.Role)

	stranger := s.user("stranger@example.com")
	m, err = q.FindMembership(s.ctx, stranger.ID, b.ID)
	s.Require().NoError(err)
	s.Nil(m)

	member, err := q.IsMemberByEmail(s.ctx, "OWNER@example.com", b.ID)
	s.Require().NoError(err)
	s.True(member)
}

func (s *RepositorySuite) TestDeleteBudgetCascades() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	cat, err := q.CreateCategory(s.ctx, b.ID, "Food", nil)
	s.Require().NoError(err)
	_, err = q.CreateTransaction(s.ctx, core.Transaction{
		BudgetID: b.ID, UserID: owner.ID, CategoryID: &cat.ID,
		Amount: decimal.NewFromInt(10), Type: core.TransactionExpense, Date: core.Today(),
	})
	s.Require().NoError(err)
	_, err = q.CreateInvitation(s.ctx, CreateInvitationParams{
		BudgetID: b.ID, SenderID: owner.ID, RecipientEmail: "guest@example.com", Token: "t1",
	})
	s.Require().NoError(err)
	s.Require().NoError(s.repo.InTx(s.ctx, func(tx *Tx) error {
		return tx.AppendHistory(s.ctx, core.HistoryEntry{
			BudgetID: b.ID, UserID: owner.ID, EntityType: core.EntityBudget,
			EntityID: b.ID, Action: core.ActionUpdate, Details: "name: A -> B",
		})
	}))

	s.Require().NoError(q.DeleteBudget(s.ctx, b.ID))

	for _, table := range []string{"budgets", "user_budgets", "categories", "transactions", "invitations", "history"} {
		s.Zero(s.count(table), table)
	}
	s.ErrorIs(q.DeleteBudget(s.ctx, b.ID), core.ErrBudgetNotFound)
}

func (s *RepositorySuite) TestPendingInvitationIsUniquePerRecipient() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	inv, err := q.CreateInvitation(s.ctx, CreateInvitationParams{
		BudgetID: b.ID, SenderID: owner.ID, RecipientEmail: "Guest@Example.com", Token: "t1",
	})
	s.Require().NoError(err)
	s.Equal("guest@example.com", inv.RecipientEmail)
	s.Equal(core.InvitationPending, inv.Status)
	s.Equal("Household", inv.BudgetName)
	s.Nil(inv.RespondedAt)

	_, err = q.CreateInvitation(s.ctx, CreateInvitationParams{
		BudgetID: b.ID, SenderID: owner.ID, RecipientEmail: "guest@example.com", Token: "t2",
	})
	s.ErrorIs(err, core.ErrDuplicateInvitation)

	s.Require().NoError(q.RespondToInvitation(s.ctx, inv.ID, core.InvitationRejected))
	s.ErrorIs(q.RespondToInvitation(s.ctx, inv.ID, core.InvitationAccepted), core.ErrInvitationNotPending)

	responded, err := q.GetInvitation(s.ctx, inv.ID)
	s.Require().NoError(err)
	s.Equal(core.InvitationRejected, responded.Status)
	s.NotNil(responded.RespondedAt)

	// A settled invitation no longer blocks a new one.
	_, err = q.CreateInvitation(s.ctx, CreateInvitationParams{
		BudgetID: b.ID, SenderID: owner.ID, RecipientEmail: "guest@example.com", Token: "t3",
	})
	s.NoError(err)

	pending, err := q.ListPendingInvitations(s.ctx, "GUEST@example.com")
	s.Require().NoError(err)
	s.Len(pending, 1)
}

func (s *RepositorySuite) TestCategoriesAreUniquePerBudget() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)
	limit := decimal.RequireFromString("250.50")

	c, err := q.CreateCategory(s.ctx, b.ID, "Food", &limit)
	s.Require().NoError(err)
	s.Require().NotNil(c.MonthlyBudget)
	s.True(limit.Equal(*c.MonthlyBudget))

	_, err = q.CreateCategory(s.ctx, b.ID, "Food", nil)
	s.ErrorIs(err, core.ErrDuplicateCategory)

	other := s.budget(owner)
	_, err = q.CreateCategory(s.ctx, other.ID, "Food", nil)
	s.NoError(err)

	c.MonthlyBudget = nil
	c.Name = "Groceries"
	updated, err := q.UpdateCategory(s.ctx, c)
	s.Require().NoError(err)
	s.Equal("Groceries", updated.Name)
	s.Nil(updated.MonthlyBudget)
}

func (s *RepositorySuite) TestTransactionTypeCheckRejectsUnknownType() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	_, err := q.CreateTransaction(s.ctx, core.Transaction{
		BudgetID: b.ID, UserID: owner.ID, Amount: decimal.NewFromInt(5),
		Type: core.TransactionType("refund"), Date: core.Today(),
	})
	s.ErrorIs(err, core.ErrInvalidTransactionType)
	s.Zero(s.count("transactions"))
}

func (s *RepositorySuite) TestListTransactionsOrdersByDateThenID() {
	q := s.repo.Queries()
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	insert := func(day string) int64 {
		date, err := core.ParseDate(day)
		s.Require().NoError(err)
		t, err := q.CreateTransaction(s.ctx, core.Transaction{
			BudgetID: b.ID, UserID: owner.ID, Amount: decimal.RequireFromString("1.5"),
			Type: core.TransactionIncome, Date: date,
		})
		s.Require().NoError(err)
		return t.ID
	}
	first := insert("2024-03-01")
	second := insert("2024-03-05")
	third := insert("2024-03-01")

	list, err := q.ListTransactions(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 3)
	s.Equal([]int64{second, third, first}, []int64{list[0].ID, list[1].ID, list[2].ID})
	s.Equal(owner.Name, list[0].UserName)
	s.Equal("2024-03-05", list[0].Date.String())
}

func (s *RepositorySuite) TestInTxRollsBackOnError() {
	owner := s.user("owner@example.com")
	boom := errors.New("boom")

	err := s.repo.InTx(s.ctx, func(tx *Tx) error {
		b, err := tx.CreateBudget(s.ctx, "Doomed", core.DefaultCurrency)
		if err != nil {
			return err
		}
		if err := tx.AddMembership(s.ctx, owner.ID, b.ID, core.RoleOwner); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)
	s.Zero(s.count("budgets"))
	s.Zero(s.count("user_budgets"))
}

func (s *RepositorySuite) TestListHistoryIsCappedAndNewestFirst() {
	owner := s.user("owner@example.com")
	b := s.budget(owner)

	s.Require().NoError(s.repo.InTx(s.ctx, func(tx *Tx) error {
		for i := 0; i < HistoryLimit+5; i++ {
			if err := tx.AppendHistory(s.ctx, core.HistoryEntry{
				BudgetID: b.ID, UserID: owner.ID, EntityType: core.EntityBudget,
				EntityID: b.ID, Action: core.ActionUpdate, Details: "x",
			}); err != nil {
				return err
			}
		}
		return nil
	}))

	entries, err := s.repo.Queries().ListHistory(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Len(entries, HistoryLimit)
	s.Greater(entries[0].ID, entries[1].ID)
	s.Equal(owner.Name, entries[0].UserName)
}

func TestDSNEnablesForeignKeysAndImmediateTransactions(t *testing.T) {
	dsn := DSN("/tmp/x.db")
	require.Contains(t, dsn, "file:/tmp/x.db?")
	assert.Contains(t, dsn, "_pragma=foreign_keys(1)")
	assert.Contains(t, dsn, "_txlock=immediate")
}
