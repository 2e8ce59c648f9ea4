package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetplanner/internal/core"
)

func ptr[T any](v T) *T { return &v }

func TestCreateTransactionDefaults(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	b := f.budget(t, owner)

	tx, err := f.transactions.CreateTransaction(f.ctx, owner, b.ID, TransactionInput{
		Amount: ptr(decimal.RequireFromString("19.90")),
		Type:   "Expense",
	})
	require.NoError(t, err)
	assert.Equal(t, core.TransactionExpense, tx.Type)
	assert.True(t, tx.Date.SameDay(core.Today()))
	assert.Equal(t, owner.UserID, tx.UserID)
	assert.Equal(t, "Owner", tx.UserName)
	assert.Nil(t, tx.CategoryID)
}

func TestCreateTransactionRejectsRefund(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	b := f.budget(t, owner)

	_, err := f.transactions.CreateTransaction(f.ctx, owner, b.ID, TransactionInput{
		Amount: ptr(decimal.NewFromInt(5)),
		Type:   "refund",
	})
	require.ErrorIs(t, err, core.ErrInvalidTransactionType)
	assert.Equal(t, core.KindConstraint, core.KindOf(err))
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM transactions`))
}

func TestCreateTransactionValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	stranger := f.user(t, "Stranger", "stranger@example.com")
	b := f.budget(t, owner)
	other := f.budget(t, owner)
	foreign, err := f.categories.CreateCategory(f.ctx, owner, other.ID, "Elsewhere", nil)
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor core.Identity
		in    TransactionInput
		want  error
	}{
		{"missing amount", owner, TransactionInput{Type: core.TransactionIncome}, nil},
		{"negative amount", owner, TransactionInput{Amount: ptr(decimal.NewFromInt(-3)), Type: core.TransactionIncome}, core.ErrInvalidAmount},
		{"not a member", stranger, TransactionInput{Amount: ptr(decimal.NewFromInt(3)), Type: core.TransactionIncome}, core.ErrNotAMember},
		{"category of another budget", owner, TransactionInput{Amount: ptr(decimal.NewFromInt(3)), Type: core.TransactionIncome, CategoryID: &foreign.ID}, core.ErrCategoryMismatch},
		{"unknown category", owner, TransactionInput{Amount: ptr(decimal.NewFromInt(3)), Type: core.TransactionIncome, CategoryID: ptr(int64(999))}, core.ErrCategoryMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.transactions.CreateTransaction(f.ctx, tt.actor, b.ID, tt.in)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				assert.Equal(t, core.KindValidation, core.KindOf(err))
			}
		})
	}
	assert.Zero(t, f.count(t, `SELECT COUNT(*) FROM transactions`))
}

func TestUpdateTransactionHistory(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	b := f.budget(t, owner)
	date, err := core.ParseDate("2024-03-01")
	require.NoError(t, err)

	tx, err := f.transactions.CreateTransaction(f.ctx, owner, b.ID, TransactionInput{
		Amount:      ptr(decimal.RequireFromString("10")),
		Type:        core.TransactionExpense,
		Description: ptr("Dinner"),
		Date:        date,
	})
	require.NoError(t, err)

	// Same values, with the amount spelled differently and the date given
	// as a full timestamp on the same day.
	sameDay, err := core.ParseDate("2024-03-01T18:30:00Z")
	require.NoError(t, err)
	_, err = f.transactions.UpdateTransaction(f.ctx, owner, tx.ID, TransactionInput{
		Amount:      ptr(decimal.RequireFromString("10.0")),
		Type:        core.TransactionExpense,
		Description: ptr("Dinner"),
		Date:        sameDay,
	})
	require.NoError(t, err)
	assert.Zero(t, f.historyCount(t, b.ID))

	updated, err := f.transactions.UpdateTransaction(f.ctx, owner, tx.ID, TransactionInput{
		Amount:      ptr(decimal.RequireFromString("12.5")),
		Type:        core.TransactionExpense,
		Description: ptr("Dinner"),
		Date:        date,
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("12.5").Equal(updated.Amount))

	entries, err := f.history.ListHistory(f.ctx, owner, b.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, core.EntityTransaction, entries[0].EntityType)
	assert.Equal(t, tx.ID, entries[0].EntityID)
	assert.Equal(t, "amount: 10 -> 12.5", entries[0].Details)
}

func TestUpdateTransactionGuardsAndCategory(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	stranger := f.user(t, "Stranger", "stranger@example.com")
	b := f.budget(t, owner)
	other := f.budget(t, owner)
	foreign, err := f.categories.CreateCategory(f.ctx, owner, other.ID, "Elsewhere", nil)
	require.NoError(t, err)

	tx, err := f.transactions.CreateTransaction(f.ctx, owner, b.ID, TransactionInput{
		Amount: ptr(decimal.NewFromInt(1)), Type: core.TransactionIncome,
	})
	require.NoError(t, err)

	_, err = f.transactions.UpdateTransaction(f.ctx, stranger, tx.ID, TransactionInput{Description: ptr("mine now")})
	assert.ErrorIs(t, err, core.ErrNotAMember)

	_, err = f.transactions.UpdateTransaction(f.ctx, owner, tx.ID, TransactionInput{CategoryID: &foreign.ID})
	assert.ErrorIs(t, err, core.ErrCategoryMismatch)

	_, err = f.transactions.UpdateTransaction(f.ctx, owner, tx.ID+100, TransactionInput{})
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)

	_, err = f.transactions.UpdateTransaction(f.ctx, owner, tx.ID, TransactionInput{Type: "refund"})
	assert.ErrorIs(t, err, core.ErrInvalidTransactionType)
	assert.Zero(t, f.historyCount(t, b.ID))
}

func TestListTransactionsOrder(t *testing.T) {
	f := newFixture(t)
	owner := f.user(t, "Owner", "owner@example.com")
	stranger := f.user(t, "Stranger", "stranger@example.com")
	b := f.budget(t, owner)

	var ids []int64
	for _, day := range []string{"2024-01-10", "2024-02-01", "2024-01-10"} {
		d, err := core.ParseDate(day)
		require.NoError(t, err)
		tx, err := f.transactions.CreateTransaction(f.ctx, owner, b.ID, TransactionInput{
			Amount: ptr(decimal.NewFromInt(1)), Type: core.TransactionIncome, Date: d,
		})
		require.NoError(t, err)
		ids = append(ids, tx.ID)
	}

	list, err := f.transactions.ListTransactions(f.ctx, owner, b.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int64{ids[1], ids[2], ids[0]}, []int64{list[0].ID, list[1].ID, list[2].ID})

	_, err = f.transactions.ListTransactions(f.ctx, stranger, b.ID)
	assert.ErrorIs(t, err, core.ErrNotAMember)
}
