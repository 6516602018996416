package services

import (
	"context"
	"testing"
	"time"

	"rwportal-http-service/internal/domain/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCashService(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	svc := NewCashService(db)

	f := seedBillingFixture(t, db)
	bill := &models.Bill{HouseholdID: f.households[0].ID, Period: day(2024, 3, 1), Amount: decimal.NewFromInt(200000), Status: models.BillStatusUnpaid, AmountPaid: decimal.Zero}
	mustCreate(t, db, bill)

	t.Run("record transactions", func(t *testing.T) {
		income, err := svc.CreateTransaction(ctx, treasurer(), CashInput{
			Type: models.CashIncome, Amount: decimal.NewFromInt(200000), Date: "2024-03-05",
			Category: "iuran", Description: " IPL Maret ", BillID: &bill.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "IPL Maret", income.Description)
		assert.Equal(t, treasurer().UserID, income.RecordedBy)

		_, err = svc.CreateTransaction(ctx, treasurer(), CashInput{Type: models.CashExpense, Amount: decimal.NewFromInt(75000), Date: "2024-03-10", Category: "kebersihan"})
		require.NoError(t, err)
		_, err = svc.CreateTransaction(ctx, rwAdmin(), CashInput{Type: models.CashIncome, Amount: decimal.NewFromInt(50000), Date: "2024-04-02"})
		require.NoError(t, err)
	})

	t.Run("record validation", func(t *testing.T) {
		_, err := svc.CreateTransaction(ctx, nil, CashInput{})
		assert.ErrorIs(t, err, ErrUnauthenticated)
		_, err = svc.CreateTransaction(ctx, rtChair(f.rt.ID), CashInput{Type: models.CashIncome, Amount: decimal.NewFromInt(1), Date: "2024-03-01"})
		assert.ErrorIs(t, err, ErrForbidden)

		for name, input := range map[string]CashInput{
			"type":   {Type: "gift", Amount: decimal.NewFromInt(1), Date: "2024-03-01"},
			"amount": {Type: models.CashIncome, Amount: decimal.NewFromInt(-5), Date: "2024-03-01"},
			"date":   {Type: models.CashIncome, Amount: decimal.NewFromInt(1), Date: "05-03-2024"},
			"bill":   {Type: models.CashIncome, Amount: decimal.NewFromInt(1), Date: "2024-03-01", BillID: uintPtr(999)},
		} {
			_, err := svc.CreateTransaction(ctx, treasurer(), input)
			assert.ErrorIs(t, err, ErrInvalidInput, name)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		txs, err := svc.GetTransactions(ctx, rtChair(f.rt.ID), CashQuery{})
		require.NoError(t, err)
		require.Len(t, txs, 3)
		assert.True(t, decimal.NewFromInt(50000).Equal(txs[0].Amount))

		expenses, err := svc.GetTransactions(ctx, rwAdmin(), CashQuery{Type: models.CashExpense})
		require.NoError(t, err)
		assert.Len(t, expenses, 1)
	})

	t.Run("summary over date range", func(t *testing.T) {
		from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
		summary, err := svc.Summarize(ctx, rwAdmin(), CashQuery{From: &from, To: &to})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(200000).Equal(summary.Income), summary.Income.String())
		assert.True(t, decimal.NewFromInt(75000).Equal(summary.Expense), summary.Expense.String())
		assert.True(t, decimal.NewFromInt(125000).Equal(summary.Balance), summary.Balance.String())

		total, err := svc.Summarize(ctx, rwAdmin(), CashQuery{})
		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(175000).Equal(total.Balance), total.Balance.String())
	})

	t.Run("read access", func(t *testing.T) {
		_, err := svc.GetTransactions(ctx, resident(), CashQuery{})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = svc.Summarize(ctx, nil, CashQuery{})
		assert.ErrorIs(t, err, ErrUnauthenticated)

		from := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		_, err = svc.Summarize(ctx, rwAdmin(), CashQuery{From: &from, To: &to})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})
}
