package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFundType_IsValid(t *testing.T) {
	tests := []struct {
		name     string
		fundType domain.FundType
		want     bool
	}{
		{name: "petty cash", fundType: domain.PettyCash, want: true},
		{name: "profit bank", fundType: domain.ProfitBank, want: true},
		{name: "empty", fundType: "", want: false},
		{name: "unknown", fundType: "savings", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fundType.IsValid())
		})
	}
}

func TestIsMoneyScale(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{amount: "0", want: true},
		{amount: "150", want: true},
		{amount: "33.33", want: true},
		{amount: "-0.01", want: true},
		{amount: "12.340", want: true},
		{amount: "0.005", want: false},
		{amount: "10.001", want: false},
		{amount: "-7.125", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsMoneyScale(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestTransferPair_IsLinked(t *testing.T) {
	outID, inID := "out-1", "in-1"
	pair := domain.TransferPair{
		Out: domain.FundTransaction{
			FundTransactionID: outID,
			TransactionType:   domain.TransferOut,
			Amount:            decimal.NewFromInt(-30000),
			ReferenceID:       &inID,
		},
		In: domain.FundTransaction{
			FundTransactionID: inID,
			TransactionType:   domain.TransferIn,
			Amount:            decimal.NewFromInt(30000),
			ReferenceID:       &outID,
		},
	}
	assert.True(t, pair.IsLinked())

	broken := pair
	other := "somewhere-else"
	broken.In.ReferenceID = &other
	assert.False(t, broken.IsLinked())

	unbalanced := pair
	unbalanced.In.Amount = decimal.NewFromInt(29999)
	assert.False(t, unbalanced.IsLinked())

	unpatched := pair
	unpatched.Out.ReferenceID = nil
	assert.False(t, unpatched.IsLinked())
}

func TestExpense_AffectsFund(t *testing.T) {
	petty := domain.PettyCash
	unknown := domain.FundType("savings")

	tests := []struct {
		name    string
		expense domain.Expense
		want    bool
	}{
		{name: "positive amount with fund", expense: domain.Expense{Amount: decimal.NewFromInt(20000), FundType: &petty}, want: true},
		{name: "no fund", expense: domain.Expense{Amount: decimal.NewFromInt(20000)}, want: false},
		{name: "zero amount", expense: domain.Expense{Amount: decimal.Zero, FundType: &petty}, want: false},
		{name: "unknown fund", expense: domain.Expense{Amount: decimal.NewFromInt(1), FundType: &unknown}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.expense.AffectsFund())
		})
	}
}

func TestSoftDeleteFields_ArchiveAndUnarchive(t *testing.T) {
	var s domain.SoftDeleteFields
	now := time.Now().UTC()

	s.Archive("user-1", "batch-1", now)
	assert.True(t, s.IsDeleted)
	assert.Equal(t, "user-1", *s.DeletedByID)
	assert.Equal(t, "batch-1", *s.DeletionBatchID)
	assert.Equal(t, now, *s.DeletedAt)

	s.Unarchive()
	assert.False(t, s.IsDeleted)
	assert.Nil(t, s.DeletedAt)
	assert.Nil(t, s.DeletedByID)
	assert.Nil(t, s.DeletionBatchID)
}
