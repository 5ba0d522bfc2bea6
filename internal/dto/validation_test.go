package dto_test

import (
	"testing"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/SscSPs/backoffice_ledger/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, dto.RegisterValidations(v))
	return v
}

func TestFundTypeValidation(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		req     dto.TransferFundsRequest
		wantErr bool
	}{
		{
			name: "distinct known funds",
			req: dto.TransferFundsRequest{
				FromFundType: domain.ProfitBank,
				ToFundType:   domain.PettyCash,
				Amount:       decimal.NewFromInt(10),
			},
		},
		{
			name: "unknown fund",
			req: dto.TransferFundsRequest{
				FromFundType: "savings",
				ToFundType:   domain.PettyCash,
			},
			wantErr: true,
		},
		{
			name: "same fund on both sides",
			req: dto.TransferFundsRequest{
				FromFundType: domain.PettyCash,
				ToFundType:   domain.PettyCash,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.req)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOptionalFundTypeValidation(t *testing.T) {
	v := newValidator(t)
	bad := domain.FundType("vault")

	assert.NoError(t, v.Struct(dto.ListExpensesParams{Limit: 20}))
	assert.Error(t, v.Struct(dto.ListExpensesParams{Limit: 20, FundType: &bad}))
}
