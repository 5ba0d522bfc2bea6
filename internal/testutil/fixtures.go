package testutil

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const SystemUserID = "00000000-0000-0000-0000-000000000001"

// SetFundBalance overwrites a seeded fund's balance without writing an audit record.
func SetFundBalance(t *testing.T, pool *pgxpool.Pool, fundType string, balance int64) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO fund_balances (fund_type, current_balance, last_reconciled_balance, updated_at)
		 VALUES ($1, $2, 0, NOW())
		 ON CONFLICT (fund_type) DO UPDATE SET current_balance = EXCLUDED.current_balance`,
		fundType, decimal.NewFromInt(balance),
	)
	if err != nil {
		t.Fatalf("set fund balance %s: %v", fundType, err)
	}
}

func GetFundBalance(t *testing.T, pool *pgxpool.Pool, fundType string) decimal.Decimal {
	t.Helper()
	var balance decimal.Decimal
	err := pool.QueryRow(context.Background(),
		`SELECT current_balance FROM fund_balances WHERE fund_type = $1`, fundType,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("get fund balance %s: %v", fundType, err)
	}
	return balance
}

func CountFundTransactions(t *testing.T, pool *pgxpool.Pool, fundType string) int {
	t.Helper()
	var count int
	err := pool.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM fund_transactions WHERE fund_type = $1`, fundType,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count fund transactions %s: %v", fundType, err)
	}
	return count
}

func GetCompanyTotalFunds(t *testing.T, pool *pgxpool.Pool) decimal.Decimal {
	t.Helper()
	var total decimal.Decimal
	err := pool.QueryRow(context.Background(),
		`SELECT total_funds FROM company_finances WHERE id = 'default'`,
	).Scan(&total)
	if err != nil {
		t.Fatalf("get company total funds: %v", err)
	}
	return total
}
