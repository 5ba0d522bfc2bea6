package services

import (
	portsrepo "github.com/SscSPs/backoffice_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/backoffice_ledger/internal/core/ports/services"
)

// ContainerDeps holds the optional infrastructure the services run with.
// Nil fields disable the corresponding feature.
type ContainerDeps struct {
	BalanceCache portssvc.BalanceCache
	Compensator  portssvc.CompensationEnqueuer
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, deps ContainerDeps) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The ledger engine is shared by the lifecycle services
	container.Ledger = NewLedgerService(
		repos.FundRepo,
		repos.TransactionRepo,
		repos.CompanyFinanceRepo,
		WithBalanceCache(deps.BalanceCache),
	)

	container.Expense = NewExpenseService(
		repos.ExpenseRepo,
		repos.TransactionRepo,
		container.Ledger,
		WithExpenseCompensator(deps.Compensator),
	)

	container.Transaction = NewTransactionService(
		repos.TransactionRepo,
		repos.ExpenseRepo,
		container.Ledger,
		WithTransactionCompensator(deps.Compensator),
	)

	return container
}
