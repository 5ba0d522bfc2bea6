package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/backoffice_ledger/internal/core/domain"
	"github.com/hibiken/asynq"
)

const (
	// QueueLedger is the queue compensation and maintenance tasks run on.
	QueueLedger = "ledger"

	TaskReverseExpense    = "ledger:" + string(domain.CompensateReverseExpense)
	TaskApplyExpense      = "ledger:" + string(domain.CompensateApplyExpense)
	TaskFinanceDelta      = "ledger:" + string(domain.CompensateFinanceDelta)
	TaskRecalcCapitalCost = "ledger:" + string(domain.CompensateRecalcCapitalCost)
	TaskFundEditDelta     = "ledger:" + string(domain.CompensateFundEditDelta)
	TaskIntegrityScan     = "ledger:integrity_scan"
)

// TaskTypeFor maps a compensation kind to its task type.
func TaskTypeFor(kind domain.CompensationKind) (string, error) {
	switch kind {
	case domain.CompensateReverseExpense:
		return TaskReverseExpense, nil
	case domain.CompensateApplyExpense:
		return TaskApplyExpense, nil
	case domain.CompensateFinanceDelta:
		return TaskFinanceDelta, nil
	case domain.CompensateRecalcCapitalCost:
		return TaskRecalcCapitalCost, nil
	case domain.CompensateFundEditDelta:
		return TaskFundEditDelta, nil
	}
	return "", fmt.Errorf("jobs: unknown compensation kind %q", kind)
}

// NewCompensationTask constructs an Asynq task carrying the compensation as JSON.
func NewCompensationTask(c domain.Compensation) (*asynq.Task, error) {
	taskType, err := TaskTypeFor(c.Kind)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskType, data), nil
}

// IntegrityScanPayload selects the funds to verify. Empty means every fund.
type IntegrityScanPayload struct {
	FundTypes []domain.FundType `json:"fundTypes,omitempty"`
}

// NewIntegrityScanTask constructs the periodic integrity scan task.
func NewIntegrityScanTask(payload IntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskIntegrityScan, data), nil
}
