package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExecutionTrigger records what caused an allocation to be executed.
type ExecutionTrigger string

const (
	ExecutionTriggerOnReceive ExecutionTrigger = "ON_RECEIVE"
	ExecutionTriggerScheduled ExecutionTrigger = "SCHEDULED"
	ExecutionTriggerManual    ExecutionTrigger = "MANUAL"
)

// ExecutionStatus is the outcome of one allocation execution.
type ExecutionStatus string

const (
	ExecutionStatusCompleted ExecutionStatus = "COMPLETED"
	ExecutionStatusFailed    ExecutionStatus = "FAILED"
)

// AllocationExecution is the immutable audit record of one
// evaluator-to-engine pass for a single rule.
//
// Manual allocations are not recorded here; they appear in the
// sub-account ledger only.
type AllocationExecution struct {
	DefaultModel
	RuleID              *uuid.UUID       `json:"ruleId"`
	SubAccountID        uuid.UUID        `json:"subAccountId"`
	Amount              decimal.Decimal  `json:"amount" gorm:"type:DECIMAL(20,8)"`
	TriggeredBy         ExecutionTrigger `json:"triggeredBy"`
	SourceTransactionID *uuid.UUID       `json:"sourceTransactionId"` // the inbound funds event, if any
	Status              ExecutionStatus  `json:"status"`
	Message             string           `json:"message"` // failure reason for FAILED executions
	ExecutedAt          time.Time        `json:"executedAt"`
}
