// Package model defines the domain value types shared by the store, the
// insights engine and the HTTP service.
package model

import "time"

// Transaction is a single ledger entry. Amount is signed: negative values are
// expenses, positive values are income.
type Transaction struct {
	ID          string    `json:"id" firestore:"Id"`
	UserID      string    `json:"userId" firestore:"UserId"`
	Date        time.Time `json:"date" firestore:"Date"`
	Amount      float64   `json:"amount" firestore:"Amount"`
	Description string    `json:"description" firestore:"Description"`
	Category    string    `json:"category" firestore:"Category"`
}

// IsExpense reports whether the transaction is an outflow.
func (t Transaction) IsExpense() bool {
	return t.Amount < 0
}

// Budget is a per-category spending allowance for a period.
type Budget struct {
	ID       string  `json:"id" firestore:"Id"`
	UserID   string  `json:"userId" firestore:"UserId"`
	Category string  `json:"category" firestore:"Category"`
	Amount   float64 `json:"amount" firestore:"Amount"`
	Period   string  `json:"period,omitempty" firestore:"Period"`
}

// Frequency classifies the cadence of a recurring payment.
type Frequency string

const (
	FrequencyDaily    Frequency = "daily"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyYearly   Frequency = "yearly"
)

// RecurringPattern describes a detected regular-interval payment relationship
// between a user and a merchant.
type RecurringPattern struct {
	Merchant         string    `json:"merchant"`
	Category         string    `json:"category"`
	AverageAmount    float64   `json:"averageAmount"`
	Frequency        Frequency `json:"frequency"`
	NextExpectedDate time.Time `json:"nextExpectedDate"`
	Confidence       float64   `json:"confidence"`
}

// Severity grades how unusual a flagged transaction is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// severityRank orders severities for sorting and escalation.
var severityRank = map[Severity]int{
	SeverityLow:    0,
	SeverityMedium: 1,
	SeverityHigh:   2,
}

// Rank returns the numeric order of the severity, low to high.
func (s Severity) Rank() int {
	return severityRank[s]
}

// Escalate raises the severity by one level, capped at high.
func (s Severity) Escalate() Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	default:
		return SeverityHigh
	}
}

// SpendingAnomaly flags a transaction whose magnitude is a statistical outlier
// within its category. Deviation is measured in standard-deviation units.
type SpendingAnomaly struct {
	ID          string      `json:"id"`
	Transaction Transaction `json:"transaction"`
	Deviation   float64     `json:"deviation"`
	Reason      string      `json:"reason"`
	Severity    Severity    `json:"severity"`
}

// Priority orders savings opportunities.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
}

// Rank returns the numeric order of the priority, low to high.
func (p Priority) Rank() int {
	return priorityRank[p]
}

// SavingsOpportunity is a heuristic recommendation for reducing spend in a
// category, with an estimated dollar impact.
type SavingsOpportunity struct {
	Category         string   `json:"category"`
	PotentialSavings float64  `json:"potentialSavings"`
	Recommendation   string   `json:"recommendation"`
	Priority         Priority `json:"priority"`
}

// SeasonalInsight is a human-readable summary of one category's seasonal
// spending swing.
type SeasonalInsight struct {
	Category       string  `json:"category"`
	PeakMonth      string  `json:"peakMonth"`
	LowMonth       string  `json:"lowMonth"`
	PeakMultiplier float64 `json:"peakMultiplier"`
	Level          string  `json:"level"`
	Description    string  `json:"description"`
}
