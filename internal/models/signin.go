package models

import "time"

// DateLayout is how sign-in dates are stored.
const DateLayout = "2006-01-02"

// MonthLayout is how the summary stores the current month.
const MonthLayout = "2006-01"

// SignLog is a single daily sign-in.
type SignLog struct {
	UID          string
	Date         string
	IsSupplement bool
	RewardType   string
	CreatedAt    time.Time
}

// SignSummary aggregates a user's sign-ins.
type SignSummary struct {
	UID             string
	TotalSignDays   int
	CurrentMonth    string
	MonthSignDays   int
	LastSignDate    string
	ContinuousDays  int
	SupplementCount int
	UpdatedAt       time.Time
}
