package models

import "time"

type SwapStats struct {
	PeriodStart    *time.Time `json:"period_start,omitempty"`
	PeriodEnd      *time.Time `json:"period_end,omitempty"`
	TotalSwaps     int64      `json:"total_swaps"`
	PendingSwaps   int64      `json:"pending_swaps"`
	AcceptedSwaps  int64      `json:"accepted_swaps"`
	RejectedSwaps  int64      `json:"rejected_swaps"`
	CancelledSwaps int64      `json:"cancelled_swaps"`
	CompletedSwaps int64      `json:"completed_swaps"`
	CompletionRate float64    `json:"completion_rate"`
}

type PlatformStats struct {
	TotalUsers     int64   `json:"total_users"`
	BannedUsers    int64   `json:"banned_users"`
	TotalSwaps     int64   `json:"total_swaps"`
	PendingSwaps   int64   `json:"pending_swaps"`
	CompletedSwaps int64   `json:"completed_swaps"`
	CompletionRate float64 `json:"completion_rate"`
}
