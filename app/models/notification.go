package models

import "github.com/shopspring/decimal"

// NotificationDecision is the payload handed to the notification dispatcher.
// This module decides THAT a student should be notified; channel and
// delivery belong to the notification system.
type NotificationDecision struct {
	StudentID     string              `json:"student_id"`
	Trigger       NotificationTrigger `json:"trigger"`
	InstallmentID string              `json:"installment_id"`
	Amount        decimal.Decimal     `json:"amount"`
}
