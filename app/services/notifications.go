package services

import (
	"database/sql"
	"time"

	"github.com/shyamanurag/school-management-system-sub000/app/config"
	"github.com/shyamanurag/school-management-system-sub000/app/database"
	"github.com/shyamanurag/school-management-system-sub000/app/models"
)

// Notifier receives notification decisions. Delivery (SMS, email, push,
// templating) lives behind this interface; the billing engines only decide
// THAT a student should hear something.
type Notifier interface {
	Notify(models.NotificationDecision)
}

// LogNotifier is the default dispatcher: it writes each decision to the
// structured log, where the delivery worker tails them. Swapped for a queue
// publisher in deployments that have one.
type LogNotifier struct{}

func (LogNotifier) Notify(d models.NotificationDecision) {
	config.Logger().Infow("notification decision",
		"student_id", d.StudentID, "trigger", d.Trigger,
		"installment_id", d.InstallmentID, "amount", d.Amount)
}

// RunReminderScan emits FEE_REMINDER decisions for unpaid installments due
// within the policy's lead window. Read-only; safe to run any number of
// times a day.
func RunReminderScan(db *sql.DB, pol config.FeePolicy, notifier Notifier, asOf time.Time) (int, error) {
	due, err := database.ListInstallmentsDueWithin(db, asOf, pol.ReminderLeadDays)
	if err != nil {
		return 0, err
	}
	for _, d := range due {
		notifier.Notify(models.NotificationDecision{
			StudentID:     d.StudentID,
			Trigger:       models.TriggerFeeReminder,
			InstallmentID: d.InstallmentID,
			Amount:        d.Balance,
		})
	}
	config.Logger().Infow("reminder scan finished", "reminders", len(due))
	return len(due), nil
}
