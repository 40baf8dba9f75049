package models

// Cadence defines how often a fee item recurs within an academic year.
type Cadence string

const (
	CadenceOneTime   Cadence = "one_time"
	CadenceMonthly   Cadence = "monthly"
	CadenceQuarterly Cadence = "quarterly"
	CadenceAnnual    Cadence = "annual"
)

// StudentCategory buckets students for fee structure selection.
type StudentCategory string

const (
	CategoryGeneral     StudentCategory = "general"
	CategoryScholarship StudentCategory = "scholarship"
	CategoryStaffWard   StudentCategory = "staff_ward"
	CategoryGovtScheme  StudentCategory = "govt_scheme"
)

// PaymentMethod defines how a payment was collected.
type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodCheque       PaymentMethod = "cheque"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodGateway      PaymentMethod = "gateway"
)

// PaymentStatus defines the status of a payment.
type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentSuccess           PaymentStatus = "success"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// paymentTransitions is the table of legal payment status moves. Status is
// never compared ad hoc at call sites; every transition goes through CanMoveTo.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending: {PaymentSuccess, PaymentFailed},
	PaymentSuccess: {PaymentRefunded, PaymentPartiallyRefunded},
	// partial refunds may later become full refunds
	PaymentPartiallyRefunded: {PaymentRefunded},
}

// CanMoveTo reports whether the transition s -> to is legal.
func (s PaymentStatus) CanMoveTo(to PaymentStatus) bool {
	for _, next := range paymentTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further gateway transition applies.
func (s PaymentStatus) IsTerminal() bool {
	return s != PaymentPending
}

// RefundStatus defines the refund workflow states.
type RefundStatus string

const (
	RefundRequested RefundStatus = "requested"
	RefundApproved  RefundStatus = "approved"
	RefundProcessed RefundStatus = "processed"
	RefundCompleted RefundStatus = "completed"
	RefundRejected  RefundStatus = "rejected"
)

var refundTransitions = map[RefundStatus][]RefundStatus{
	RefundRequested: {RefundApproved, RefundRejected},
	RefundApproved:  {RefundProcessed},
	RefundProcessed: {RefundCompleted},
}

// CanMoveTo reports whether the transition s -> to is legal. The workflow
// only ever moves forward; skipping a stage is not allowed.
func (s RefundStatus) CanMoveTo(to RefundStatus) bool {
	for _, next := range refundTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the refund can no longer change state.
func (s RefundStatus) IsTerminal() bool {
	return s == RefundCompleted || s == RefundRejected
}

// CountsAgainstRefundable reports whether a refund in this state reserves
// part of the payment's refundable amount.
func (s RefundStatus) CountsAgainstRefundable() bool {
	return s == RefundApproved || s == RefundProcessed || s == RefundCompleted
}

// NotificationTrigger identifies why a notification decision was emitted.
// Delivery (channel, templating) belongs to the notification service, not here.
type NotificationTrigger string

const (
	TriggerFeeReminder   NotificationTrigger = "FEE_REMINDER"
	TriggerOverdueNotice NotificationTrigger = "OVERDUE_NOTICE"
)
