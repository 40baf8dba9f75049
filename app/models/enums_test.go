package models

import "testing"

func TestPaymentStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to PaymentStatus
		want     bool
	}{
		{PaymentPending, PaymentSuccess, true},
		{PaymentPending, PaymentFailed, true},
		{PaymentPending, PaymentRefunded, false},
		{PaymentSuccess, PaymentPartiallyRefunded, true},
		{PaymentSuccess, PaymentRefunded, true},
		{PaymentSuccess, PaymentPending, false},
		{PaymentSuccess, PaymentFailed, false},
		{PaymentPartiallyRefunded, PaymentRefunded, true},
		{PaymentPartiallyRefunded, PaymentSuccess, false},
		{PaymentFailed, PaymentSuccess, false},
		{PaymentFailed, PaymentPending, false},
		{PaymentRefunded, PaymentPartiallyRefunded, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanMoveTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestPaymentStatusIsTerminal(t *testing.T) {
	if PaymentPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	for _, s := range []PaymentStatus{PaymentSuccess, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded} {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal for webhook replay purposes", s)
		}
	}
}

func TestRefundStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to RefundStatus
		want     bool
	}{
		{RefundRequested, RefundApproved, true},
		{RefundRequested, RefundRejected, true},
		{RefundRequested, RefundProcessed, false},
		{RefundRequested, RefundCompleted, false},
		{RefundApproved, RefundProcessed, true},
		{RefundApproved, RefundRejected, false},
		{RefundApproved, RefundCompleted, false},
		{RefundProcessed, RefundCompleted, true},
		{RefundProcessed, RefundRequested, false},
		{RefundCompleted, RefundRequested, false},
		{RefundRejected, RefundApproved, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanMoveTo(tt.to); got != tt.want {
			t.Errorf("%s -> %s = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestRefundTerminalStatesAllowNothing(t *testing.T) {
	all := []RefundStatus{RefundRequested, RefundApproved, RefundProcessed, RefundCompleted, RefundRejected}
	for _, terminal := range []RefundStatus{RefundCompleted, RefundRejected} {
		if !terminal.IsTerminal() {
			t.Errorf("%s must be terminal", terminal)
		}
		for _, to := range all {
			if terminal.CanMoveTo(to) {
				t.Errorf("terminal %s must not move to %s", terminal, to)
			}
		}
	}
}

func TestCountsAgainstRefundable(t *testing.T) {
	counting := map[RefundStatus]bool{
		RefundRequested: false,
		RefundApproved:  true,
		RefundProcessed: true,
		RefundCompleted: true,
		RefundRejected:  false,
	}
	for s, want := range counting {
		if got := s.CountsAgainstRefundable(); got != want {
			t.Errorf("%s counts = %v, want %v", s, got, want)
		}
	}
}
