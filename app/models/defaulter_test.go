package models

import "testing"

func TestEscalationPolicyHoldsAt(t *testing.T) {
	p := EscalationPolicy{MaxLevel: 4, TCHoldLevel: 2, ExamDebarLevel: 3}

	tests := []struct {
		level                int
		tcHold, examDebarred bool
	}{
		{1, false, false},
		{2, true, false},
		{3, true, true},
		{4, true, true},
	}
	for _, tt := range tests {
		tc, exam := p.HoldsAt(tt.level)
		if tc != tt.tcHold || exam != tt.examDebarred {
			t.Errorf("HoldsAt(%d) = (%v, %v), want (%v, %v)",
				tt.level, tc, exam, tt.tcHold, tt.examDebarred)
		}
	}
}

func TestEscalationPolicyNextLevel(t *testing.T) {
	p := EscalationPolicy{MaxLevel: 4}

	if got := p.NextLevel(1); got != 2 {
		t.Errorf("NextLevel(1) = %d, want 2", got)
	}
	if got := p.NextLevel(4); got != 4 {
		t.Errorf("NextLevel(4) = %d, want 4 (capped)", got)
	}
	if got := p.NextLevel(7); got != 4 {
		t.Errorf("NextLevel(7) = %d, want 4 (capped)", got)
	}
}
