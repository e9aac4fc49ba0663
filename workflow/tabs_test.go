package workflow

import (
	"testing"

	"backend/models"
)

func TestStatusTabDispatch(t *testing.T) {
	cases := []struct {
		status string
		want   Tab
	}{
		{models.StatusPendingApproval, TabApprove},
		{models.StatusApproved, TabCompletedSummary},
		{models.StatusPoCreated, TabCompletedSummary},
		{models.StatusPoApproved, TabSummary},
		{models.StatusOrdered, TabSummary},
		{models.StatusRejected, TabSummary},
		{"", TabSummary},
		{"something unexpected", TabSummary},
	}
	for _, tc := range cases {
		if got := StatusTab(tc.status); got != tc.want {
			t.Errorf("StatusTab(%q) = %s, want %s", tc.status, got, tc.want)
		}
	}
}

func TestEditable(t *testing.T) {
	editable := []string{"", models.StatusCompared, models.StatusPoRejected, models.StatusRejected}
	for _, status := range editable {
		if !Editable(status) {
			t.Errorf("Editable(%q) = false, want true", status)
		}
	}
	readOnly := []string{
		models.StatusPendingApproval,
		models.StatusApproved,
		models.StatusPoCreated,
		models.StatusPoApproved,
		models.StatusOrdered,
	}
	for _, status := range readOnly {
		if Editable(status) {
			t.Errorf("Editable(%q) = true, want false", status)
		}
	}
}
