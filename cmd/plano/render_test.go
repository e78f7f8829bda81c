package main

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/plano/internal/domain"
	"github.com/gosuda/plano/internal/lifecycle"
)

func TestRenderHistory(t *testing.T) {
	t.Parallel()

	lines := []lifecycle.HistoryLine{
		{
			Kind: domain.KindActionPlan, EntityID: uuid.New(), EntityName: "Q3 rollout",
			From: "In Progress", To: "Delayed", Date: "2026-07-01 09:00",
			Automatic: true, SystemNotes: domain.AutomaticSystemNotes,
		},
		{
			Kind: domain.KindTask, EntityID: uuid.New(), EntityName: "Write report",
			From: "Not Started", To: "In Progress", Date: "2026-06-30 14:10",
			Actor: "Ana", Justification: "kickoff done",
		},
	}

	var buf bytes.Buffer
	renderHistory(&buf, lines)
	out := buf.String()

	assert.Contains(t, out, "Q3 rollout")
	assert.Contains(t, out, "In Progress → Delayed")
	assert.Contains(t, out, "[Automatic]")
	assert.Contains(t, out, domain.AutomaticSystemNotes)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "kickoff done")
}

func TestRenderRules(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderRules(&buf, domain.TaskRules)
	out := buf.String()

	assert.Contains(t, out, domain.KindTask.Label())
	for _, s := range domain.TaskRules.Statuses() {
		assert.Contains(t, out, string(s))
	}
	assert.Contains(t, out, "yes")
}

func TestRenderScanReports(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	renderScanReports(&buf, []lifecycle.ScanReport{
		{Kind: domain.KindTask, Checked: 12, Eligible: 3, Delayed: 2, Rejected: 1},
	})

	assert.Contains(t, buf.String(), "12")
	assert.Contains(t, buf.String(), domain.KindTask.Label())
}

func TestKindArgs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    []domain.Kind
		wantErr bool
	}{
		{name: "none means all", args: nil, want: domain.Kinds()},
		{name: "explicit all", args: []string{"all"}, want: domain.Kinds()},
		{name: "one kind", args: []string{"action_plan"}, want: []domain.Kind{domain.KindActionPlan}},
		{name: "unknown kind", args: []string{"meeting"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := kindArgs(tc.args)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrUnknownKind)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
