// internal/followup/stage/decision_test.go
package stage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecide(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	hoursAgo := func(h float64) *time.Time {
		t := now.Add(-time.Duration(h * float64(time.Hour)))
		return &t
	}

	tests := []struct {
		name          string
		daysOverdue   int
		currentStage  int
		lastSentAt    *time.Time
		intervalHours int
		wantSend      bool
		wantStage     int // 0 = nil stage expected
		wantReason    string
	}{
		{
			name:          "not yet overdue never sends",
			daysOverdue:   0,
			currentStage:  0,
			intervalHours: 24,
			wantSend:      false,
			wantStage:     0,
			wantReason:    "Invoice is not yet overdue",
		},
		{
			name:          "first send at stage 1",
			daysOverdue:   2,
			currentStage:  0,
			intervalHours: 24,
			wantSend:      true,
			wantStage:     1,
			wantReason:    "Escalating to stage 1: Friendly Reminder",
		},
		{
			name:          "escalation beats interval throttling",
			daysOverdue:   5,
			currentStage:  1,
			lastSentAt:    hoursAgo(1),
			intervalHours: 6,
			wantSend:      true,
			wantStage:     2,
			wantReason:    "Escalating to stage 2: Social Framing",
		},
		{
			name:          "non-final stage never repeats",
			daysOverdue:   7,
			currentStage:  2,
			lastSentAt:    hoursAgo(100),
			intervalHours: 24,
			wantSend:      false,
			wantStage:     2,
			wantReason:    "Already sent stage 2 follow-up",
		},
		{
			name:          "final stage holds below double interval",
			daysOverdue:   20,
			currentStage:  4,
			lastSentAt:    hoursAgo(10),
			intervalHours: 6,
			wantSend:      false,
			wantStage:     4,
			wantReason:    "Already sent stage 4 follow-up",
		},
		{
			name:          "final stage re-fires at double interval",
			daysOverdue:   20,
			currentStage:  4,
			lastSentAt:    hoursAgo(13),
			intervalHours: 6,
			wantSend:      true,
			wantStage:     4,
			wantReason:    "Sending stage 4: Escalation",
		},
		{
			name:          "same stage with no prior send goes out",
			daysOverdue:   3,
			currentStage:  1,
			lastSentAt:    nil,
			intervalHours: 24,
			wantSend:      true,
			wantStage:     1,
			wantReason:    "Sending stage 1: Friendly Reminder",
		},
		{
			name:          "boundary day 4 stays on stage 1",
			daysOverdue:   4,
			currentStage:  0,
			intervalHours: 24,
			wantSend:      true,
			wantStage:     1,
			wantReason:    "Escalating to stage 1: Friendly Reminder",
		},
		{
			name:          "boundary day 15 reaches the final stage",
			daysOverdue:   15,
			currentStage:  3,
			lastSentAt:    hoursAgo(2),
			intervalHours: 24,
			wantSend:      true,
			wantStage:     4,
			wantReason:    "Escalating to stage 4: Escalation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(now, tt.daysOverdue, tt.currentStage, tt.lastSentAt, tt.intervalHours)

			assert.Equal(t, tt.wantSend, got.ShouldSend)
			assert.Equal(t, tt.wantReason, got.Reason)

			if tt.wantStage == 0 {
				assert.Nil(t, got.Stage)
			} else {
				require.NotNil(t, got.Stage)
				assert.Equal(t, tt.wantStage, got.Stage.Stage)
			}
		})
	}
}

func TestDecide_StageNeverRegresses(t *testing.T) {
	// An invoice manually bumped past its window keeps its stage; the guard
	// fires before any downgrade could happen.
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastSent := now.Add(-50 * time.Hour)

	got := Decide(now, 3, 2, &lastSent, 24)

	assert.False(t, got.ShouldSend)
	require.NotNil(t, got.Stage)
	assert.Equal(t, 1, got.Stage.Stage)
	assert.Equal(t, "Already sent stage 1 follow-up", got.Reason)
}

func TestDecide_FinalStageExactDoubleInterval(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastSent := now.Add(-12 * time.Hour)

	// Exactly 2x the interval is enough.
	got := Decide(now, 20, 4, &lastSent, 6)
	assert.True(t, got.ShouldSend)
	require.NotNil(t, got.Stage)
	assert.Equal(t, 4, got.Stage.Stage)
}
