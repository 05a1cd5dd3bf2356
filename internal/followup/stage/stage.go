// internal/followup/stage/stage.go
package stage

import "invoice-recovery/internal/models"

// Config describes one escalation tier. The catalog below is static: windows
// are contiguous, non-overlapping and ordered by MinDaysOverdue, with the
// final window open-ended.
type Config struct {
	Stage            int
	Name             string
	MinDaysOverdue   int
	MaxDaysOverdue   int // 0 means unbounded (final stage only)
	EscalationLevel  int
	ToneDescriptions map[models.TonePreference]string
}

// Final reports whether this is the most severe stage, beyond which there is
// no further escalation.
func (c *Config) Final() bool {
	return c.Stage == Stages[len(Stages)-1].Stage
}

func (c *Config) contains(daysOverdue int) bool {
	if daysOverdue < c.MinDaysOverdue {
		return false
	}
	return c.MaxDaysOverdue == 0 || daysOverdue <= c.MaxDaysOverdue
}

// Stages is the ordered escalation catalog.
var Stages = []Config{
	{
		Stage:           1,
		Name:            "Friendly Reminder",
		MinDaysOverdue:  1,
		MaxDaysOverdue:  4,
		EscalationLevel: 1,
		ToneDescriptions: map[models.TonePreference]string{
			models.ToneFriendly:     "A warm, gentle nudge about the pending invoice",
			models.ToneProfessional: "A polite reminder about the outstanding payment",
			models.ToneFirm:         "A clear notice about the overdue invoice",
		},
	},
	{
		Stage:           2,
		Name:            "Social Framing",
		MinDaysOverdue:  5,
		MaxDaysOverdue:  9,
		EscalationLevel: 2,
		ToneDescriptions: map[models.TonePreference]string{
			models.ToneFriendly:     "Referencing shared relationship and mutual benefit",
			models.ToneProfessional: "Emphasizing partnership value and payment norms",
			models.ToneFirm:         "Noting industry standards and contractual obligations",
		},
	},
	{
		Stage:           3,
		Name:            "Firm Reminder",
		MinDaysOverdue:  10,
		MaxDaysOverdue:  14,
		EscalationLevel: 3,
		ToneDescriptions: map[models.TonePreference]string{
			models.ToneFriendly:     "Expressing concern with understanding tone",
			models.ToneProfessional: "Direct reminder with consequences mentioned",
			models.ToneFirm:         "Clear statement of overdue status with next steps",
		},
	},
	{
		Stage:           4,
		Name:            "Escalation",
		MinDaysOverdue:  15,
		MaxDaysOverdue:  0, // unbounded
		EscalationLevel: 4,
		ToneDescriptions: map[models.TonePreference]string{
			models.ToneFriendly:     "Final friendly notice before formal action",
			models.ToneProfessional: "Formal escalation notice with timeline",
			models.ToneFirm:         "Final demand with specific consequences and deadlines",
		},
	},
}

// Resolve maps days overdue to the applicable stage. Returns nil for
// invoices that are not yet overdue. Anything beyond the defined windows
// lands on the final stage.
func Resolve(daysOverdue int) *Config {
	if daysOverdue < 1 {
		return nil
	}

	for i := range Stages {
		if Stages[i].contains(daysOverdue) {
			return &Stages[i]
		}
	}

	return &Stages[len(Stages)-1]
}
