// internal/followup/stage/decision.go
package stage

import (
	"fmt"
	"time"
)

// Decision is the outcome of evaluating one invoice for follow-up.
type Decision struct {
	ShouldSend bool
	Stage      *Config
	Reason     string
}

// Decide determines whether a follow-up should fire now and at which stage.
//
// Rules, in order: not-yet-overdue invoices never send; a stage already sent
// is not re-sent, except the final stage which may re-fire once
// 2×intervalHours have elapsed; reaching a new stage sends regardless of the
// interval; otherwise the configured interval must have elapsed since the
// last send.
func Decide(now time.Time, daysOverdue, currentStage int, lastSentAt *time.Time, intervalHours int) Decision {
	if daysOverdue < 1 {
		return Decision{ShouldSend: false, Stage: nil, Reason: "Invoice is not yet overdue"}
	}

	target := Resolve(daysOverdue)
	if target == nil {
		return Decision{ShouldSend: false, Stage: nil, Reason: "No applicable stage found"}
	}

	// Already sent for this stage. The final stage re-fires periodically
	// since there is nothing further to escalate to; the 2x threshold is
	// deliberate and asymmetric versus earlier stages.
	if currentStage >= target.Stage && lastSentAt != nil {
		hoursSinceLastSent := now.Sub(*lastSentAt).Hours()

		if !target.Final() || hoursSinceLastSent < float64(intervalHours)*2 {
			return Decision{
				ShouldSend: false,
				Stage:      target,
				Reason:     fmt.Sprintf("Already sent stage %d follow-up", target.Stage),
			}
		}
	}

	// New stage to escalate to: escalation always beats interval throttling.
	if target.Stage > currentStage {
		return Decision{
			ShouldSend: true,
			Stage:      target,
			Reason:     fmt.Sprintf("Escalating to stage %d: %s", target.Stage, target.Name),
		}
	}

	// Same stage: require the configured spacing since the last send.
	if lastSentAt != nil {
		hoursSinceLastSent := now.Sub(*lastSentAt).Hours()

		if hoursSinceLastSent < float64(intervalHours) {
			return Decision{
				ShouldSend: false,
				Stage:      target,
				Reason:     fmt.Sprintf("Waiting for interval (%.1fh / %dh)", hoursSinceLastSent, intervalHours),
			}
		}
	}

	return Decision{
		ShouldSend: true,
		Stage:      target,
		Reason:     fmt.Sprintf("Sending stage %d: %s", target.Stage, target.Name),
	}
}
