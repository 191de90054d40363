package analysis

import "github.com/steermate/steermate-backend-go/internal/models"

// Advisory messages, one per rule.
const (
	MsgHardBrake   = "Try to anticipate stops earlier to reduce hard braking events."
	MsgHarshAccel  = "Accelerate more gradually for better fuel efficiency and safety."
	MsgOverspeed   = "Pay closer attention to speed limit signs and maintain safe speeds."
	MsgUnsafeCurve = "Reduce speed before entering curves for safer cornering."
	MsgGreat       = "Great driving! Keep up the safe driving habits."
)

type recommendationRule struct {
	eventType string
	threshold int // fires when count > threshold
	message   string
}

// Rules are evaluated in this order; every matching rule fires.
var recommendationRules = []recommendationRule{
	{models.EventHardBrake, 3, MsgHardBrake},
	{models.EventHarshAccel, 3, MsgHarshAccel},
	{models.EventOverspeed, 5, MsgOverspeed},
	{models.EventUnsafeCurve, 2, MsgUnsafeCurve},
}

// Recommendations derives advisory messages from an event breakdown. The
// result depends only on the counts, never on event order. If no rule fires
// the single positive message is returned.
func Recommendations(breakdown map[string]int) []string {
	var out []string
	for _, rule := range recommendationRules {
		if breakdown[rule.eventType] > rule.threshold {
			out = append(out, rule.message)
		}
	}
	if len(out) == 0 {
		out = append(out, MsgGreat)
	}
	return out
}
