package payout

import "strings"

// Filter keeps the events that count toward the period's payout: inside the
// window, of a billable type, flagged viewable, not fraud-flagged, and
// carrying a recipient code. Surviving codes are canonicalized to upper case.
func Filter(period Period, events []Event, billable map[string]struct{}) []Event {
	kept := make([]Event, 0, len(events))
	for _, ev := range events {
		if !period.Contains(ev.Ts.UTC()) {
			continue
		}
		if _, ok := billable[ev.Type]; !ok {
			continue
		}
		if !ev.Viewable || ev.FraudFlagged {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(ev.AdmCode))
		if code == "" {
			continue
		}
		ev.AdmCode = code
		kept = append(kept, ev)
	}
	return kept
}

// Aggregate counts one unit per surviving event, keyed by recipient code.
func Aggregate(events []Event) Units {
	units := make(Units)
	for _, ev := range events {
		units[ev.AdmCode]++
	}
	return units
}
