package domain

import "sync/atomic"

// ActionPriority is the AIAG-VDA mitigation urgency tier.
type ActionPriority string

// Action priority tiers, encoded with the single-letter codes used by the
// interchange format.
const (
	PriorityLow    ActionPriority = "L"
	PriorityMedium ActionPriority = "M"
	PriorityHigh   ActionPriority = "H"
)

// Label returns the human readable tier name.
func (p ActionPriority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

// Rank orders tiers so that higher urgency compares greater. Unknown values rank 0.
func (p ActionPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// PriorityPolicy maps a severity/occurrence/detection triple to a tier.
// Implementations must be pure and total over [0,10].
type PriorityPolicy func(severity, occurrence, detection int) ActionPriority

var activePolicy atomic.Pointer[PriorityPolicy]

func init() {
	p := PriorityPolicy(SimplifiedAIAGVDA)
	activePolicy.Store(&p)
}

// Classify returns the action priority for the given ratings using the active
// policy. Ratings outside [0,10] are clamped; 0 means unset and weighs lowest.
func Classify(severity, occurrence, detection int) ActionPriority {
	policy := *activePolicy.Load()
	return policy(ClampRating(severity), ClampRating(occurrence), ClampRating(detection))
}

// SetPriorityPolicy installs policy for all subsequent Classify calls and
// returns a function restoring the previous one. A nil policy restores the default.
func SetPriorityPolicy(policy PriorityPolicy) (restore func()) {
	if policy == nil {
		policy = SimplifiedAIAGVDA
	}
	prev := activePolicy.Swap(&policy)
	return func() { activePolicy.Store(prev) }
}

// SimplifiedAIAGVDA approximates the AIAG-VDA action priority table. It is
// not the full standard matrix; install a stricter policy via
// SetPriorityPolicy for standards compliance.
func SimplifiedAIAGVDA(s, o, d int) ActionPriority {
	switch {
	case s >= 9:
		if o >= 6 || (o >= 4 && d >= 7) {
			return PriorityHigh
		}
		return PriorityMedium
	case s >= 7:
		if o >= 8 || (o >= 6 && d >= 5) || (o >= 4 && d >= 7) {
			return PriorityHigh
		}
		return PriorityMedium
	case s >= 4:
		if (o >= 8 && d >= 7) || (o >= 6 && d >= 9) {
			return PriorityHigh
		}
		return PriorityMedium
	default:
		return PriorityLow
	}
}
