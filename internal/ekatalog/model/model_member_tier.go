package model

// MemberTier is an independent configuration entity referenced by name from
// Membership.MemberTier. It takes no part in the approval state machine.
type MemberTier struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	MinPoints         int64   `json:"min_points"`
	DiscountRate      float64 `json:"discount_rate"` // decimal fraction, e.g. 0.05
	InactivityMonths  int     `json:"inactivity_months"`
	InactivityPenalty int64   `json:"inactivity_penalty_points"`
}
