package model

// Branch is a physical branch record. Referenced by membership entries via
// branch_id, never owned by them.
type Branch struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Region  string `json:"region,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
	Phone   string `json:"phone,omitempty"`
}
