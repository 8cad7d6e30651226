package models

import "time"

// DuplicateMember is one transaction inside a duplicate group.
type DuplicateMember struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DuplicateGroup is a set of stored transactions that likely describe the
// same real-world event. Members are ordered by CreatedAt.
type DuplicateGroup struct {
	Date         time.Time         `json:"date"`
	Amount       Amount            `json:"amount"`
	Type         TransactionType   `json:"type"`
	Category     string            `json:"category"`
	Transactions []DuplicateMember `json:"transactions"`
}

// RecencyGap is the time between the first and last member's creation.
func (g DuplicateGroup) RecencyGap() time.Duration {
	if len(g.Transactions) < 2 {
		return 0
	}
	return g.Transactions[len(g.Transactions)-1].CreatedAt.Sub(g.Transactions[0].CreatedAt)
}

// IDs returns the member ids in order.
func (g DuplicateGroup) IDs() []int64 {
	ids := make([]int64, len(g.Transactions))
	for i, m := range g.Transactions {
		ids[i] = m.ID
	}
	return ids
}
