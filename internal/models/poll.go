package models

import (
	"fmt"
	"sort"
	"time"
)

// PollsCollection is the collection every poll document lives in.
const PollsCollection = "polls"

type VoteType string

const (
	VoteFor     VoteType = "for"
	VoteAgainst VoteType = "against"
	VoteDQ      VoteType = "dq"
)

func (v VoteType) Valid() bool {
	switch v {
	case VoteFor, VoteAgainst, VoteDQ:
		return true
	}
	return false
}

func ParseVoteType(s string) (VoteType, error) {
	v := VoteType(s)
	if !v.Valid() {
		return "", fmt.Errorf("unknown vote type %q", s)
	}
	return v, nil
}

// weight is how much a single vote of this type moves the total.
func (v VoteType) weight() int {
	switch v {
	case VoteFor:
		return 1
	case VoteAgainst, VoteDQ:
		return -1
	}
	return 0
}

type Poll struct {
	Title       string       `json:"title"`
	Restaurants []Restaurant `json:"restaurants"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Restaurant is one votable item. Votes is keyed by voter ID; a voter holds at
// most one vote per restaurant.
type Restaurant struct {
	ID    string              `json:"id"`
	Name  string              `json:"name"`
	Votes map[string]VoteType `json:"votes,omitempty"`
}

// TotalVotes is the number of "for" votes minus "against" and "dq" votes.
func (r Restaurant) TotalVotes() int {
	total := 0
	for _, v := range r.Votes {
		total += v.weight()
	}
	return total
}

// Disqualified reports whether anyone cast a DQ vote.
func (r Restaurant) Disqualified() bool {
	for _, v := range r.Votes {
		if v == VoteDQ {
			return true
		}
	}
	return false
}

// SortByVotes returns a copy of items ordered by TotalVotes, highest first.
// Items with equal totals keep their relative order.
func SortByVotes(items []Restaurant) []Restaurant {
	sorted := make([]Restaurant, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalVotes() > sorted[j].TotalVotes()
	})
	return sorted
}

// RestaurantsOrEmpty returns the poll's items, or an empty slice when the poll
// or its items are absent.
func (p *Poll) RestaurantsOrEmpty() []Restaurant {
	if p == nil || p.Restaurants == nil {
		return []Restaurant{}
	}
	return p.Restaurants
}
