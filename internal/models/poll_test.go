package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func votes(forCount, againstCount, dqCount int) map[string]VoteType {
	m := map[string]VoteType{}
	n := 0
	add := func(count int, v VoteType) {
		for i := 0; i < count; i++ {
			n++
			m[string(rune('a'+n))] = v
		}
	}
	add(forCount, VoteFor)
	add(againstCount, VoteAgainst)
	add(dqCount, VoteDQ)
	return m
}

func TestRestaurant_TotalVotes(t *testing.T) {
	tests := []struct {
		name string
		r    Restaurant
		want int
	}{
		{"no votes", Restaurant{}, 0},
		{"only for", Restaurant{Votes: votes(3, 0, 0)}, 3},
		{"mixed", Restaurant{Votes: votes(4, 1, 1)}, 2},
		{"negative", Restaurant{Votes: votes(0, 2, 0)}, -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.TotalVotes())
		})
	}
}

func TestRestaurant_Disqualified(t *testing.T) {
	assert.False(t, Restaurant{Votes: votes(2, 1, 0)}.Disqualified())
	assert.True(t, Restaurant{Votes: votes(2, 0, 1)}.Disqualified())
}

func TestSortByVotes_DescendingAndStable(t *testing.T) {
	items := []Restaurant{
		{ID: "A", Votes: votes(3, 0, 0)},
		{ID: "B", Votes: votes(7, 0, 0)},
		{ID: "C", Votes: votes(7, 0, 0)},
		{ID: "D", Votes: votes(0, 1, 0)},
	}

	sorted := SortByVotes(items)

	ids := make([]string, len(sorted))
	for i, r := range sorted {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"B", "C", "A", "D"}, ids)
	assert.Equal(t, "A", items[0].ID, "input must not be reordered")
}

func TestPoll_RestaurantsOrEmpty(t *testing.T) {
	var nilPoll *Poll
	assert.NotNil(t, nilPoll.RestaurantsOrEmpty())
	assert.Empty(t, nilPoll.RestaurantsOrEmpty())
	assert.Empty(t, (&Poll{}).RestaurantsOrEmpty())
	assert.Len(t, (&Poll{Restaurants: []Restaurant{{ID: "x"}}}).RestaurantsOrEmpty(), 1)
}

func TestParseVoteType(t *testing.T) {
	v, err := ParseVoteType("dq")
	require.NoError(t, err)
	assert.Equal(t, VoteDQ, v)

	_, err = ParseVoteType("maybe")
	assert.Error(t, err)
}
