package dto

// VoteRequest casts a vote on the restaurant at a position of the displayed
// (highest total first) list
type VoteRequest struct {
	VoteType string `json:"vote_type" validate:"required,oneof=for against dq" example:"for"`
	Position *int   `json:"position" validate:"required,min=0" example:"0"`
}

// AddRestaurantRequest adds a votable restaurant to a poll
type AddRestaurantRequest struct {
	Name string `json:"name" validate:"required,max=100" example:"Pho Saigon"`
}
