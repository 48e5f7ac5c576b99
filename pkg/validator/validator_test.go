package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string `json:"name" validate:"required"`
	VoteType string `json:"vote_type" validate:"required,oneof=for against dq"`
}

func TestValidateStruct(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Name: "x", VoteType: "dq"}))

	err := ValidateStruct(sample{VoteType: "maybe"})
	require.Error(t, err)

	fields := TranslateError(err)
	assert.Equal(t, "failed on required", fields["name"])
	assert.Equal(t, "failed on oneof=for against dq", fields["vote_type"])
}

func TestTranslateError_Other(t *testing.T) {
	assert.Empty(t, TranslateError(nil))
	assert.Equal(t, map[string]string{"_": "boom"}, TranslateError(errors.New("boom")))
}
