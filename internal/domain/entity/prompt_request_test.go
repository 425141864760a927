package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPriorTopicsNewestFirstWithoutDuplicates(t *testing.T) {
	s := ContextSnapshot{Requests: []ParsedRequest{
		{Topic: "vegan baking"},
		{Topic: "ai ethics"},
		{Topic: ""},
		{Topic: "vegan baking"},
		{Topic: "hidden gems in europe"},
	}}

	assert.Equal(t, []string{"hidden gems in europe", "vegan baking", "ai ethics"}, s.PriorTopics())
}

func TestPriorTopicsEmpty(t *testing.T) {
	assert.Empty(t, ContextSnapshot{}.PriorTopics())
}
