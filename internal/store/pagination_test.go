package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultPaginationParams(t *testing.T) {
	params := DefaultPaginationParams()
	assert.Equal(t, 50, params.Limit)
	assert.Zero(t, params.Offset)
}

func TestPaginationParams_Validate(t *testing.T) {
	tests := []struct {
		name           string
		input          PaginationParams
		expectedLimit  int
		expectedOffset int
	}{
		{"valid", PaginationParams{Limit: 20, Offset: 40}, 20, 40},
		{"zero limit defaults", PaginationParams{}, 50, 0},
		{"negative limit defaults", PaginationParams{Limit: -1}, 50, 0},
		{"limit capped", PaginationParams{Limit: 5000}, 200, 0},
		{"negative offset", PaginationParams{Limit: 10, Offset: -3}, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.input
			p.Validate()
			assert.Equal(t, tt.expectedLimit, p.Limit)
			assert.Equal(t, tt.expectedOffset, p.Offset)
		})
	}
}

func TestNewPaginatedResult(t *testing.T) {
	r := NewPaginatedResult([]int{1, 2}, 5, PaginationParams{Limit: 2, Offset: 0})
	assert.True(t, r.HasMore)

	r = NewPaginatedResult([]int{5}, 5, PaginationParams{Limit: 2, Offset: 4})
	assert.False(t, r.HasMore)

	empty := NewPaginatedResult[int](nil, 0, PaginationParams{Limit: 2})
	assert.NotNil(t, empty.Items)
	assert.False(t, empty.HasMore)
}
