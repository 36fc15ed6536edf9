package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("lookup: %w", NewDomainError("NOT_FOUND", "payment not found"))

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrAlreadyExists))
	assert.Equal(t, "payment not found", errors.Unwrap(wrapped).Error())
}

func TestFilter_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		in       Filter
		page     int
		pageSize int
		offset   int
	}{
		{"zero values", Filter{}, 1, 20, 0},
		{"second page", Filter{Page: 2, PageSize: 10}, 2, 10, 10},
		{"oversized page", Filter{Page: 1, PageSize: 500}, 1, MaxPageSize, 0},
		{"negative page", Filter{Page: -3, PageSize: 5}, 1, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.in.Normalize()
			assert.Equal(t, tt.page, f.Page)
			assert.Equal(t, tt.pageSize, f.PageSize)
			assert.Equal(t, tt.offset, f.Offset())
		})
	}
}

func TestNewPaginated(t *testing.T) {
	p := NewPaginated([]int{1, 2}, 21, 1, 10)
	assert.Equal(t, 3, p.TotalPages)
	assert.Len(t, p.Items, 2)

	assert.Equal(t, 2, NewPaginated([]int{}, 20, 1, 10).TotalPages)
	assert.Zero(t, NewPaginated([]int{}, 0, 1, 10).TotalPages)
	assert.Zero(t, NewPaginated([]int{}, 5, 1, 0).TotalPages)
}
