package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 45)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 0, p.Offset())
}

func TestPaginationFromOffset(t *testing.T) {
	p := PaginationFromOffset(2, 2, 5)

	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 2, p.PerPage)
	assert.Equal(t, 5, p.Total)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, 2, p.Offset())
}

func TestPaginationFromOffsetUnsetQuery(t *testing.T) {
	p := PaginationFromOffset(0, 0, 7)

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 1, p.TotalPages)
}
