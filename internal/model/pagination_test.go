package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPage(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 20}, NewPage(0, 0))
	assert.Equal(t, Page{Page: 3, Limit: 10}, NewPage(3, 10))
	assert.Equal(t, Page{Page: 1, Limit: MaxLimit}, NewPage(-1, 500))
}

func TestPage_OffsetAndPaginate(t *testing.T) {
	p := NewPage(3, 10)
	assert.Equal(t, 20, p.Offset())

	assert.Equal(t, Pagination{Page: 3, Limit: 10, Total: 21, Pages: 3}, p.Paginate(21))
	assert.Equal(t, Pagination{Page: 3, Limit: 10, Total: 20, Pages: 2}, p.Paginate(20))
	assert.Equal(t, 0, p.Paginate(0).Pages)
}
