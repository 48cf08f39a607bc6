package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter(t *testing.T) {
	var f filter
	assert.Equal(t, "", f.where())

	f.add("o.user_id = ?", uint64(4))
	f.like("  ", "u.username")
	f.like("bob", "u.username", "u.email")

	assert.Equal(t, " WHERE o.user_id = ? AND (u.username LIKE ? OR u.email LIKE ?)", f.where())
	assert.Equal(t, []any{uint64(4), "%bob%", "%bob%"}, f.args)
	assert.Equal(t, []any{uint64(4), "%bob%", "%bob%", 20, 40}, f.page(20, 40))
	assert.Len(t, f.args, 3)
}
