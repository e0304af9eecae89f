package users

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tinegaCollins/user-manager/internal/domain"
)

func boolPtr(b bool) *bool { return &b }

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name  string
		in    Filter
		where string
		args  []any
	}{
		{"empty", Filter{}, "", nil},
		{"blank search", Filter{Search: "   "}, "", nil},
		{"role", Filter{Role: "ADMIN"}, "WHERE role = $1", []any{"ADMIN"}},
		{
			"all",
			Filter{Search: " ada ", Role: "USER", IsActive: boolPtr(false)},
			"WHERE role = $1 AND is_active = $2 AND (name ILIKE $3 OR email ILIKE $3)",
			[]any{"USER", false, "%ada%"},
		},
		{
			"wildcards are literal",
			Filter{Search: `50%_off\`},
			"WHERE (name ILIKE $1 OR email ILIKE $1)",
			[]any{`%50\%\_off\\%`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := whereClause(tt.in)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.args, args)
		})
	}
}

func TestFilterMatches(t *testing.T) {
	u := domain.User{Name: "Ada Lovelace", Email: "ada@x.io", Role: domain.RoleAdmin, IsActive: true}

	assert.True(t, Filter{}.matches(u))
	assert.True(t, Filter{Search: "LOVE"}.matches(u))
	assert.True(t, Filter{Search: " x.io "}.matches(u))
	assert.False(t, Filter{Search: "bob"}.matches(u))
	assert.False(t, Filter{Search: "%"}.matches(u))
	assert.True(t, Filter{Role: "ADMIN"}.matches(u))
	assert.False(t, Filter{Role: "admin"}.matches(u))
	assert.True(t, Filter{IsActive: boolPtr(true)}.matches(u))
	assert.False(t, Filter{IsActive: boolPtr(false)}.matches(u))
	assert.False(t, Filter{Search: "ada", Role: "USER"}.matches(u))
}
