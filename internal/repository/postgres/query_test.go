package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditions(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var c conditions
		assert.Equal(t, "", c.where())
		assert.Equal(t, "$1", c.placeholder(50))
	})

	t.Run("numbered placeholders", func(t *testing.T) {
		var c conditions
		c.add("event_id = $%d", "e")
		c.add("(name ILIKE $%[1]d OR email ILIKE $%[1]d)", "%ada%")

		assert.Equal(t, "WHERE event_id = $1 AND (name ILIKE $2 OR email ILIKE $2)", c.where())
		assert.Equal(t, "$3", c.placeholder(10))
		assert.Equal(t, "$4", c.placeholder(0))
		assert.Equal(t, []any{"e", "%ada%", 10, 0}, c.args)
	})
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ada", "%ada%"},
		{"  ada ", "%ada%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\x`, `%c:\\x%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, likePattern(tt.in))
		})
	}
}
