package postgres

import (
	"fmt"
	"strings"
)

// conditions accumulates WHERE clauses with numbered placeholders.
// Each clause is a format string whose %d (or %[1]d when the argument is
// used more than once) is replaced with the argument's position.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

// placeholder appends arg and returns its placeholder, for LIMIT and OFFSET
func (c *conditions) placeholder(arg any) string {
	c.args = append(c.args, arg)
	return fmt.Sprintf("$%d", len(c.args))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

// likePattern escapes LIKE metacharacters and wraps s in wildcards
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.TrimSpace(s)) + "%"
}
