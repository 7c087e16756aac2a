package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchExpression(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"", ""},
		{"  ", ""},
		{"schema", `"schema"*`},
		{"db schema", `"db" "schema"*`},
		{`say "hi"`, `"say" """hi"""*`},
		{"release OR (", `"release" "OR"*`},
		{"NOT x", `"NOT" "x"*`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, matchExpression(tt.query), "query %q", tt.query)
	}
}
