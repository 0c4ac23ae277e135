package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOp(t *testing.T) {
	tests := []struct {
		spec  string
		want  Op
		apply int // result for x = 10
	}{
		{"add 1", Op{OpAdd, 1}, 11},
		{"  SUB   4 ", Op{OpSub, 4}, 6},
		{"mul '-3'", Op{OpMul, -3}, -30},
		{`div "3"`, Op{OpDiv, 3}, 3},
		{"const 42", Op{OpConst, 42}, 42},
		{"neg", Op{OpNeg, 0}, -10},
		{"# scale it\nmul 2", Op{OpMul, 2}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			op, err := ParseOp(tt.spec)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op)
			assert.Equal(t, tt.apply, op.Apply(10))
		})
	}
}

func TestParseOp_Errors(t *testing.T) {
	tests := []struct {
		spec    string
		wantErr string
	}{
		{"", "empty callback"},
		{"# only a comment", "empty callback"},
		{"add", "add takes exactly one argument"},
		{"add 1 2", "add takes exactly one argument"},
		{"neg 1", "neg takes no argument"},
		{"mul x", "mul: invalid argument 'x'"},
		{"div 0", "div: division by zero"},
		{"sqrt 4", "unknown callback 'sqrt'"},
	}

	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			_, err := ParseOp(tt.spec)
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}

func TestOp_String(t *testing.T) {
	assert.Equal(t, "add 1", Op{OpAdd, 1}.String())
	assert.Equal(t, "neg", Op{Kind: OpNeg}.String())
}
