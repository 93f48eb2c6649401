package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aeromaint/docval/internal/rules"
)

func TestResolveBehavior(t *testing.T) {
	seqRules := []rules.SeqRule{
		{Prefix: "9.", Mode: rules.BehaviorStrictReference},
		{Prefix: "9.9", Mode: rules.BehaviorExecutionOnly},
		{Prefix: "4.", Mode: rules.BehaviorExecutionOnly},
	}

	tests := []struct {
		name string
		code string
		want rules.BehaviorMode
	}{
		{"empty code", "", rules.BehaviorDefault},
		{"whitespace only", "   ", rules.BehaviorDefault},
		{"exact match", "9.", rules.BehaviorStrictReference},
		{"prefix match", "9.12", rules.BehaviorStrictReference},
		{"longest prefix wins", "9.91", rules.BehaviorExecutionOnly},
		{"exact beats prefix", "9.9", rules.BehaviorExecutionOnly},
		{"execution prefix", "4.1", rules.BehaviorExecutionOnly},
		{"unknown code", "10.1", rules.BehaviorDefault},
		{"code is trimmed", " 4.1 ", rules.BehaviorExecutionOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveBehavior(tt.code, seqRules))
		})
	}
}

func TestResolveBehavior_NoRules(t *testing.T) {
	assert.Equal(t, rules.BehaviorDefault, ResolveBehavior("9.1", nil))
}
