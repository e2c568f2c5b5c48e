package generativeAI

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding prose", "Here is the plan: {\"a\":{\"b\":2}} hope it helps", `{"a":{"b":2}}`},
		{"no object", "sorry, I cannot", "sorry, I cannot"},
		{"unbalanced", "} oops {", "} oops {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanJSONResponse(tt.input))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Прив", Truncate("Привет", 4))
	assert.Equal(t, "Привет", Truncate("Привет", 6))
	assert.Equal(t, "Привет", Truncate("Привет", 100))
	assert.Equal(t, "Привет", Truncate("Привет", 0))
	assert.Equal(t, "", Truncate("", 3))
}
