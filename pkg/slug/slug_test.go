package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation dropped", "Hello, World!", "hello-world"},
		{"multiple spaces collapse", "a   b", "a-b"},
		{"existing hyphens collapse", "a -- b", "a-b"},
		{"leading and trailing trimmed", "  Hello  ", "hello"},
		{"underscores kept", "snake_case title", "snake_case-title"},
		{"digits kept", "Story 42", "story-42"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}

func TestWithSuffix(t *testing.T) {
	assert.Equal(t, "hello-world", WithSuffix("hello-world", 0))
	assert.Equal(t, "hello-world-1", WithSuffix("hello-world", 1))
	assert.Equal(t, "hello-world-12", WithSuffix("hello-world", 12))
}
