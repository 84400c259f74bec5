package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetLogger_ReturnsSingleton(t *testing.T) {
	IsTest = true

	first := GetLogger()
	second := GetLogger()

	assert.NotNil(t, first)
	assert.Same(t, first, second)
	assert.NoError(t, Close())
}

func TestMaskSensitiveString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		prefix int
		suffix int
		want   string
	}{
		{name: "empty", input: "", prefix: 2, suffix: 2, want: ""},
		{name: "short string fully masked", input: "abc", prefix: 2, suffix: 2, want: "***"},
		{name: "long string keeps ends", input: "abcdefghij", prefix: 2, suffix: 2, want: "ab...ij"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MaskSensitiveString(tt.input, tt.prefix, tt.suffix))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "", MaskEmail(""))
	assert.Equal(t, "jo...n@example.com", MaskEmail("johnathan@example.com"))
	assert.Equal(t, "***@example.com", MaskEmail("bob@example.com"))
	assert.Equal(t, "no...il", MaskEmail("not-an-email"))
}
