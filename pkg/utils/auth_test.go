package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer  abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			token, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.token, token)
		})
	}
}

func TestAllowList(t *testing.T) {
	l := NewAllowList([]string{"aspenas", " Aaron ", ""})
	assert.True(t, l.Allowed("aspenas"))
	assert.True(t, l.Allowed("AARON"))
	assert.False(t, l.Allowed("tyler"))
	assert.False(t, l.Allowed(""))
	assert.Len(t, l, 2)
}
