package core

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTextReader(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "a,b", "a,b"},
		{"utf-8 bom", "\xEF\xBB\xBFa,b", "a,b"},
		{"invalid byte", "caf\xe9", "caf\uFFFD"},
		{"bom then invalid byte", "\xEF\xBB\xBFcaf\xe9,S\xe3o", "caf\uFFFD,S\uFFFDo"},
		{"utf-16le bom", "\xFF\xFEa\x00,\x00b\x00", "a,b"},
		{"multibyte kept", "naïve", "naïve"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := io.ReadAll(newTextReader(strings.NewReader(tt.in)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}
