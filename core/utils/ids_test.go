package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeID(t *testing.T) {
	const want = "01234567-89ab-cdef-0123-456789abcdef"

	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"Compact", "0123456789abcdef0123456789abcdef", want, false},
		{"Uppercase", "0123456789ABCDEF0123456789ABCDEF", want, false},
		{"Dashed", want, want, false},
		{"Slug", "My-Page-0123456789abcdef0123456789abcdef", want, false},
		{"URL", "https://www.notion.so/team/My-Page-0123456789abcdef0123456789abcdef?pvs=4", want, false},
		{"QueryWithoutScheme", "0123456789abcdef0123456789abcdef?v=1", want, false},
		{"TrailingSlash", "https://www.notion.so/0123456789abcdef0123456789abcdef/", want, false},
		{"Empty", "  ", "", true},
		{"TooShort", "abc", "", true},
		{"NotHex", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeID(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
