package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"10.0.0.7", "10.0.0.7"},
		{" 10.0.0.7 ", "10.0.0.7"},
		{"fe80::1%eth0", "fe80::1"},
		{"", "unknown"},
		{"not-an-ip", "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClientKey(tt.in, "unknown"), tt.in)
	}
}
