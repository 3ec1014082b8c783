package helper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseScore(t *testing.T) {
	tests := []struct {
		reply string
		want  float64
		ok    bool
	}{
		{reply: "0.83", want: 0.83, ok: true},
		{reply: "  0.9\n", want: 0.9, ok: true},
		{reply: "Score: .75 (fairly confident)", want: 0.75, ok: true},
		{reply: "1", want: 1, ok: true},
		{reply: "0.4 or maybe 0.6", want: 0.4, ok: true},
		{reply: "same issue", ok: false},
		{reply: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			got, ok := ParseScore(tt.reply)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}
