package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name     string
		input    string
		contains string
		absent   string
	}{
		{"emphasis", "Climb *light*.", "<em>light</em>", ""},
		{"script stripped", "<script>alert(1)</script>ok", "ok", "<script"},
		{"handler stripped", `<a href="#" onclick="x()">a</a>`, "", "onclick"},
		{"plain url stays text", "see https://example.com", "https://example.com", "<a "},
		{"javascript link dropped", "[x](javascript:void)", "", "javascript:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.Render(tt.input))
			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
			if tt.absent != "" {
				assert.NotContains(t, got, tt.absent)
			}
		})
	}
}
