package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Documents", "documents"},
		{"spaces", "Quarterly Reports", "quarterly-reports"},
		{"punctuation collapses", "Quarterly Reports (2026)", "quarterly-reports-2026"},
		{"diacritics stripped", "Résumé Drafts", "resume-drafts"},
		{"repeated separators", "a  --  b", "a-b"},
		{"leading and trailing junk", "  !!Photos!!  ", "photos"},
		{"digits kept", "Q3 2026", "q3-2026"},
		{"nothing usable", "!!!", "untitled"},
		{"empty", "", "untitled"},
		{"non latin falls back", "日本語", "untitled"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}
