package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, FormatFull, s.Format)
	assert.True(t, s.Frontmatter)
	assert.Equal(t, 500*time.Millisecond, s.BatchInterval)
	assert.Empty(t, s.ManifestDir)
	assert.Empty(t, s.GitHubToken)
	assert.NotNil(t, s.Sessions)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected Format
	}{
		{"", FormatFull},
		{"full", FormatFull},
		{"user-only", FormatUserOnly},
		{"code-only", FormatCodeOnly},
		{"compact", FormatCompact},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := ParseFormat(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func TestParseFormat_Unknown(t *testing.T) {
	for _, input := range []string{"FULL", "markdown", "user_only", "html"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseFormat(input)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestFormats(t *testing.T) {
	assert.Equal(t, []Format{FormatFull, FormatUserOnly, FormatCodeOnly, FormatCompact}, Formats())
}
