package generation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redspec/internal/domain"
)

func TestCommandGenerator(t *testing.T) {
	tests := []struct {
		name     string
		command  string
		wantText string
		wantKind domain.GenerationErrorKind
	}{
		{
			name:     "echoes stdin",
			command:  "cat",
			wantText: "sys\n\nUSER: hello",
		},
		{
			name:     "json envelope",
			command:  `echo 'starting'; echo '{"output": "[QUESTION]Why?[/QUESTION]", "success": true}'`,
			wantText: "[QUESTION]Why?[/QUESTION]",
		},
		{
			name:     "reported failure",
			command:  `echo '{"success": false, "error": "agent crashed"}'`,
			wantKind: domain.GenerationFailed,
		},
		{
			name:     "non-zero exit",
			command:  "echo broken >&2; exit 3",
			wantKind: domain.GenerationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewCommandGenerator(tt.command)
			require.NoError(t, err)

			resp, err := g.Generate(context.Background(), &Request{SystemPrompt: "sys", Transcript: "USER: hello"})
			if tt.wantKind == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, resp.Text)
				return
			}
			var genErr *domain.GenerationError
			require.ErrorAs(t, err, &genErr)
			assert.Equal(t, tt.wantKind, genErr.Kind)
		})
	}
}

func TestCommandGenerator_Timeout(t *testing.T) {
	g, err := NewCommandGenerator("sleep 5")
	require.NoError(t, err)

	_, err = WithTimeout(g, 50*time.Millisecond).Generate(context.Background(), &Request{Transcript: "USER: hi"})
	var genErr *domain.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, domain.GenerationTimeout, genErr.Kind)
}

func TestNewCommandGenerator_Empty(t *testing.T) {
	_, err := NewCommandGenerator("  ")
	assert.Error(t, err)
}
