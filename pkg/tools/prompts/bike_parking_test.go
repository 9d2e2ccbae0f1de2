package prompts

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func promptText(t *testing.T, msg mcp.PromptMessage) string {
	t.Helper()
	text, ok := msg.Content.(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestBikeParkingAssistantHandler(t *testing.T) {
	req := mcp.GetPromptRequest{}
	req.Params.Name = AssistantPromptName
	req.Params.Arguments = map[string]string{
		"time":        "18:30",
		"timeOfDay":   "aften",
		"currentBike": "a Brompton M6L",
	}

	result, err := BikeParkingAssistantHandler(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, result.Messages, 2)

	system := promptText(t, result.Messages[0])
	assert.Contains(t, system, "a Brompton M6L")
	assert.Contains(t, system, "18:30")
	assert.Contains(t, system, "find-bike-parking")
	assert.Contains(t, system, "recentRecords")

	assert.Equal(t, mcp.RoleUser, result.Messages[1].Role)
	assert.Equal(t, "Good aften. Where can I safely park a Brompton M6L?", promptText(t, result.Messages[1]))
}

func TestBikeParkingAssistantHandlerRejectsArguments(t *testing.T) {
	tests := []struct {
		name     string
		args     map[string]string
		contains string
	}{
		{
			name:     "no arguments",
			contains: `missing required argument "time"`,
		},
		{
			name:     "missing bike",
			args:     map[string]string{"time": "08:00", "timeOfDay": "morgen"},
			contains: `missing required argument "currentBike"`,
		},
		{
			name:     "time of day outside enum",
			args:     map[string]string{"time": "18:30", "timeOfDay": "evening", "currentBike": "a Brompton"},
			contains: "timeOfDay must be one of morgen, mittag, aften, nacht",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.GetPromptRequest{}
			req.Params.Arguments = tt.args

			_, err := BikeParkingAssistantHandler(context.Background(), req)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}
