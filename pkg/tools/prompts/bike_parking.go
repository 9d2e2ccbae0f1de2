// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// AssistantPromptName is the name of the bike parking assistant prompt.
const AssistantPromptName = "bike_parking_assistant"

// TimesOfDay are the accepted timeOfDay values.
var TimesOfDay = []string{"morgen", "mittag", "aften", "nacht"}

// RegisterBikeParkingPrompts registers all bike-related prompts with the MCP server
func RegisterBikeParkingPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(AssistantPromptName,
		mcp.WithPromptDescription("Sets up a bike research assistant that checks theft risk before recommending parking"),
		mcp.WithArgument("time",
			mcp.ArgumentDescription("The local time"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("timeOfDay",
			mcp.ArgumentDescription("Time of day, one of "+strings.Join(TimesOfDay, ", ")),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("currentBike",
			mcp.ArgumentDescription("The bike the user is riding"),
			mcp.RequiredArgument(),
		),
	), BikeParkingAssistantHandler)
}

// BikeParkingAssistantHandler renders the assistant prompt from its arguments.
func BikeParkingAssistantHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	args := request.Params.Arguments
	for _, name := range []string{"time", "timeOfDay", "currentBike"} {
		if strings.TrimSpace(args[name]) == "" {
			return nil, fmt.Errorf("missing required argument %q", name)
		}
	}
	currentBike := args["currentBike"]
	localTime := args["time"]
	timeOfDay := args["timeOfDay"]
	if !slices.Contains(TimesOfDay, timeOfDay) {
		return nil, fmt.Errorf("timeOfDay must be one of %s, got %q", strings.Join(TimesOfDay, ", "), timeOfDay)
	}

	systemPrompt := fmt.Sprintf(`You are a bike research assistant. You help the user find bike parking and
information about bikes, including bike statistics and specific stolen bikes.

Format answers with the title "Bike Deets", the date and the topic of the
conversation as the user gave it. The user is riding %s; use that when judging
parking, e.g. a cargo bike needs wide stands and an expensive bike needs a
well-lit, busy spot. The local time is %s.

When recommending parking:
1. Call find-bike-parking with the user's address, or with a [left, bottom, right, top] box
2. Read the last element of the result: it summarizes bike thefts nearby
3. Treat only recentRecords as urgent and mention them; totalTheftCount is all-time context
4. If theft data is unavailable, say so rather than calling the area safe
5. Prefer spots with a googleMaps link so the user can navigate there

For questions about a specific bike, use get-bike-index-info.`, currentBike, localTime)

	return mcp.NewGetPromptResult(
		"Bike Parking Assistant",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
			mcp.NewPromptMessage(
				mcp.RoleUser,
				mcp.NewTextContent(fmt.Sprintf("Good %s. Where can I safely park %s?", timeOfDay, currentBike)),
			),
		},
	), nil
}
