package recommend

import (
	"encoding/json"

	"github.com/NERVsystems/bikeparkmcp/pkg/bikeindex"
	"github.com/NERVsystems/bikeparkmcp/pkg/osm"
)

// ThreatInstructions tells the reader of the result how to present it.
const ThreatInstructions = "Only the recentRecords are urgent: surface them to the user as recent thefts near this parking. " +
	"totalTheftCount is all-time context and must not be presented as recent activity."

// ThreatEntry is the trailing element of a serialized Result.
type ThreatEntry struct {
	ThreatSummary   string           `json:"threatSummary"`
	TotalTheftCount int              `json:"totalTheftCount"`
	RecentRecords   []bikeindex.Bike `json:"recentRecords"`
	Available       bool             `json:"available"`
	Error           string           `json:"error,omitempty"`
	Instructions    string           `json:"instructions"`
}

// Result is the parking list plus one theft summary.
type Result struct {
	Parking []osm.ParkingElement
	Threat  bikeindex.ThreatSummary
}

// Assemble combines the two branches. A non-nil threatErr replaces the
// summary with an "unavailable" placeholder.
func Assemble(parking []osm.ParkingElement, threat bikeindex.ThreatSummary, threatErr error) Result {
	if parking == nil {
		parking = []osm.ParkingElement{}
	}
	if threatErr != nil {
		threat = bikeindex.Unavailable(threatErr)
	}
	if threat.RecentRecords == nil {
		threat.RecentRecords = []bikeindex.Bike{}
	}
	return Result{Parking: parking, Threat: threat}
}

// Entry returns the trailing threat entry.
func (r Result) Entry() ThreatEntry {
	return ThreatEntry{
		ThreatSummary:   r.Threat.Message,
		TotalTheftCount: r.Threat.TotalTheftCount,
		RecentRecords:   r.Threat.RecentRecords,
		Available:       r.Threat.Available,
		Error:           r.Threat.Error,
		Instructions:    ThreatInstructions,
	}
}

// MarshalJSON encodes the result as one array: each parking element in
// order, then the threat entry.
func (r Result) MarshalJSON() ([]byte, error) {
	items := make([]any, 0, len(r.Parking)+1)
	for _, p := range r.Parking {
		items = append(items, p)
	}
	items = append(items, r.Entry())
	return json.Marshal(items)
}
