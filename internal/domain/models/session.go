package models

import "time"

// Shift labels used in listings and summaries.
const (
	ShiftMorning = "morning"
	ShiftNight   = "night"
)

// CollectionSession groups the records saved together for one shift.
// FactoryEntry is the bulk milk forwarded to the factory and may stay nil.
type CollectionSession struct {
	ID           string             `bson:"_id" json:"id"`
	Records      []CollectionRecord `bson:"records" json:"list_of_entry"`
	FactoryEntry *CollectionRecord  `bson:"factory_entry,omitempty" json:"factory_entry,omitempty"`
	Timestamp    time.Time          `bson:"timestamp" json:"timestamp"`
	IsNight      bool               `bson:"is_night" json:"is_night"`
}

// Shift returns the shift label of the session.
func (s CollectionSession) Shift() string {
	return ShiftLabel(s.IsNight)
}

// ShiftLabel maps the night flag to its label.
func ShiftLabel(isNight bool) string {
	if isNight {
		return ShiftNight
	}
	return ShiftMorning
}
