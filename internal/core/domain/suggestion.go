package domain

import "time"

// SuggestedSlot is a proposed self-care slot. Suggestions come from a static
// sample library fitted around free calendar windows; they are not computed.
type SuggestedSlot struct {
	// Title is the suggested activity name.
	Title string `json:"title"`
	// Category classifies the suggestion.
	Category Category `json:"category"`
	// Start is the proposed start time.
	Start time.Time `json:"start"`
	// Duration is the proposed length.
	Duration time.Duration `json:"duration"`
	// Description is a short user-facing blurb.
	Description string `json:"description"`
}

// End returns the proposed end time.
func (s SuggestedSlot) End() time.Time {
	return s.Start.Add(s.Duration)
}

// SampleActivity is an entry in the static suggestion library.
type SampleActivity struct {
	Title       string
	Category    Category
	Duration    time.Duration
	Description string
}

// SampleLibrary is the static set of wellness activities suggestions are
// drawn from, in rotation order.
var SampleLibrary = []SampleActivity{
	{"Short walk", CategoryMovement, 20 * time.Minute, "Step outside and stretch your legs."},
	{"Breathing exercise", CategoryMindfulness, 10 * time.Minute, "Box breathing to reset between meetings."},
	{"Screen-free break", CategoryRest, 15 * time.Minute, "Step away from the screen entirely."},
	{"Desk stretch", CategoryMovement, 10 * time.Minute, "Loosen shoulders and neck at your desk."},
	{"Journal entry", CategoryMindfulness, 15 * time.Minute, "Write down three things from today."},
	{"Call a friend", CategorySocial, 20 * time.Minute, "Catch up with someone you've been meaning to."},
}
