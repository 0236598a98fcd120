package entities

// Slot is one bookable start time on a given date, with a preformatted
// display range for the bot keyboard ("09:00 - 09:30").
type Slot struct {
	Time    string `json:"time"`
	Display string `json:"display"`
}
