package event

import "time"

// DateLayout is the wire format of candidate dates and answer keys
const DateLayout = "2006-01-02"

// Answer is a respondent's availability for one candidate date
type Answer string

const (
	AnswerYes   Answer = "yes"
	AnswerMaybe Answer = "maybe"
	AnswerNo    Answer = "no"
)

// Valid reports whether a is one of the known answers
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerMaybe, AnswerNo:
		return true
	default:
		return false
	}
}

// Event is a scheduling poll shared with participants through a link
type Event struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Memo           string    `json:"memo"`
	CandidateDates []string  `json:"candidate_dates"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasDate reports whether date is one of the candidate dates
func (e *Event) HasDate(date string) bool {
	for _, d := range e.CandidateDates {
		if d == date {
			return true
		}
	}
	return false
}

// Response is one participant's answer sheet
type Response struct {
	ID        string            `json:"id"`
	EventID   string            `json:"event_id"`
	Name      string            `json:"name"`
	Answers   map[string]Answer `json:"answers"`
	Comment   string            `json:"comment"`
	CreatedAt time.Time         `json:"created_at"`
}
