package event

// CreateEventRequest represents the request to create a scheduling event
type CreateEventRequest struct {
	Title          string   `json:"title"`
	Memo           string   `json:"memo"`
	CandidateDates []string `json:"candidate_dates"`
}

// SubmitResponseRequest represents a participant's answers
type SubmitResponseRequest struct {
	Name    string            `json:"name"`
	Answers map[string]Answer `json:"answers"`
	Comment string            `json:"comment"`
}

// EventResponse represents an event in responses
type EventResponse struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Memo           string   `json:"memo"`
	CandidateDates []string `json:"candidate_dates"`
	CreatedAt      string   `json:"created_at"`
}

// ResponseResponse represents a submitted answer sheet in responses
type ResponseResponse struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Answers   map[string]Answer `json:"answers"`
	Comment   string            `json:"comment"`
	CreatedAt string            `json:"created_at"`
}

// ToResponse converts an Event to an EventResponse DTO
func (e *Event) ToResponse() *EventResponse {
	return &EventResponse{
		ID:             e.ID,
		Title:          e.Title,
		Memo:           e.Memo,
		CandidateDates: e.CandidateDates,
		CreatedAt:      e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ToResponse converts a Response to a ResponseResponse DTO
func (r *Response) ToResponse() *ResponseResponse {
	return &ResponseResponse{
		ID:        r.ID,
		Name:      r.Name,
		Answers:   r.Answers,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
