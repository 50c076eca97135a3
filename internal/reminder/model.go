package reminder

import "time"

// Reminder asks one participant to pay their share of a plan
type Reminder struct {
	ID            int64     `json:"id"`
	PlanID        string    `json:"plan_id"`
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	Amount        int64     `json:"amount"`
	Message       string    `json:"message"`
	IsSent        bool      `json:"is_sent"`
	CreatedAt     time.Time `json:"created_at"`
}

// ReminderResponse represents a reminder in responses
type ReminderResponse struct {
	ID            int64  `json:"id"`
	ParticipantID string `json:"participant_id"`
	Name          string `json:"name"`
	Amount        int64  `json:"amount"`
	Message       string `json:"message"`
	IsSent        bool   `json:"is_sent"`
	CreatedAt     string `json:"created_at"`
}

func toResponse(r *Reminder) *ReminderResponse {
	return &ReminderResponse{
		ID:            r.ID,
		ParticipantID: r.ParticipantID,
		Name:          r.Name,
		Amount:        r.Amount,
		Message:       r.Message,
		IsSent:        r.IsSent,
		CreatedAt:     r.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
