package notification

import "time"

// JobResponse is the API shape of a notification job.
type JobResponse struct {
	ID          string         `json:"id"`
	EmployeeID  string         `json:"employee_id"`
	Rule        RuleType       `json:"rule"`
	Audience    Audience       `json:"audience"`
	Risk        RiskLevel      `json:"risk"`
	Day         string         `json:"day"`
	EventAt     time.Time      `json:"event_at"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Summary     string         `json:"summary,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	Status      DeliveryStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

func NewJobResponse(j Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		EmployeeID:  j.EmployeeID,
		Rule:        j.Rule,
		Audience:    j.Audience,
		Risk:        j.Risk,
		Day:         j.Day.Format("2006-01-02"),
		EventAt:     j.EventAt,
		Title:       j.Title,
		Description: j.Description,
		Summary:     j.Summary,
		Payload:     j.Payload,
		Status:      j.Status,
		CreatedAt:   j.CreatedAt,
	}
}
