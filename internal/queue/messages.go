package queue

// GrievanceMsg is the work item enqueued by the API for async resolution.
type GrievanceMsg struct {
	SessionID        string `json:"session_id"`
	Query            string `json:"query"`
	SelectedCategory string `json:"selected_category,omitempty"`
}

// ProgressEvent is published to `grievance.<session>.progress` while a
// grievance is being processed.
type ProgressEvent struct {
	SessionID string  `json:"session_id"`
	Stage     string  `json:"stage"`
	Fraction  float64 `json:"fraction"`
}
