package types

// Notification event types broadcast over the progress WebSocket while a
// submission is in flight.
const (
	NotifyTypeCategorySettled = "category_settled"
	NotifyTypeCategoryFailed  = "category_failed"
	NotifyTypeAggregating     = "aggregating"
	NotifyTypeSubmissionDone  = "submission_done"
)

// Notification is one progress event pushed to connected web UI clients.
type Notification struct {
	Type    string         `json:"type"`
	Title   string         `json:"title"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}
