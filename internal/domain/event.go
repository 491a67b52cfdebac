package domain

import "time"

// TaskDueV1 is the wire record published to the broker when a due task is
// claimed by the scanner. Serialized as JSON with ISO-8601 UTC timestamps.
type TaskDueV1 struct {
	TaskID       string    `json:"taskId"`
	Title        string    `json:"title"`
	DueDateUTC   time.Time `json:"dueDateUtc"`
	TimestampUTC time.Time `json:"timestampUtc"`
}
