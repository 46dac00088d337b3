package entity

import "time"

type SessionStatus string

// Session status reflects the conversation lifecycle. A session leaves
// ACTIVE exactly once: DONE when every field is collected, ENDED when
// the caller tears it down early.
const (
	SessionStatusActive SessionStatus = "ACTIVE"
	SessionStatusDone   SessionStatus = "DONE"
	SessionStatusEnded  SessionStatus = "ENDED"
)

// Session is one conversation thread as the service reports it.
type Session struct {
	ThreadID  string        `json:"thread_id"`
	Status    SessionStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
