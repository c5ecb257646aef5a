package domain

import "time"

// DiaryEntry is a row of the existing history table (read-only). Tags are
// free-text labels the user attached when writing the entry; they may be
// empty. One entry per user per day is assumed downstream but not enforced.
type DiaryEntry struct {
	ID         int64     `json:"id"`
	UserID     string    `json:"user_id"`
	Content    string    `json:"content"`
	RecordDate time.Time `json:"record_date"`
	Tags       []string  `json:"tags"`
}

// RecordDateISO returns the entry date as an ISO date string, the join key
// used against per-day sentiment scores.
func (e *DiaryEntry) RecordDateISO() string {
	return e.RecordDate.Format("2006-01-02")
}
