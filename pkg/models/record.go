package models

import "time"

// QuestionRecord is a cached question/answer pair. The raw question text as
// first submitted is both the store key and OriginalQuestion.
type QuestionRecord struct {
	OriginalQuestion string     `json:"originalQuestion"`
	Answer           string     `json:"answer"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	UsageCount       int64      `json:"usageCount"`
	LastUsed         *time.Time `json:"lastUsed,omitempty"`
}

// Touched returns the most recent of LastUsed and CreatedAt. Used for
// recency ordering in listings.
func (r QuestionRecord) Touched() time.Time {
	if r.LastUsed != nil && r.LastUsed.After(r.CreatedAt) {
		return *r.LastUsed
	}
	return r.CreatedAt
}

// QuestionSummary is a listing row with the answer truncated for display.
type QuestionSummary struct {
	Question   string     `json:"question"`
	Answer     string     `json:"answer"`
	CreatedAt  time.Time  `json:"createdAt"`
	UsageCount int64      `json:"usageCount"`
	LastUsed   *time.Time `json:"lastUsed"`
}

// Match is the result of an approximate lookup: the winning record plus the
// similarity score that qualified it.
type Match struct {
	Record     QuestionRecord
	Similarity float64
}
