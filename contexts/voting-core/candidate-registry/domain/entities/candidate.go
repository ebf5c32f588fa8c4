package entities

import "time"

type Candidate struct {
	CandidateID string
	Name        string
	Club        string
	ImagePath   string
	Votes       int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
