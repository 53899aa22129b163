package models

// BoxCount is the number of Leitner boxes
const BoxCount = 5

// ProgressStats is the aggregate a progress store reports for a user
type ProgressStats struct {
	DueCount   int           // records with next_review_date <= asOf
	Progressed int           // items that have any progress record
	Boxes      [BoxCount]int // Boxes[0] counts box level 1
}

// StudyModeStats summarizes what a user can study right now
type StudyModeStats struct {
	DueCount   int `json:"due_count"`
	NewCount   int `json:"new_count"`
	TotalCount int `json:"total_count"`
}

// ReviewStats adds the box histogram to StudyModeStats
type ReviewStats struct {
	StudyModeStats
	BoxDistribution [BoxCount]int `json:"box_distribution"`
}
