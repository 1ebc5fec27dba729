package models

import "time"

// ReportStatus is derived from which feedback slots are filled; it is never stored.
type ReportStatus string

const (
	ReportStatusSubmitted   ReportStatus = "submitted"
	ReportStatusPRLReviewed ReportStatus = "prl_reviewed"
	ReportStatusPLReviewed  ReportStatus = "pl_reviewed"
)

// Report is a lecturer's account of one delivered lecture.
type Report struct {
	ID                    uint             `gorm:"primaryKey" json:"id"`
	ClassID               uint             `gorm:"not null;index" json:"class_id"`
	LecturerID            uint             `gorm:"not null;index" json:"lecturer_id"`
	WeekOfReporting       string           `gorm:"size:32;not null" json:"week_of_reporting"`
	DateOfLecture         time.Time        `gorm:"not null" json:"date_of_lecture"`
	TopicTaught           string           `gorm:"size:255;not null" json:"topic_taught"`
	ActualStudentsPresent int              `gorm:"not null" json:"actual_students_present"`
	LearningOutcomes      string           `gorm:"type:text;not null" json:"learning_outcomes"`
	Recommendations       string           `gorm:"type:text;not null" json:"recommendations"`
	CreatedAt             time.Time        `gorm:"index" json:"created_at"`
	Class                 Class            `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"class"`
	Feedback              []ReportFeedback `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"feedback"`
}

// ReportFeedback is the single feedback slot a reviewer role owns on a report.
// The (report_id, role) pair is unique, so a slot can only be written once.
type ReportFeedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ReportID  uint      `gorm:"not null;uniqueIndex:idx_report_feedback_slot" json:"report_id"`
	Role      Role      `gorm:"size:32;not null;uniqueIndex:idx_report_feedback_slot" json:"role"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName pins the slot table name.
func (ReportFeedback) TableName() string {
	return "report_feedback"
}

// FeedbackFor returns the slot owned by role, if it has been written.
func (r Report) FeedbackFor(role Role) (ReportFeedback, bool) {
	for _, slot := range r.Feedback {
		if slot.Role == role {
			return slot, true
		}
	}
	return ReportFeedback{}, false
}

// Status derives the review state from the filled feedback slots.
func (r Report) Status() ReportStatus {
	if _, ok := r.FeedbackFor(RolePL); ok {
		return ReportStatusPLReviewed
	}
	if _, ok := r.FeedbackFor(RolePRL); ok {
		return ReportStatusPRLReviewed
	}
	return ReportStatusSubmitted
}

// FullyReviewed reports whether every reviewer role has filled its slot.
func (r Report) FullyReviewed() bool {
	for role := range ReviewerRoles {
		if _, ok := r.FeedbackFor(role); !ok {
			return false
		}
	}
	return true
}
