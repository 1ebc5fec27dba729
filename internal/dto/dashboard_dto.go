package dto

import (
	"time"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// ClassRatingSummary is the aggregate rating of one class a lecturer teaches.
type ClassRatingSummary struct {
	ClassID       uint       `json:"class_id"`
	ClassName     string     `json:"class_name"`
	CourseName    string     `json:"course_name"`
	CourseCode    string     `json:"course_code"`
	Venue         string     `json:"venue"`
	ScheduledTime *time.Time `json:"scheduled_time"`
	Average       float64    `json:"average"`
	Count         int64      `json:"count"`
}

// LectureRatingSummary is the aggregate rating of one reported lecture.
type LectureRatingSummary struct {
	ReportID        uint                `json:"report_id"`
	ClassID         uint                `json:"class_id"`
	WeekOfReporting string              `json:"week_of_reporting"`
	TopicTaught     string              `json:"topic_taught"`
	Status          models.ReportStatus `json:"status"`
	Average         float64             `json:"average"`
	Count           int64               `json:"count"`
}

// LecturerOverviewResponse composes class and lecture aggregates for one lecturer.
type LecturerOverviewResponse struct {
	LecturerID uint                   `json:"lecturer_id"`
	Classes    []ClassRatingSummary   `json:"classes"`
	Lectures   []LectureRatingSummary `json:"lectures"`
}

// RatingOverviewRequest filters the ratings overview. EntityID narrows it to a
// single entity and is only meaningful together with RatedEntity.
type RatingOverviewRequest struct {
	Page        int
	PageSize    int
	RatedEntity string `validate:"omitempty,oneof=lecture class"`
	EntityID    uint
}

// RatingOverviewItem is a rating joined with names and its partition aggregate.
type RatingOverviewItem struct {
	RatingResponse
	RaterName    string  `json:"rater_name"`
	ClassName    string  `json:"class_name"`
	LecturerName string  `json:"lecturer_name"`
	Average      float64 `json:"average"`
	Count        int64   `json:"count"`
}

// RatingOverviewResponse wraps a paginated ratings overview.
type RatingOverviewResponse struct {
	Items      []RatingOverviewItem `json:"items"`
	Pagination PaginationMeta       `json:"pagination"`
}
