package dto

import (
	"time"

	"github.com/noah-isme/luct-report-api/internal/models"
)

// DateLayout is the wire format for lecture dates.
const DateLayout = "2006-01-02"

// ReportSubmitRequest is the lecturer-owned payload of a lecture report.
type ReportSubmitRequest struct {
	ClassID               uint   `json:"class_id" validate:"required"`
	WeekOfReporting       string `json:"week_of_reporting" validate:"required,max=32"`
	DateOfLecture         string `json:"date_of_lecture" validate:"required,datetime=2006-01-02"`
	TopicTaught           string `json:"topic_taught" validate:"required,max=255"`
	ActualStudentsPresent *int   `json:"actual_students_present" validate:"required,gte=0"`
	LearningOutcomes      string `json:"learning_outcomes" validate:"required,max=5000"`
	Recommendations       string `json:"recommendations" validate:"required,max=5000"`
}

// FeedbackRequest carries a reviewer's feedback text.
type FeedbackRequest struct {
	Feedback string `json:"feedback" validate:"required,max=5000"`
}

// ReportListRequest defines filters for listing reports.
type ReportListRequest struct {
	Page     int
	PageSize int
	Status   string `validate:"omitempty,oneof=submitted prl_reviewed pl_reviewed"`
}

// FeedbackSlotResponse serializes one reviewer's feedback.
type FeedbackSlotResponse struct {
	Role      models.Role `json:"role"`
	AuthorID  uint        `json:"author_id"`
	Text      string      `json:"text"`
	CreatedAt time.Time   `json:"created_at"`
}

// ReportResponse serializes a report with its class context and derived status.
type ReportResponse struct {
	ID                    uint                   `json:"id"`
	ClassID               uint                   `json:"class_id"`
	ClassName             string                 `json:"class_name"`
	CourseName            string                 `json:"course_name"`
	CourseCode            string                 `json:"course_code"`
	LecturerID            uint                   `json:"lecturer_id"`
	WeekOfReporting       string                 `json:"week_of_reporting"`
	DateOfLecture         string                 `json:"date_of_lecture"`
	TopicTaught           string                 `json:"topic_taught"`
	ActualStudentsPresent int                    `json:"actual_students_present"`
	LearningOutcomes      string                 `json:"learning_outcomes"`
	Recommendations       string                 `json:"recommendations"`
	PRLFeedback           *string                `json:"prl_feedback"`
	PLFeedback            *string                `json:"pl_feedback"`
	Reviews               []FeedbackSlotResponse `json:"reviews"`
	Status                models.ReportStatus    `json:"status"`
	FullyReviewed         bool                   `json:"fully_reviewed"`
	CreatedAt             time.Time              `json:"created_at"`
}

// ReportListResponse wraps a paginated report response.
type ReportListResponse struct {
	Items      []ReportResponse `json:"items"`
	Pagination PaginationMeta   `json:"pagination"`
}

// NewReportResponse converts a report model into a DTO, projecting the feedback slots.
func NewReportResponse(report models.Report) ReportResponse {
	reviews := make([]FeedbackSlotResponse, 0, len(report.Feedback))
	for _, slot := range report.Feedback {
		reviews = append(reviews, FeedbackSlotResponse{
			Role:      slot.Role,
			AuthorID:  slot.AuthorID,
			Text:      slot.Text,
			CreatedAt: slot.CreatedAt,
		})
	}

	return ReportResponse{
		ID:                    report.ID,
		ClassID:               report.ClassID,
		ClassName:             report.Class.ClassName,
		CourseName:            report.Class.Course.Name,
		CourseCode:            report.Class.Course.Code,
		LecturerID:            report.LecturerID,
		WeekOfReporting:       report.WeekOfReporting,
		DateOfLecture:         report.DateOfLecture.Format(DateLayout),
		TopicTaught:           report.TopicTaught,
		ActualStudentsPresent: report.ActualStudentsPresent,
		LearningOutcomes:      report.LearningOutcomes,
		Recommendations:       report.Recommendations,
		PRLFeedback:           feedbackText(report, models.RolePRL),
		PLFeedback:            feedbackText(report, models.RolePL),
		Reviews:               reviews,
		Status:                report.Status(),
		FullyReviewed:         report.FullyReviewed(),
		CreatedAt:             report.CreatedAt,
	}
}

func feedbackText(report models.Report, role models.Role) *string {
	slot, ok := report.FeedbackFor(role)
	if !ok {
		return nil
	}
	text := slot.Text
	return &text
}
