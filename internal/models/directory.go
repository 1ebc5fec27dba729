package models

import "time"

// User is a directory entry used to resolve display names.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Username  string    `gorm:"size:128;uniqueIndex;not null" json:"username"`
	Role      Role      `gorm:"size:32;not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Course is a directory entry for an offered course.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Code      string    `gorm:"size:32;uniqueIndex;not null" json:"code"`
	Semester  string    `gorm:"size:32" json:"semester"`
	Faculty   string    `gorm:"size:255" json:"faculty"`
	CreatedAt time.Time `json:"created_at"`
}

// Class is a scheduled offering of a course taught by one lecturer.
type Class struct {
	ID                      uint       `gorm:"primaryKey" json:"id"`
	CourseID                uint       `gorm:"not null;index" json:"course_id"`
	LecturerID              uint       `gorm:"not null;index" json:"lecturer_id"`
	ClassName               string     `gorm:"size:255;not null" json:"class_name"`
	Venue                   string     `gorm:"size:255" json:"venue"`
	ScheduledTime           *time.Time `json:"scheduled_time"`
	TotalRegisteredStudents int        `gorm:"not null;default:0" json:"total_registered_students"`
	CreatedAt               time.Time  `json:"created_at"`
	Course                  Course     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"course"`
}
