package model

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	StatusSubmitted   SubmissionStatus = "SUBMITTED"
	StatusUnderReview SubmissionStatus = "UNDER_REVIEW"
	StatusApproved    SubmissionStatus = "APPROVED"
	StatusRejected    SubmissionStatus = "REJECTED"
	StatusAwarded     SubmissionStatus = "AWARDED"
)

// CanTransitionTo 审核流转：SUBMITTED/UNDER_REVIEW 可进入审核结果，AWARDED 只能由 APPROVED 进入
func (s SubmissionStatus) CanTransitionTo(next SubmissionStatus) bool {
	switch next {
	case StatusUnderReview:
		return s == StatusSubmitted || s == StatusUnderReview
	case StatusApproved, StatusRejected:
		return s == StatusSubmitted || s == StatusUnderReview || s == StatusApproved || s == StatusRejected
	case StatusAwarded:
		return s == StatusApproved
	}
	return false
}

// EventProjectSubmission 活动与项目的一对一绑定
// ProjectSnapshot 只在首次提交时写入；读取路径一律渲染 Project 的实时数据
type EventProjectSubmission struct {
	Model
	EventID         uint             `gorm:"not null;uniqueIndex:idx_event_project" json:"event_id"`
	ProjectID       uint             `gorm:"not null;uniqueIndex:idx_event_project;uniqueIndex:idx_submission_project" json:"project_id"`
	SubmitterID     uint             `gorm:"not null;index" json:"submitter_id"`
	SubmissionType  string           `gorm:"type:varchar(30);not null" json:"submission_type"`
	Title           string           `gorm:"type:varchar(200);not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description"`
	DemoURL         string           `gorm:"type:varchar(500)" json:"demo_url"`
	ProjectSnapshot datatypes.JSON   `gorm:"type:json" json:"-"`
	Status          SubmissionStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	ReviewNote      *string          `gorm:"type:text" json:"review_note"`
	ReviewScore     *float64         `json:"review_score"`
	ReviewerID      *uint            `json:"reviewer_id"`
	ReviewedAt      *time.Time       `json:"reviewed_at"`

	Event   Event   `gorm:"foreignKey:EventID" json:"-"`
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
