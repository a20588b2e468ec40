package model

import (
	"time"

	"gorm.io/datatypes"
)

type EventType string

const (
	EventHackathon   EventType = "HACKATHON"
	EventCompetition EventType = "COMPETITION"
	EventExhibition  EventType = "EXHIBITION"
	EventMeetup      EventType = "MEETUP"
)

// SubmissionType 投稿类型由活动类型决定
func (t EventType) SubmissionType() string {
	switch t {
	case EventHackathon:
		return "HACKATHON_PROJECT"
	case EventCompetition:
		return "COMPETITION_ENTRY"
	case EventExhibition:
		return "EXHIBIT"
	default:
		return "PROJECT"
	}
}

type Event struct {
	Model
	Name               string                              `gorm:"type:varchar(100);not null" json:"name"`
	Description        string                              `gorm:"type:text" json:"description"`
	Type               EventType                           `gorm:"type:varchar(20);not null" json:"type"`
	OrganizerID        uint                                `gorm:"not null;index" json:"organizer_id"`
	OrganizationID     *uint                               `gorm:"index" json:"organization_id"`
	StartTime          *time.Time                          `json:"start_time"`
	EndTime            *time.Time                          `json:"end_time"` // 投票截止时间
	SubmissionsEnabled bool                                `gorm:"not null;default:false" json:"submissions_enabled"`
	SubmissionOpen     bool                                `gorm:"not null;default:false" json:"submission_open"`
	SubmissionDeadline *time.Time                          `json:"submission_deadline"`
	RequireApproval    bool                                `gorm:"not null;default:false" json:"require_approval"` // 报名是否需要审核
	SubmissionForm     datatypes.JSONSlice[FieldDescriptor] `gorm:"type:json" json:"submission_form"`

	Organizer User `gorm:"foreignKey:OrganizerID" json:"-"`
}

// Form 投稿表单配置
func (e *Event) Form() SubmissionForm {
	return SubmissionForm(e.SubmissionForm)
}

// VotingOpen 未设置结束时间视为一直开放
func (e *Event) VotingOpen(now time.Time) bool {
	return e.EndTime == nil || !now.After(*e.EndTime)
}

type RegistrationStatus string

const (
	RegistrationPending   RegistrationStatus = "PENDING"
	RegistrationApproved  RegistrationStatus = "APPROVED"
	RegistrationRejected  RegistrationStatus = "REJECTED"
	RegistrationCancelled RegistrationStatus = "CANCELLED"
)

// Active 未取消且未被拒绝
func (s RegistrationStatus) Active() bool {
	return s != RegistrationCancelled && s != RegistrationRejected
}

// InactiveRegistrationStatuses 用于 SQL 过滤
var InactiveRegistrationStatuses = []RegistrationStatus{RegistrationCancelled, RegistrationRejected}

type EventRegistration struct {
	Model
	EventID uint               `gorm:"not null;uniqueIndex:idx_event_user" json:"event_id"`
	UserID  uint               `gorm:"not null;uniqueIndex:idx_event_user;index" json:"user_id"`
	Status  RegistrationStatus `gorm:"type:varchar(20);not null" json:"status"`

	User User `gorm:"foreignKey:UserID" json:"user"`
}
