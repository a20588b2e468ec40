package model

import (
	"time"

	"gorm.io/datatypes"
)

type MemberRole string

const (
	MemberRoleLeader MemberRole = "LEADER"
	MemberRoleMember MemberRole = "MEMBER"
)

type Project struct {
	Model
	LeaderID       uint              `gorm:"not null;index" json:"leader_id"`
	Title          string            `gorm:"type:varchar(200);not null" json:"title"`
	Tagline        string            `gorm:"type:varchar(300)" json:"tagline"`
	Description    string            `gorm:"type:text" json:"description"`
	DemoURL        string            `gorm:"type:varchar(500)" json:"demo_url"`
	CommunityUse   bool              `gorm:"not null;default:false" json:"community_use"` // 是否授权社区使用
	CustomFields   datatypes.JSONMap `gorm:"type:json" json:"custom_fields"`
	Submitted      bool              `gorm:"not null;default:false" json:"submitted"`
	SubmittedAt    *time.Time        `json:"submitted_at"`
	VoteAdjustment *int              `json:"-"` // 管理员手动调整的票数差值，为空表示未调整

	Leader      User                `gorm:"foreignKey:LeaderID" json:"-"`
	Members     []ProjectMember     `gorm:"foreignKey:ProjectID" json:"-"`
	Attachments []ProjectAttachment `gorm:"foreignKey:ProjectID" json:"-"`
}

// Adjustment 未设置时为 0
func (p *Project) Adjustment() int {
	if p.VoteAdjustment == nil {
		return 0
	}
	return *p.VoteAdjustment
}

type ProjectMember struct {
	Model
	ProjectID uint       `gorm:"not null;uniqueIndex:idx_project_user" json:"project_id"`
	UserID    uint       `gorm:"not null;uniqueIndex:idx_project_user;index" json:"user_id"`
	Role      MemberRole `gorm:"type:varchar(10);not null" json:"role"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

type ProjectAttachment struct {
	Model
	ProjectID uint   `gorm:"not null;index" json:"project_id"`
	FileName  string `gorm:"type:varchar(255);not null" json:"file_name"`
	URL       string `gorm:"type:varchar(1000);not null" json:"url"`
	Type      string `gorm:"type:varchar(30)" json:"type"` // image / video / document ...
	MimeType  string `gorm:"type:varchar(100)" json:"mime_type"`
	Size      int64  `gorm:"not null;default:0" json:"size"`
	Order     int    `gorm:"column:sort_order;not null;default:0" json:"order"`
}
