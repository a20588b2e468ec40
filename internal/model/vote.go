package model

import "time"

// ProjectVote 投票流水，(project, user, event) 唯一索引是并发投票的唯一防线
type ProjectVote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;uniqueIndex:idx_vote_project_user_event" json:"project_id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_vote_project_user_event;index:idx_vote_event_user" json:"user_id"`
	EventID   uint      `gorm:"not null;uniqueIndex:idx_vote_project_user_event;index:idx_vote_event_user" json:"event_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
}
