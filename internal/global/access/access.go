// Package access 回答“谁能管理活动、谁是活动参与者”
package access

import (
	"context"
	"fmt"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/cache"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func eventKey(id uint) string {
	return fmt.Sprintf("event:%d", id)
}

// LoadEvent 读取活动（含投稿表单配置），走 Redis 缓存
func LoadEvent(ctx context.Context, db *gorm.DB, id uint) (*model.Event, error) {
	ttl := time.Duration(config.Get().Cache.FormTTLSeconds) * time.Second
	event, err := cache.Fetch(ctx, eventKey(id), ttl, func() (*model.Event, error) {
		var e model.Event
		if err := db.WithContext(ctx).First(&e, id).Error; err != nil {
			return nil, err
		}
		return &e, nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrNotFound.WithTips("活动不存在")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return event, nil
}

// InvalidateEvent 活动或表单变更后调用
func InvalidateEvent(ctx context.Context, id uint) {
	cache.Invalidate(ctx, eventKey(id))
}

// IsAdministrator 活动主办人，或活动所属组织的 owner/admin
func IsAdministrator(db *gorm.DB, event *model.Event, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	if event.OrganizerID == userID {
		return true, nil
	}
	if event.OrganizationID == nil {
		return false, nil
	}
	return IsOrgAdministrator(db, *event.OrganizationID, userID)
}

// IsActiveParticipant 报名状态不是已取消/已拒绝
func IsActiveParticipant(db *gorm.DB, eventID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&model.EventRegistration{}).
		Where("event_id = ? AND user_id = ? AND status NOT IN ?", eventID, userID, model.InactiveRegistrationStatuses).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// IsOrgAdministrator 组织 owner/admin
func IsOrgAdministrator(db *gorm.DB, orgID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var count int64
	err := db.Model(&model.OrganizationMember{}).
		Where("organization_id = ? AND user_id = ? AND role IN ?", orgID, userID,
			[]model.OrgRole{model.OrgRoleOwner, model.OrgRoleAdmin}).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}

// Relation 调用者与某个投稿的关系
type Relation struct {
	Leader    bool
	Submitter bool
	Admin     bool
}

// Privileged 队长、提交人或活动管理员
func (r Relation) Privileged() bool {
	return r.Leader || r.Submitter || r.Admin
}

// RelationTo 计算调用者与投稿的关系，admin 由调用方预先算好传入以免列表页重复查询
func RelationTo(userID, leaderID, submitterID uint, admin bool) Relation {
	if userID == 0 {
		return Relation{}
	}
	return Relation{
		Leader:    leaderID == userID,
		Submitter: submitterID == userID,
		Admin:     admin,
	}
}
