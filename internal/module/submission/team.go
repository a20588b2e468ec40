package submission

import (
	"fmt"
	"strings"

	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// SyncMembers 整体覆盖项目成员：一个 LEADER + 每个成员一个 MEMBER
// 调用方列表里有重复 ID 直接拒绝；队长出现在成员列表里会被移除
// 任何一个用户不存在则整体失败，由外层事务回滚
func SyncMembers(tx *gorm.DB, projectID, leaderID uint, memberIDs []uint, maxMembers int) error {
	if dup := lo.FindDuplicates(memberIDs); len(dup) > 0 {
		return response.ErrDuplicateMember.WithTips(joinIDs(dup))
	}

	members := lo.Without(memberIDs, leaderID)
	if maxMembers > 0 && len(members) > maxMembers {
		return response.ErrTeamTooLarge.WithTips(fmt.Sprintf("最多 %d 名成员", maxMembers))
	}

	wanted := append([]uint{leaderID}, members...)
	var found []uint
	if err := tx.Model(&model.User{}).Where("id IN ?", wanted).Pluck("id", &found).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if missing := lo.Without(wanted, found...); len(missing) > 0 {
		return response.ErrUnknownMember.WithTips(joinIDs(missing))
	}

	if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectMember{}).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}

	rows := make([]model.ProjectMember, 0, len(wanted))
	rows = append(rows, model.ProjectMember{ProjectID: projectID, UserID: leaderID, Role: model.MemberRoleLeader})
	for _, id := range members {
		rows = append(rows, model.ProjectMember{ProjectID: projectID, UserID: id, Role: model.MemberRoleMember})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return response.ErrDatabase.WithOrigin(errors.WithStack(err))
	}
	return nil
}

// currentMembers 现有的非队长成员
func currentMembers(tx *gorm.DB, projectID uint) ([]uint, error) {
	var ids []uint
	err := tx.Model(&model.ProjectMember{}).
		Where("project_id = ? AND role = ?", projectID, model.MemberRoleMember).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	return ids, errors.WithStack(err)
}

func joinIDs(ids []uint) string {
	return strings.Join(lo.Map(ids, func(id uint, _ int) string {
		return fmt.Sprint(id)
	}), ", ")
}
