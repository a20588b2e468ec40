package vote

import (
	"context"
	"fmt"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/global/sentry/tracing"
	"event-submission-system/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger 投票流水账本
// 同一作品的重复投票由 (project, user, event) 唯一索引拦截；
// 同一用户投不同作品时，MySQL 上先锁住投票人的 users 行，再做配额检查和插入后的复核
type Ledger struct {
	DB    *gorm.DB
	Quota int
	Now   func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{
		DB:    db,
		Quota: config.Get().Vote.Quota,
		Now:   time.Now,
	}
}

// lockVoter 必须是事务里的第一条语句：REPEATABLE READ 的快照在首次普通读时建立，
// 拿到锁之后再读才能看到另一个事务刚提交的票。SQLite 只有一个写者，不需要
func lockVoter(tx *gorm.DB, userID uint) error {
	if userID == 0 || tx.Dialector.Name() != "mysql" {
		return nil
	}
	var id uint
	err := tx.Model(&model.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", userID).
		Scan(&id).Error
	return errors.WithStack(err)
}

// DisplayCount 展示票数 = max(0, 原始票数 + 手动调整)
func DisplayCount(raw int64, adjustment *int) int64 {
	total := raw
	if adjustment != nil {
		total += int64(*adjustment)
	}
	if total < 0 {
		return 0
	}
	return total
}

// Cast 投票。业务拒绝以 Result 返回，error 只表示基础设施故障
func (l *Ledger) Cast(ctx context.Context, event *model.Event, project *model.Project, userID uint) (Result, error) {
	var result Result
	err := tracing.Trace(ctx, "vote.cast", fmt.Sprintf("event %d project %d", event.ID, project.ID), func(ctx context.Context) error {
		var err error
		result, err = l.cast(ctx, event, project, userID)
		return err
	})
	return result, err
}

func (l *Ledger) cast(ctx context.Context, event *model.Event, project *model.Project, userID uint) (Result, error) {
	var result Result
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVoter(tx, userID); err != nil {
			return err
		}
		own, err := isOwnProject(tx, project, userID)
		if err != nil {
			return err
		}
		if own {
			return &rejection{code: CodeOwnProject}
		}

		participant, err := access.IsActiveParticipant(tx, event.ID, userID)
		if err != nil {
			return err
		}
		if !participant {
			return &rejection{code: CodeNotParticipant}
		}

		if !event.VotingOpen(l.Now()) {
			return &rejection{code: CodeVotingEnded}
		}

		var existing int64
		if err := tx.Model(&model.ProjectVote{}).
			Where("project_id = ? AND user_id = ? AND event_id = ?", project.ID, userID, event.ID).
			Count(&existing).Error; err != nil {
			return errors.WithStack(err)
		}
		if existing > 0 {
			return &rejection{code: CodeAlreadyVoted}
		}

		used, err := countUserVotes(tx, event.ID, userID)
		if err != nil {
			return err
		}
		if used >= int64(l.Quota) {
			return &rejection{code: CodeNoVotesLeft}
		}

		if err := tx.Create(&model.ProjectVote{ProjectID: project.ID, UserID: userID, EventID: event.ID}).Error; err != nil {
			if database.IsDuplicateKey(err) {
				return &rejection{code: CodeAlreadyVoted}
			}
			return errors.WithStack(err)
		}

		// 并发投给不同作品时，可能都通过了上面的配额检查，插入后再数一次
		used, err = countUserVotes(tx, event.ID, userID)
		if err != nil {
			return err
		}
		if used > int64(l.Quota) {
			return &rejection{code: CodeNoVotesLeft}
		}

		count, err := l.displayCount(tx, project.ID, event.ID)
		if err != nil {
			return err
		}
		result = succeed(count, l.remaining(used))
		return nil
	})
	return l.finish(result, err)
}

// Revoke 撤票。投票结束后与投票一样被拒绝
func (l *Ledger) Revoke(ctx context.Context, event *model.Event, project *model.Project, userID uint) (Result, error) {
	var result Result
	err := tracing.Trace(ctx, "vote.revoke", fmt.Sprintf("event %d project %d", event.ID, project.ID), func(ctx context.Context) error {
		var err error
		result, err = l.revoke(ctx, event, project, userID)
		return err
	})
	return result, err
}

func (l *Ledger) revoke(ctx context.Context, event *model.Event, project *model.Project, userID uint) (Result, error) {
	var result Result
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockVoter(tx, userID); err != nil {
			return err
		}
		if !event.VotingOpen(l.Now()) {
			return &rejection{code: CodeVotingEnded}
		}

		res := tx.Where("project_id = ? AND user_id = ? AND event_id = ?", project.ID, userID, event.ID).
			Delete(&model.ProjectVote{})
		if res.Error != nil {
			return errors.WithStack(res.Error)
		}
		if res.RowsAffected == 0 {
			return &rejection{code: CodeNotVoted}
		}

		used, err := countUserVotes(tx, event.ID, userID)
		if err != nil {
			return err
		}
		count, err := l.displayCount(tx, project.ID, event.ID)
		if err != nil {
			return err
		}
		result = succeed(count, l.remaining(used))
		return nil
	})
	return l.finish(result, err)
}

func (l *Ledger) finish(result Result, err error) (Result, error) {
	if err == nil {
		return result, nil
	}
	var rej *rejection
	if errors.As(err, &rej) {
		return fail(rej.code), nil
	}
	return Result{}, response.ErrDatabase.WithOrigin(err)
}

// Remaining 用户在活动内剩余可投票数
func (l *Ledger) Remaining(ctx context.Context, eventID, userID uint) (int, error) {
	used, err := countUserVotes(l.DB.WithContext(ctx), eventID, userID)
	if err != nil {
		return 0, err
	}
	return l.remaining(used), nil
}

func (l *Ledger) remaining(used int64) int {
	left := l.Quota - int(used)
	if left < 0 {
		return 0
	}
	return left
}

// RawCount 账本中的原始票数，不含手动调整
func (l *Ledger) RawCount(ctx context.Context, projectID, eventID uint) (int64, error) {
	return rawCount(l.DB.WithContext(ctx), projectID, eventID)
}

// RawCounts 活动内每个项目的原始票数
func (l *Ledger) RawCounts(ctx context.Context, eventID uint) (map[uint]int64, error) {
	var rows []struct {
		ProjectID uint
		Total     int64
	}
	err := l.DB.WithContext(ctx).Model(&model.ProjectVote{}).
		Select("project_id, COUNT(*) AS total").
		Where("event_id = ?", eventID).
		Group("project_id").
		Scan(&rows).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	counts := make(map[uint]int64, len(rows))
	for _, r := range rows {
		counts[r.ProjectID] = r.Total
	}
	return counts, nil
}

// VotedProjects 用户在活动内投过票的项目
func (l *Ledger) VotedProjects(ctx context.Context, eventID, userID uint) ([]uint, error) {
	var ids []uint
	err := l.DB.WithContext(ctx).Model(&model.ProjectVote{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Order("created_at ASC").
		Pluck("project_id", &ids).Error
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ids, nil
}

// Override 设置手动调整，使展示票数等于 desired；差值为 0 时清空调整
func (l *Ledger) Override(ctx context.Context, projectID, eventID uint, desired int64) (int64, error) {
	var count int64
	err := l.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		raw, err := rawCount(tx, projectID, eventID)
		if err != nil {
			return err
		}
		var adjustment *int
		if delta := int(desired - raw); delta != 0 {
			adjustment = &delta
		}
		if err := tx.Model(&model.Project{}).Where("id = ?", projectID).
			Update("vote_adjustment", adjustment).Error; err != nil {
			return errors.WithStack(err)
		}
		count = DisplayCount(raw, adjustment)
		return nil
	})
	if err != nil {
		return 0, response.ErrDatabase.WithOrigin(err)
	}
	return count, nil
}

func (l *Ledger) displayCount(tx *gorm.DB, projectID, eventID uint) (int64, error) {
	raw, err := rawCount(tx, projectID, eventID)
	if err != nil {
		return 0, err
	}
	var project model.Project
	if err := tx.Select("id", "vote_adjustment").First(&project, projectID).Error; err != nil {
		return 0, errors.WithStack(err)
	}
	return DisplayCount(raw, project.VoteAdjustment), nil
}

func rawCount(db *gorm.DB, projectID, eventID uint) (int64, error) {
	var count int64
	err := db.Model(&model.ProjectVote{}).
		Where("project_id = ? AND event_id = ?", projectID, eventID).
		Count(&count).Error
	return count, errors.WithStack(err)
}

func countUserVotes(db *gorm.DB, eventID, userID uint) (int64, error) {
	var count int64
	err := db.Model(&model.ProjectVote{}).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Count(&count).Error
	return count, errors.WithStack(err)
}

// isOwnProject 队长或团队成员
func isOwnProject(db *gorm.DB, project *model.Project, userID uint) (bool, error) {
	if project.LeaderID == userID {
		return true, nil
	}
	var count int64
	err := db.Model(&model.ProjectMember{}).
		Where("project_id = ? AND user_id = ?", project.ID, userID).
		Count(&count).Error
	if err != nil {
		return false, errors.WithStack(err)
	}
	return count > 0, nil
}
