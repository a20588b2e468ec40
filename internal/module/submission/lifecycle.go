package submission

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/notify"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateReq struct {
	Title        string          `json:"title" binding:"required,max=200"`
	Tagline      string          `json:"tagline" binding:"max=300"`
	Description  string          `json:"description"`
	DemoURL      string          `json:"demoUrl" binding:"omitempty,url,max=500"`
	CommunityUse bool            `json:"communityUse"`
	CustomFields map[string]any  `json:"customFields"`
	LeaderID     *uint           `json:"leaderId"` // 为空时调用者即队长
	MemberIDs    []uint          `json:"memberIds"`
	Attachments  []AttachmentReq `json:"attachments" binding:"dive"`
}

// UpdateReq 未提供的字段保持原值；memberIds/attachments 一旦提供即整体覆盖
type UpdateReq struct {
	Title        *string          `json:"title" binding:"omitempty,min=1,max=200"`
	Tagline      *string          `json:"tagline" binding:"omitempty,max=300"`
	Description  *string          `json:"description"`
	DemoURL      *string          `json:"demoUrl" binding:"omitempty,url,max=500"`
	CommunityUse *bool            `json:"communityUse"`
	CustomFields map[string]any   `json:"customFields"`
	LeaderID     *uint            `json:"leaderId"`
	MemberIDs    *[]uint          `json:"memberIds"`
	Attachments  *[]AttachmentReq `json:"attachments" binding:"omitempty,dive"`
}

type ReviewReq struct {
	Status model.SubmissionStatus `json:"status" binding:"required,oneof=UNDER_REVIEW APPROVED REJECTED AWARDED"`
	Note   *string                `json:"note"`
	Score  *float64               `json:"score" binding:"omitempty,gte=0,lte=100"`
}

// projectSnapshot 首次提交时的项目快照，之后不再更新
type projectSnapshot struct {
	Title        string          `json:"title"`
	Tagline      string          `json:"tagline"`
	Description  string          `json:"description"`
	DemoURL      string          `json:"demoUrl"`
	CommunityUse bool            `json:"communityUse"`
	CustomFields map[string]any  `json:"customFields,omitempty"`
	LeaderID     uint            `json:"leaderId"`
	MemberIDs    []uint          `json:"memberIds"`
	Attachments  []AttachmentReq `json:"attachments"`
	CapturedAt   time.Time       `json:"capturedAt"`
}

// Service 投稿的创建、修改、删除与审核，每个操作一个事务
type Service struct {
	DB                 *gorm.DB
	MaxTeamMembers     int
	MaxAttachmentBytes int64
	Now                func() time.Time
}

func NewService(db *gorm.DB) *Service {
	cfg := config.Get().Submission
	return &Service{
		DB:                 db,
		MaxTeamMembers:     cfg.MaxTeamMembers,
		MaxAttachmentBytes: cfg.MaxAttachmentBytes,
		Now:                time.Now,
	}
}

// Load 读取投稿及项目、成员、附件；活动未开启投稿时按不存在处理
func (s *Service) Load(ctx context.Context, id uint) (*model.EventProjectSubmission, *model.Event, error) {
	var sub model.EventProjectSubmission
	err := withProject(s.DB.WithContext(ctx)).First(&sub, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.ErrNotFound.WithTips("投稿不存在")
		}
		return nil, nil, response.ErrDatabase.WithOrigin(err)
	}
	event, err := access.LoadEvent(ctx, s.DB, sub.EventID)
	if err != nil {
		return nil, nil, err
	}
	if !event.SubmissionsEnabled {
		return nil, nil, response.ErrNotFound.WithTips("投稿不存在")
	}
	return &sub, event, nil
}

// withProject 预加载渲染投稿所需的项目、队长、成员和附件
func withProject(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Project.Leader").
		Preload("Project.Members", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Project.Members.User").
		Preload("Project.Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC, id ASC") })
}

// Relation 调用者与投稿的关系
func (s *Service) Relation(ctx context.Context, event *model.Event, sub *model.EventProjectSubmission, userID uint) (access.Relation, error) {
	admin, err := access.IsAdministrator(s.DB.WithContext(ctx), event, userID)
	if err != nil {
		return access.Relation{}, response.ErrDatabase.WithOrigin(err)
	}
	return access.RelationTo(userID, sub.Project.LeaderID, sub.SubmitterID, admin), nil
}

func (s *Service) checkWindow(event *model.Event) error {
	if !event.SubmissionOpen {
		return response.ErrSubmissionClosed
	}
	if event.SubmissionDeadline != nil && s.Now().After(*event.SubmissionDeadline) {
		return response.ErrDeadlinePassed
	}
	return nil
}

func (s *Service) requireParticipant(ctx context.Context, eventID, userID uint, tips string) error {
	ok, err := access.IsActiveParticipant(s.DB.WithContext(ctx), eventID, userID)
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if !ok {
		return response.ErrNotParticipant.WithTips(tips)
	}
	return nil
}

// Create 项目、成员、附件、投稿在一个事务里依次写入
func (s *Service) Create(ctx context.Context, event *model.Event, callerID uint, req CreateReq) (*model.EventProjectSubmission, error) {
	if !event.SubmissionsEnabled {
		return nil, response.ErrNotFound.WithTips("活动不存在")
	}
	if err := s.checkWindow(event); err != nil {
		return nil, err
	}
	if err := s.requireParticipant(ctx, event.ID, callerID, "请先报名活动"); err != nil {
		return nil, err
	}
	leaderID := callerID
	if req.LeaderID != nil && *req.LeaderID != 0 {
		leaderID = *req.LeaderID
	}
	if leaderID != callerID {
		if err := s.requireParticipant(ctx, event.ID, leaderID, "队长未报名活动"); err != nil {
			return nil, err
		}
	}
	if err := validateCustomFields(event.Form(), req.CustomFields); err != nil {
		return nil, err
	}

	now := s.Now()
	var sub model.EventProjectSubmission
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		project := model.Project{
			LeaderID:     leaderID,
			Title:        req.Title,
			Tagline:      req.Tagline,
			Description:  req.Description,
			DemoURL:      req.DemoURL,
			CommunityUse: req.CommunityUse,
			CustomFields: datatypes.JSONMap(req.CustomFields),
			Submitted:    true,
			SubmittedAt:  &now,
		}
		if err := tx.Create(&project).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		if err := SyncMembers(tx, project.ID, leaderID, req.MemberIDs, s.MaxTeamMembers); err != nil {
			return err
		}
		if err := ReplaceAttachments(tx, project.ID, req.Attachments, s.MaxAttachmentBytes); err != nil {
			return err
		}

		members, err := currentMembers(tx, project.ID)
		if err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		snapshot, err := json.Marshal(projectSnapshot{
			Title:        project.Title,
			Tagline:      project.Tagline,
			Description:  project.Description,
			DemoURL:      project.DemoURL,
			CommunityUse: project.CommunityUse,
			CustomFields: req.CustomFields,
			LeaderID:     leaderID,
			MemberIDs:    members,
			Attachments:  req.Attachments,
			CapturedAt:   now,
		})
		if err != nil {
			return response.ErrServerInternal.WithOrigin(err)
		}

		sub = model.EventProjectSubmission{
			EventID:         event.ID,
			ProjectID:       project.ID,
			SubmitterID:     callerID,
			SubmissionType:  event.Type.SubmissionType(),
			Title:           project.Title,
			Description:     project.Description,
			DemoURL:         project.DemoURL,
			ProjectSnapshot: datatypes.JSON(snapshot),
			Status:          model.StatusSubmitted,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if err != nil {
		return nil, asResponseError(err)
	}

	notify.Send(ctx, notify.Event{
		Action:       notify.SubmissionCreated,
		EventID:      event.ID,
		SubmissionID: sub.ID,
		ProjectID:    sub.ProjectID,
		ActorID:      callerID,
		Status:       string(sub.Status),
	})
	return &sub, nil
}

// Update 只覆盖提供了的字段，成功后状态一律回到 SUBMITTED
func (s *Service) Update(ctx context.Context, event *model.Event, sub *model.EventProjectSubmission, callerID uint, req UpdateReq) error {
	rel, err := s.Relation(ctx, event, sub, callerID)
	if err != nil {
		return err
	}
	if !rel.Privileged() {
		return response.ErrForbidden.WithTips("只有队长、提交人或活动管理员可以修改投稿")
	}
	if !rel.Admin {
		if err := s.checkWindow(event); err != nil {
			return err
		}
	}

	project := sub.Project
	oldLeader := project.LeaderID
	newLeader := oldLeader
	if req.LeaderID != nil && *req.LeaderID != 0 {
		newLeader = *req.LeaderID
	}
	if newLeader != oldLeader {
		if err := s.requireParticipant(ctx, event.ID, newLeader, "新队长未报名活动"); err != nil {
			return err
		}
	}
	if req.CustomFields != nil {
		if err := validateCustomFields(event.Form(), req.CustomFields); err != nil {
			return err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 只写本次提供的列，避免用旧副本覆盖并发写入的票数调整
		updates := map[string]any{"leader_id": newLeader}
		if req.Title != nil {
			project.Title = *req.Title
			updates["title"] = project.Title
		}
		if req.Tagline != nil {
			project.Tagline = *req.Tagline
			updates["tagline"] = project.Tagline
		}
		if req.Description != nil {
			project.Description = *req.Description
			updates["description"] = project.Description
		}
		if req.DemoURL != nil {
			project.DemoURL = *req.DemoURL
			updates["demo_url"] = project.DemoURL
		}
		if req.CommunityUse != nil {
			project.CommunityUse = *req.CommunityUse
			updates["community_use"] = project.CommunityUse
		}
		if req.CustomFields != nil {
			project.CustomFields = datatypes.JSONMap(req.CustomFields)
			updates["custom_fields"] = project.CustomFields
		}
		project.LeaderID = newLeader
		if err := tx.Model(&model.Project{}).Where("id = ?", project.ID).Updates(updates).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}

		if req.MemberIDs != nil || newLeader != oldLeader {
			var members []uint
			if req.MemberIDs != nil {
				members = *req.MemberIDs
			} else {
				current, err := currentMembers(tx, project.ID)
				if err != nil {
					return response.ErrDatabase.WithOrigin(err)
				}
				// 换队长但未给成员列表时，原队长转为普通成员
				members = append(current, oldLeader)
			}
			if err := SyncMembers(tx, project.ID, newLeader, members, s.MaxTeamMembers); err != nil {
				return err
			}
		}

		if req.Attachments != nil {
			if err := ReplaceAttachments(tx, project.ID, *req.Attachments, s.MaxAttachmentBytes); err != nil {
				return err
			}
		}

		if err := tx.Model(&model.EventProjectSubmission{}).Where("id = ?", sub.ID).Updates(map[string]any{
			"title":       project.Title,
			"description": project.Description,
			"demo_url":    project.DemoURL,
			"status":      model.StatusSubmitted,
		}).Error; err != nil {
			return response.ErrDatabase.WithOrigin(err)
		}
		return nil
	})
	if err != nil {
		return asResponseError(err)
	}

	notify.Send(ctx, notify.Event{
		Action:       notify.SubmissionUpdated,
		EventID:      event.ID,
		SubmissionID: sub.ID,
		ProjectID:    sub.ProjectID,
		ActorID:      callerID,
		Status:       string(model.StatusSubmitted),
	})
	return nil
}

// Delete 先删投稿，再删项目下的票、成员、附件，最后删项目
func (s *Service) Delete(ctx context.Context, event *model.Event, sub *model.EventProjectSubmission, callerID uint) error {
	rel, err := s.Relation(ctx, event, sub, callerID)
	if err != nil {
		return err
	}
	if !rel.Privileged() {
		return response.ErrForbidden.WithTips("只有队长、提交人或活动管理员可以删除投稿")
	}
	if !rel.Admin {
		if err := s.checkWindow(event); err != nil {
			return err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&model.EventProjectSubmission{}, sub.ID).Error; err != nil {
			return err
		}
		for _, owned := range []any{&model.ProjectVote{}, &model.ProjectMember{}, &model.ProjectAttachment{}} {
			if err := tx.Where("project_id = ?", sub.ProjectID).Delete(owned).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&model.Project{}, sub.ProjectID).Error
	})
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}

	notify.Send(ctx, notify.Event{
		Action:       notify.SubmissionDeleted,
		EventID:      event.ID,
		SubmissionID: sub.ID,
		ProjectID:    sub.ProjectID,
		ActorID:      callerID,
	})
	return nil
}

// Review 活动管理员审核；AWARDED 只能从 APPROVED 进入
func (s *Service) Review(ctx context.Context, event *model.Event, sub *model.EventProjectSubmission, callerID uint, req ReviewReq) error {
	admin, err := access.IsAdministrator(s.DB.WithContext(ctx), event, callerID)
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if !admin {
		return response.ErrForbidden.WithTips("需要活动管理员权限")
	}
	if !sub.Status.CanTransitionTo(req.Status) {
		return response.ErrInvalidStatus.WithTips(string(sub.Status) + " -> " + string(req.Status))
	}

	now := s.Now()
	updates := map[string]any{
		"status":      req.Status,
		"reviewer_id": callerID,
		"reviewed_at": now,
	}
	if req.Note != nil {
		updates["review_note"] = *req.Note
	}
	if req.Score != nil {
		updates["review_score"] = *req.Score
	}
	if err := s.DB.WithContext(ctx).Model(&model.EventProjectSubmission{}).
		Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}

	notify.Send(ctx, notify.Event{
		Action:       notify.SubmissionReviewed,
		EventID:      event.ID,
		SubmissionID: sub.ID,
		ProjectID:    sub.ProjectID,
		ActorID:      callerID,
		Status:       string(req.Status),
	})
	return nil
}

// validateCustomFields 启用且必填的字段必须有非空答案
func validateCustomFields(form model.SubmissionForm, answers map[string]any) error {
	var missing []string
	for _, d := range form.Sorted() {
		if !d.Enabled || !d.Required {
			continue
		}
		if v, ok := answers[d.Key]; !ok || isBlank(v) {
			missing = append(missing, d.Label)
		}
	}
	if len(missing) > 0 {
		return response.ErrFieldRequired.WithTips(strings.Join(missing, ", "))
	}
	return nil
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(x) == ""
	case []any:
		return len(x) == 0
	}
	return false
}

func asResponseError(err error) error {
	var e *response.Error
	if errors.As(err, &e) {
		return e
	}
	return response.ErrDatabase.WithOrigin(err)
}
