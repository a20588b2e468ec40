package vote

import (
	"context"
	"net/http"
	"strconv"

	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, response.ErrInvalidRequest.WithTips("无效的ID: " + raw)
	}
	return uint(id), nil
}

// loadSubmission 读取投稿及其项目；未开启投稿功能的活动按不存在处理
func loadSubmission(c *gin.Context) (*model.Event, *model.EventProjectSubmission, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	var sub model.EventProjectSubmission
	if err := database.DB.WithContext(c.Request.Context()).
		Preload("Project").
		First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, response.ErrNotFound.WithTips("投稿不存在")
		}
		return nil, nil, response.ErrDatabase.WithOrigin(err)
	}
	event, err := access.LoadEvent(c.Request.Context(), database.DB, sub.EventID)
	if err != nil {
		return nil, nil, err
	}
	if !event.SubmissionsEnabled {
		return nil, nil, response.ErrNotFound.WithTips("投稿不存在")
	}
	return event, &sub, nil
}

func loadEnabledEvent(c *gin.Context) (*model.Event, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	event, err := access.LoadEvent(c.Request.Context(), database.DB, id)
	if err != nil {
		return nil, err
	}
	if !event.SubmissionsEnabled {
		return nil, response.ErrNotFound.WithTips("活动不存在")
	}
	return event, nil
}

func requireAdministrator(c *gin.Context, event *model.Event) error {
	admin, err := access.IsAdministrator(database.DB.WithContext(c.Request.Context()), event, jwt.CurrentUserID(c))
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if !admin {
		return response.ErrForbidden.WithTips("需要活动管理员权限")
	}
	return nil
}

// writeResult 成功 200，业务失败 400，响应体都是 Result
func writeResult(c *gin.Context, result Result) {
	if result.Success {
		c.JSON(http.StatusOK, result)
		return
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, result)
}

func Cast(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, sub, err := loadSubmission(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	result, err := NewLedger(database.DB).Cast(c.Request.Context(), event, &sub.Project, userID)
	if err != nil {
		log.Error("投票失败", "error", err, "submission_id", sub.ID, "user_id", userID)
		response.Fail(c, err)
		return
	}
	if result.Success {
		log.Info("投票成功", "submission_id", sub.ID, "user_id", userID)
	} else {
		log.Debug("投票被拒绝", "submission_id", sub.ID, "user_id", userID, "code", result.Error)
	}
	writeResult(c, result)
}

func Revoke(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, sub, err := loadSubmission(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	result, err := NewLedger(database.DB).Revoke(c.Request.Context(), event, &sub.Project, userID)
	if err != nil {
		log.Error("撤票失败", "error", err, "submission_id", sub.ID, "user_id", userID)
		response.Fail(c, err)
		return
	}
	if result.Success {
		log.Info("撤票成功", "submission_id", sub.ID, "user_id", userID)
	}
	writeResult(c, result)
}

type OverrideReq struct {
	VoteCount *int64 `json:"voteCount" binding:"required,gte=0"`
}

// Override 管理员直接指定展示票数，账本不变
func Override(c *gin.Context) {
	event, sub, err := loadSubmission(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := requireAdministrator(c, event); err != nil {
		response.Fail(c, err)
		return
	}
	var req OverrideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	count, err := NewLedger(database.DB).Override(c.Request.Context(), sub.ProjectID, event.ID, *req.VoteCount)
	if err != nil {
		log.Error("调整票数失败", "error", err, "submission_id", sub.ID)
		response.Fail(c, err)
		return
	}
	log.Info("票数已调整", "submission_id", sub.ID, "vote_count", count, "operator", jwt.CurrentUserID(c))
	response.Success(c, gin.H{
		"submissionId": sub.ID,
		"voteCount":    count,
	})
}

func GetStats(c *gin.Context) {
	event, err := loadEnabledEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	stats, err := NewLedger(database.DB).Stats(c.Request.Context(), event.ID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, stats)
}

type MineResp struct {
	VotedSubmissionIDs []uint `json:"votedSubmissionIds"`
	RemainingVotes     int    `json:"remainingVotes"`
}

// Mine 当前用户在活动内已投的投稿和剩余票数
func Mine(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, err := loadEnabledEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	resp, err := Summarize(c.Request.Context(), NewLedger(database.DB), event.ID, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, resp)
}

// Summarize 把投过票的项目换算成投稿 ID
func Summarize(ctx context.Context, ledger *Ledger, eventID, userID uint) (*MineResp, error) {
	projectIDs, err := ledger.VotedProjects(ctx, eventID, userID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	remaining, err := ledger.Remaining(ctx, eventID, userID)
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	resp := &MineResp{VotedSubmissionIDs: []uint{}, RemainingVotes: remaining}
	if len(projectIDs) == 0 {
		return resp, nil
	}
	if err := ledger.DB.WithContext(ctx).Model(&model.EventProjectSubmission{}).
		Where("event_id = ? AND project_id IN ?", eventID, projectIDs).
		Order("id ASC").
		Pluck("id", &resp.VotedSubmissionIDs).Error; err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return resp, nil
}
