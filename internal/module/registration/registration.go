package registration

import (
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

// ReviewReq 审核报名
type ReviewReq struct {
	Status model.RegistrationStatus `json:"status" binding:"required,oneof=APPROVED REJECTED"`
}

type ListReq struct {
	Status model.RegistrationStatus `form:"status" binding:"omitempty,oneof=PENDING APPROVED REJECTED CANCELLED"` // 按状态筛选，可选
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, response.ErrInvalidRequest.WithTips("无效的ID: " + raw)
	}
	return uint(id), nil
}

func loadEvent(c *gin.Context) (*model.Event, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	return access.LoadEvent(c.Request.Context(), database.DB, id)
}

func requireAdministrator(c *gin.Context, event *model.Event) error {
	ok, err := access.IsAdministrator(database.DB.WithContext(c.Request.Context()), event, jwt.CurrentUserID(c))
	if err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if !ok {
		return response.ErrForbidden.WithTips("需要活动管理员权限")
	}
	return nil
}

// initialStatus 活动不需要审核时直接通过
func initialStatus(event *model.Event) model.RegistrationStatus {
	if event.RequireApproval {
		return model.RegistrationPending
	}
	return model.RegistrationApproved
}

// Register 报名活动；取消过的报名可以重新报名，被拒绝的不行
func Register(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	var reg model.EventRegistration
	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("event_id = ? AND user_id = ?", event.ID, userID).First(&reg).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reg = model.EventRegistration{EventID: event.ID, UserID: userID, Status: initialStatus(event)}
			return tx.Create(&reg).Error
		case err != nil:
			return err
		}

		switch reg.Status {
		case model.RegistrationCancelled:
			reg.Status = initialStatus(event)
			return tx.Model(&reg).Update("status", reg.Status).Error
		case model.RegistrationRejected:
			return response.ErrForbidden.WithTips("报名已被拒绝")
		default:
			return response.ErrAlreadyExists.WithTips("已经报名")
		}
	})
	if err != nil {
		var e *response.Error
		switch {
		case errors.As(err, &e):
			response.Fail(c, e)
		case database.IsDuplicateKey(err):
			response.Fail(c, response.ErrAlreadyExists.WithTips("已经报名"))
		default:
			log.Error("报名失败", "error", err, "event_id", event.ID, "user_id", userID)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
		}
		return
	}

	log.Info("报名成功", "event_id", event.ID, "user_id", userID, "status", reg.Status)
	response.Success(c, reg)
}

// Cancel 取消本人报名，已投出的票不受影响
func Cancel(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	result := database.DB.WithContext(c.Request.Context()).
		Model(&model.EventRegistration{}).
		Where("event_id = ? AND user_id = ? AND status NOT IN ?", event.ID, userID, model.InactiveRegistrationStatuses).
		Update("status", model.RegistrationCancelled)
	if result.Error != nil {
		log.Error("取消报名失败", "error", result.Error, "event_id", event.ID, "user_id", userID)
		response.Fail(c, response.ErrDatabase.WithOrigin(result.Error))
		return
	}
	if result.RowsAffected == 0 {
		response.Fail(c, response.ErrNotFound.WithTips("没有有效的报名"))
		return
	}

	log.Info("报名已取消", "event_id", event.ID, "user_id", userID)
	response.Success(c)
}

// Mine 本人在该活动的报名状态
func Mine(c *gin.Context) {
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var reg model.EventRegistration
	err = database.DB.WithContext(c.Request.Context()).
		Where("event_id = ? AND user_id = ?", event.ID, jwt.CurrentUserID(c)).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, response.ErrNotFound.WithTips("未报名"))
		return
	}
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, reg)
}

// Review 管理员审核报名，已取消的报名不能审核
func Review(c *gin.Context) {
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := requireAdministrator(c, event); err != nil {
		response.Fail(c, err)
		return
	}
	targetID, err := parseID(c, "user_id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var reg model.EventRegistration
	err = database.DB.WithContext(c.Request.Context()).
		Where("event_id = ? AND user_id = ?", event.ID, targetID).
		First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, response.ErrNotFound.WithTips("报名不存在"))
		return
	}
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if reg.Status == model.RegistrationCancelled {
		response.Fail(c, response.ErrInvalidStatus.WithTips("报名已取消"))
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Model(&reg).Update("status", req.Status).Error; err != nil {
		log.Error("审核报名失败", "error", err, "event_id", event.ID, "user_id", targetID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	reg.Status = req.Status

	log.Info("报名审核完成", "event_id", event.ID, "user_id", targetID, "status", req.Status, "reviewer_id", jwt.CurrentUserID(c))
	response.Success(c, reg)
}

// List 管理员查看报名列表，包含报名人的联系方式
func List(c *gin.Context) {
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := requireAdministrator(c, event); err != nil {
		response.Fail(c, err)
		return
	}
	var req ListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	query := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("event_id = ?", event.ID)
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	}
	var regs []model.EventRegistration
	if err := query.Order("id ASC").Find(&regs).Error; err != nil {
		log.Error("获取报名列表失败", "error", err, "event_id", event.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	response.Success(c, gin.H{
		"registrations": regs,
		"total":         len(regs),
	})
}
