package event

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// CreateReq 定义创建活动请求的结构体
type CreateReq struct {
	Name               string                  `json:"name" binding:"required,max=100"`                                         // 活动名称
	Description        string                  `json:"description"`                                                             // 活动描述
	Type               model.EventType         `json:"type" binding:"required,oneof=HACKATHON COMPETITION EXHIBITION MEETUP"` // 活动类型，决定投稿类型
	OrganizationID     *uint                   `json:"organization_id"`                                                         // 所属组织，调用者须为其管理员
	StartTime          *time.Time              `json:"start_time"`
	EndTime            *time.Time              `json:"end_time"` // 投票截止时间
	SubmissionsEnabled bool                    `json:"submissions_enabled"`
	SubmissionOpen     bool                    `json:"submission_open"`
	SubmissionDeadline *time.Time              `json:"submission_deadline"`
	RequireApproval    bool                    `json:"require_approval"` // 报名是否需要审核
	SubmissionForm     []model.FieldDescriptor `json:"submission_form" binding:"dive"`
}

// UpdateReq 使用指针类型支持部分更新
type UpdateReq struct {
	Name               *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description        *string    `json:"description"`
	StartTime          *time.Time `json:"start_time"`
	EndTime            *time.Time `json:"end_time"`
	SubmissionsEnabled *bool      `json:"submissions_enabled"`
	SubmissionOpen     *bool      `json:"submission_open"`
	SubmissionDeadline *time.Time `json:"submission_deadline"`
	RequireApproval    *bool      `json:"require_approval"`
}

type FormReq struct {
	Fields []model.FieldDescriptor `json:"fields" binding:"dive"`
}

type ListReq struct {
	Page     int    `form:"page"`      // 页码，默认为1
	PageSize int    `form:"page_size"` // 每页大小，默认为10
	Name     string `form:"name"`      // 活动名称模糊查询
}

func parseID(c *gin.Context) (uint, error) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, response.ErrInvalidRequest.WithTips("无效的ID: " + raw)
	}
	return uint(id), nil
}

// loadManagedEvent 读取活动并要求调用者是活动管理员
func loadManagedEvent(c *gin.Context) (*model.Event, error) {
	id, err := parseID(c)
	if err != nil {
		return nil, err
	}
	event, err := access.LoadEvent(c.Request.Context(), database.DB, id)
	if err != nil {
		return nil, err
	}
	admin, err := access.IsAdministrator(database.DB.WithContext(c.Request.Context()), event, jwt.CurrentUserID(c))
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	if !admin {
		return nil, response.ErrForbidden.WithTips("需要活动管理员权限")
	}
	return event, nil
}

// validateForm 字段 key 不能重复，选择题必须给出选项；返回按 order 排好的表单
func validateForm(fields []model.FieldDescriptor) (model.SubmissionForm, error) {
	keys := lo.Map(fields, func(f model.FieldDescriptor, _ int) string { return strings.TrimSpace(f.Key) })
	if dup := lo.FindDuplicates(keys); len(dup) > 0 {
		return nil, response.ErrInvalidRequest.WithTips("表单字段重复: " + strings.Join(dup, ","))
	}
	for i, f := range fields {
		fields[i].Key = keys[i]
		if f.Kind == model.FieldSelect && len(f.Options) == 0 {
			return nil, response.ErrInvalidRequest.WithTips(fmt.Sprintf("字段 %s 缺少选项", f.Key))
		}
	}
	return model.SubmissionForm(fields).Sorted(), nil
}

func validateTimes(e *model.Event) error {
	if e.StartTime != nil && e.EndTime != nil && e.EndTime.Before(*e.StartTime) {
		return response.ErrInvalidRequest.WithTips("结束时间不能早于开始时间")
	}
	return nil
}

// CreateEvent 处理创建活动请求，调用者成为主办人
func CreateEvent(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建活动请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if req.OrganizationID != nil {
		ok, err := access.IsOrgAdministrator(database.DB.WithContext(c.Request.Context()), *req.OrganizationID, userID)
		if err != nil {
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		if !ok {
			log.Warn("非组织管理员创建活动", "organization_id", *req.OrganizationID, "user_id", userID)
			response.Fail(c, response.ErrForbidden.WithTips("需要组织管理员权限"))
			return
		}
	}
	form, err := validateForm(req.SubmissionForm)
	if err != nil {
		response.Fail(c, err)
		return
	}

	event := model.Event{
		Name:               req.Name,
		Description:        req.Description,
		Type:               req.Type,
		OrganizerID:        userID,
		OrganizationID:     req.OrganizationID,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		SubmissionsEnabled: req.SubmissionsEnabled,
		SubmissionOpen:     req.SubmissionOpen,
		SubmissionDeadline: req.SubmissionDeadline,
		RequireApproval:    req.RequireApproval,
		SubmissionForm:     datatypes.JSONSlice[model.FieldDescriptor](form),
	}
	if err := validateTimes(&event); err != nil {
		response.Fail(c, err)
		return
	}
	if err := database.DB.WithContext(c.Request.Context()).Create(&event).Error; err != nil {
		log.Error("创建活动失败", "error", err, "name", req.Name)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("活动创建成功", "event_id", event.ID, "organizer_id", userID)
	response.Success(c, event)
}

// ListEvents 获取活动列表（支持分页和名称模糊查询）
func ListEvents(c *gin.Context) {
	var req ListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 || req.PageSize > 100 {
		req.PageSize = 10
	}

	query := database.DB.WithContext(c.Request.Context()).Model(&model.Event{})
	if req.Name != "" {
		query = query.Where("name LIKE ?", "%"+req.Name+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		log.Error("获取活动总数失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	var events []model.Event
	if err := query.Order("id DESC").
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Find(&events).Error; err != nil {
		log.Error("获取活动列表失败", "error", err)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	response.Success(c, gin.H{
		"events":      events,
		"total":       total,
		"page":        req.Page,
		"page_size":   req.PageSize,
		"total_pages": (total + int64(req.PageSize) - 1) / int64(req.PageSize),
	})
}

func GetEvent(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	event, err := access.LoadEvent(c.Request.Context(), database.DB, id)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, event)
}

// UpdateEvent 部分更新活动，成功后清除缓存
func UpdateEvent(c *gin.Context) {
	event, err := loadManagedEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	if req.Name != nil {
		event.Name = *req.Name
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.StartTime != nil {
		event.StartTime = req.StartTime
	}
	if req.EndTime != nil {
		event.EndTime = req.EndTime
	}
	if req.SubmissionsEnabled != nil {
		event.SubmissionsEnabled = *req.SubmissionsEnabled
	}
	if req.SubmissionOpen != nil {
		event.SubmissionOpen = *req.SubmissionOpen
	}
	if req.SubmissionDeadline != nil {
		event.SubmissionDeadline = req.SubmissionDeadline
	}
	if req.RequireApproval != nil {
		event.RequireApproval = *req.RequireApproval
	}
	if err := validateTimes(event); err != nil {
		response.Fail(c, err)
		return
	}

	if err := database.DB.WithContext(c.Request.Context()).Omit("Organizer").Save(event).Error; err != nil {
		log.Error("更新活动失败", "error", err, "event_id", event.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	access.InvalidateEvent(c.Request.Context(), event.ID)

	log.Info("活动更新成功", "event_id", event.ID, "user_id", jwt.CurrentUserID(c))
	response.Success(c, event)
}

// UpdateForm 整体替换投稿表单配置
func UpdateForm(c *gin.Context) {
	event, err := loadManagedEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req FormReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	form, err := validateForm(req.Fields)
	if err != nil {
		response.Fail(c, err)
		return
	}

	event.SubmissionForm = datatypes.JSONSlice[model.FieldDescriptor](form)
	if err := database.DB.WithContext(c.Request.Context()).
		Model(&model.Event{}).
		Where("id = ?", event.ID).
		Update("submission_form", event.SubmissionForm).Error; err != nil {
		log.Error("更新投稿表单失败", "error", err, "event_id", event.ID)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	access.InvalidateEvent(c.Request.Context(), event.ID)

	log.Info("投稿表单已更新", "event_id", event.ID, "fields", len(form))
	response.Success(c, event.SubmissionForm)
}
