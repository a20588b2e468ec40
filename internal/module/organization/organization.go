package organization

import (
	"strconv"
	"strings"

	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateReq 定义创建组织请求的结构体
type CreateReq struct {
	Name        string `json:"name" binding:"required,max=100"` // 组织名称，全局唯一
	Description string `json:"description" binding:"max=500"`   // 组织简介
	Avatar      string `json:"avatar" binding:"max=255"`        // 组织头像URL
}

type MemberReq struct {
	UserID uint          `json:"user_id" binding:"required"`
	Role   model.OrgRole `json:"role" binding:"required,oneof=owner admin member"`
}

// MemberView 组织成员的公开信息，不含联系方式
type MemberView struct {
	UserID   uint          `json:"user_id"`
	Username string        `json:"username"`
	Name     string        `json:"name"`
	Avatar   string        `json:"avatar"`
	Role     model.OrgRole `json:"role"`
}

type OrganizationResp struct {
	model.Organization
	Members []MemberView `json:"members"`
}

func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		return 0, response.ErrInvalidRequest.WithTips("无效的ID: " + raw)
	}
	return uint(id), nil
}

func loadOrganization(c *gin.Context) (*model.Organization, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, err
	}
	var org model.Organization
	if err := database.DB.WithContext(c.Request.Context()).First(&org, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, response.ErrNotFound.WithTips("组织不存在")
		}
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &org, nil
}

// CreateOrganization 创建组织，创建者成为 owner
func CreateOrganization(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建组织请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	org := model.Organization{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Avatar:      req.Avatar,
		OwnerID:     userID,
	}
	err := database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&org).Error; err != nil {
			return err
		}
		return tx.Create(&model.OrganizationMember{
			OrganizationID: org.ID,
			UserID:         userID,
			Role:           model.OrgRoleOwner,
		}).Error
	})
	if err != nil {
		if database.IsDuplicateKey(err) {
			response.Fail(c, response.ErrAlreadyExists.WithTips("组织名称已被占用"))
			return
		}
		log.Error("创建组织失败", "error", err, "name", req.Name)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("组织创建成功", "organization_id", org.ID, "owner_id", userID)
	response.Success(c, gin.H{"organization_id": org.ID})
}

func GetOrganization(c *gin.Context) {
	org, err := loadOrganization(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var members []model.OrganizationMember
	if err := database.DB.WithContext(c.Request.Context()).
		Preload("User").
		Where("organization_id = ?", org.ID).
		Order("id ASC").
		Find(&members).Error; err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	resp := OrganizationResp{Organization: *org, Members: make([]MemberView, 0, len(members))}
	for _, m := range members {
		resp.Members = append(resp.Members, MemberView{
			UserID:   m.UserID,
			Username: m.User.Username,
			Name:     m.User.Name,
			Avatar:   m.User.Avatar,
			Role:     m.Role,
		})
	}
	response.Success(c, resp)
}

// SetMember 添加成员或修改角色
func SetMember(c *gin.Context) {
	actorID := jwt.CurrentUserID(c)
	org, err := loadOrganization(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req MemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return setMember(tx, org, actorID, req)
	})
	if err != nil {
		log.Warn("设置组织成员失败", "error", err, "organization_id", org.ID, "user_id", req.UserID)
		response.Fail(c, asResponseError(err))
		return
	}
	log.Info("组织成员已更新", "organization_id", org.ID, "user_id", req.UserID, "role", req.Role, "actor_id", actorID)
	response.Success(c)
}

func RemoveMember(c *gin.Context) {
	actorID := jwt.CurrentUserID(c)
	org, err := loadOrganization(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	targetID, err := parseID(c, "user_id")
	if err != nil {
		response.Fail(c, err)
		return
	}

	err = database.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		return removeMember(tx, org, actorID, targetID)
	})
	if err != nil {
		log.Warn("移除组织成员失败", "error", err, "organization_id", org.ID, "user_id", targetID)
		response.Fail(c, asResponseError(err))
		return
	}
	log.Info("组织成员已移除", "organization_id", org.ID, "user_id", targetID, "actor_id", actorID)
	response.Success(c)
}

// roleOf 非成员返回空角色
func roleOf(tx *gorm.DB, orgID, userID uint) (model.OrgRole, error) {
	var m model.OrganizationMember
	err := tx.Where("organization_id = ? AND user_id = ?", orgID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", errors.WithStack(err)
	}
	return m.Role, nil
}

// setMember 规则：
//   - 只有 owner 能授予 admin，授予 owner 等于转让所有权，原 owner 降为 admin
//   - admin 只能管理普通成员
//   - owner 自己的角色不能直接修改
func setMember(tx *gorm.DB, org *model.Organization, actorID uint, req MemberReq) error {
	actorRole, err := roleOf(tx, org.ID, actorID)
	if err != nil {
		return err
	}
	if !actorRole.CanAdminister() {
		return response.ErrForbidden.WithTips("需要组织管理员权限")
	}
	isOwner := actorID == org.OwnerID

	var count int64
	if err := tx.Model(&model.User{}).Where("id = ?", req.UserID).Count(&count).Error; err != nil {
		return errors.WithStack(err)
	}
	if count == 0 {
		return response.ErrNotFound.WithTips("用户不存在")
	}

	if req.UserID == org.OwnerID {
		if req.Role == model.OrgRoleOwner {
			return nil
		}
		return response.ErrForbidden.WithTips("请先转让组织所有权")
	}

	current, err := roleOf(tx, org.ID, req.UserID)
	if err != nil {
		return err
	}
	if !isOwner && (req.Role != model.OrgRoleMember || current == model.OrgRoleAdmin) {
		return response.ErrForbidden.WithTips("只有组织所有者可以管理管理员")
	}

	if req.Role == model.OrgRoleOwner {
		if err := tx.Model(&model.OrganizationMember{}).
			Where("organization_id = ? AND user_id = ?", org.ID, org.OwnerID).
			Update("role", model.OrgRoleAdmin).Error; err != nil {
			return errors.WithStack(err)
		}
		if err := tx.Model(org).Update("owner_id", req.UserID).Error; err != nil {
			return errors.WithStack(err)
		}
	}

	member := model.OrganizationMember{OrganizationID: org.ID, UserID: req.UserID, Role: req.Role}
	return errors.WithStack(tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
	}).Create(&member).Error)
}

// removeMember owner 不能被移除；admin 只能移除普通成员，任何成员都可以退出
func removeMember(tx *gorm.DB, org *model.Organization, actorID, targetID uint) error {
	if targetID == org.OwnerID {
		return response.ErrForbidden.WithTips("不能移除组织所有者")
	}
	current, err := roleOf(tx, org.ID, targetID)
	if err != nil {
		return err
	}
	if current == "" {
		return response.ErrNotFound.WithTips("该用户不是组织成员")
	}

	if actorID != targetID {
		actorRole, err := roleOf(tx, org.ID, actorID)
		if err != nil {
			return err
		}
		if !actorRole.CanAdminister() {
			return response.ErrForbidden.WithTips("需要组织管理员权限")
		}
		if actorID != org.OwnerID && current == model.OrgRoleAdmin {
			return response.ErrForbidden.WithTips("只有组织所有者可以移除管理员")
		}
	}

	return errors.WithStack(tx.Where("organization_id = ? AND user_id = ?", org.ID, targetID).
		Delete(&model.OrganizationMember{}).Error)
}

func asResponseError(err error) error {
	var e *response.Error
	if errors.As(err, &e) {
		return e
	}
	return response.ErrDatabase.WithOrigin(err)
}
