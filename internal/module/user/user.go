package user

import (
	"strings"
	"unicode"

	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"
	"event-submission-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// LoginReq 登录请求
type LoginReq struct {
	Username string `json:"username" binding:"required,max=50"`
	Password string `json:"password" binding:"required"`
}

type RegisterReq struct {
	LoginReq
	Name       string `json:"name" binding:"required,max=50"`
	Email      string `json:"email" binding:"omitempty,email,max=100"`
	Phone      string `json:"phone" binding:"max=30"`
	WeChat     string `json:"wechat" binding:"max=50"`
	Region     string `json:"region" binding:"max=100"`
	Occupation string `json:"occupation" binding:"max=100"`
}

// UpdateMeReq 使用指针类型支持部分更新
type UpdateMeReq struct {
	Name       *string `json:"name" binding:"omitempty,min=1,max=50"`
	Avatar     *string `json:"avatar" binding:"omitempty,max=255"`
	Bio        *string `json:"bio" binding:"omitempty,max=500"`
	Email      *string `json:"email" binding:"omitempty,max=100"`
	Phone      *string `json:"phone" binding:"omitempty,max=30"`
	WeChat     *string `json:"wechat" binding:"omitempty,max=50"`
	Region     *string `json:"region" binding:"omitempty,max=100"`
	Occupation *string `json:"occupation" binding:"omitempty,max=100"`
}

type LoginResp struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// validatePasswordStrength 至少 8 位，同时包含字母和数字
func validatePasswordStrength(password string) error {
	if len(password) < 8 {
		return errors.New("密码长度必须至少8字符")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter {
		return errors.New("密码必须包含至少一个字母")
	}
	if !hasDigit {
		return errors.New("密码必须包含至少一个数字")
	}
	return nil
}

// Register 处理用户注册请求
func Register(c *gin.Context) {
	var req RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定注册请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	if err := validatePasswordStrength(req.Password); err != nil {
		log.Warn("密码强度验证失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err).WithTips(err.Error()))
		return
	}

	user := model.User{
		Username:   req.Username,
		Password:   tools.PasswordEncrypt(req.Password),
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		WeChat:     req.WeChat,
		Region:     req.Region,
		Occupation: req.Occupation,
	}
	// 用户名唯一索引兜底并发注册
	if err := database.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if database.IsDuplicateKey(err) {
			log.Warn("用户已存在", "username", req.Username)
			response.Fail(c, response.ErrAlreadyExists.WithTips("用户名已被占用"))
			return
		}
		log.Error("创建用户失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	log.Info("用户注册成功", "user_id", user.ID, "username", user.Username)
	response.Success(c, issueToken(&user))
}

// Login 处理用户登录请求
func Login(c *gin.Context) {
	var req LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定登录请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	var user model.User
	err := database.DB.WithContext(c.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 不区分用户不存在和密码错误
		log.Warn("用户不存在", "username", req.Username)
		response.Fail(c, response.ErrInvalidPassword)
		return
	case err != nil:
		log.Error("数据库查询失败", "error", err, "username", req.Username)
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	if !tools.PasswordCompare(req.Password, user.Password) {
		log.Warn("密码错误", "username", req.Username)
		response.Fail(c, response.ErrInvalidPassword)
		return
	}

	log.Info("用户登录成功", "user_id", user.ID, "username", user.Username)
	response.Success(c, issueToken(&user))
}

func issueToken(user *model.User) LoginResp {
	return LoginResp{
		Token:    jwt.CreateToken(jwt.Payload{UserID: user.ID, Username: user.Username}),
		UserID:   user.ID,
		Username: user.Username,
	}
}

func loadMe(c *gin.Context) (*model.User, error) {
	var user model.User
	err := database.DB.WithContext(c.Request.Context()).First(&user, jwt.CurrentUserID(c)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, response.ErrTokenInvalid.WithTips("用户不存在")
	}
	if err != nil {
		return nil, response.ErrDatabase.WithOrigin(err)
	}
	return &user, nil
}

// GetMe 返回本人资料，包含私有联系方式
func GetMe(c *gin.Context) {
	user, err := loadMe(c)
	if err != nil {
		log.Warn("查询用户失败", "error", err, "user_id", jwt.CurrentUserID(c))
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}

func UpdateMe(c *gin.Context) {
	var req UpdateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	user, err := loadMe(c)
	if err != nil {
		response.Fail(c, err)
		return
	}

	updates := map[string]any{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = strings.TrimSpace(*v)
		}
	}
	set("name", req.Name)
	set("avatar", req.Avatar)
	set("bio", req.Bio)
	set("email", req.Email)
	set("phone", req.Phone)
	set("we_chat", req.WeChat)
	set("region", req.Region)
	set("occupation", req.Occupation)

	if len(updates) > 0 {
		if err := database.DB.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
			log.Error("更新用户资料失败", "error", err, "user_id", user.ID)
			response.Fail(c, response.ErrDatabase.WithOrigin(err))
			return
		}
		log.Info("用户资料已更新", "user_id", user.ID, "fields", len(updates))
	}

	user, err = loadMe(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, user)
}
