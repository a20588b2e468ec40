package submission

import (
	"fmt"
	"strconv"
	"time"

	"event-submission-system/config"
	"event-submission-system/internal/global/access"
	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/jwt"
	"event-submission-system/internal/global/objectstore"
	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"
	"event-submission-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

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

// loadSubmission 解析路径中的投稿 ID 并读取
func loadSubmission(c *gin.Context, svc *Service) (*model.EventProjectSubmission, *model.Event, error) {
	id, err := parseID(c, "id")
	if err != nil {
		return nil, nil, err
	}
	return svc.Load(c.Request.Context(), id)
}

// ListSubmissions 获取活动的投稿列表
func ListSubmissions(c *gin.Context) {
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ListReq
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	resp, err := NewService(database.DB).List(c.Request.Context(), event, jwt.CurrentUserID(c), req)
	if err != nil {
		log.Error("获取投稿列表失败", "error", err, "event_id", event.ID)
		response.Fail(c, err)
		return
	}
	response.Success(c, resp)
}

func GetSubmission(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		response.Fail(c, err)
		return
	}
	view, err := NewService(database.DB).Get(c.Request.Context(), id, jwt.CurrentUserID(c))
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// CreateSubmission 处理创建投稿请求
func CreateSubmission(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req CreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定创建投稿请求失败", "error", err)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}

	svc := NewService(database.DB)
	sub, err := svc.Create(c.Request.Context(), event, userID, req)
	if err != nil {
		log.Warn("创建投稿失败", "error", err, "event_id", event.ID, "user_id", userID)
		response.Fail(c, err)
		return
	}
	log.Info("投稿创建成功", "submission_id", sub.ID, "event_id", event.ID, "user_id", userID)

	view, err := svc.Get(c.Request.Context(), sub.ID, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateSubmission 处理更新投稿请求，修改后需要重新审核
func UpdateSubmission(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	svc := NewService(database.DB)
	sub, event, err := loadSubmission(c, svc)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req UpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("绑定更新投稿请求失败", "error", err, "submission_id", sub.ID)
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.Update(c.Request.Context(), event, sub, userID, req); err != nil {
		log.Warn("更新投稿失败", "error", err, "submission_id", sub.ID, "user_id", userID)
		response.Fail(c, err)
		return
	}
	log.Info("投稿更新成功", "submission_id", sub.ID, "user_id", userID)

	view, err := svc.Get(c.Request.Context(), sub.ID, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

// DeleteSubmission 投稿与项目一起删除
func DeleteSubmission(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	svc := NewService(database.DB)
	sub, event, err := loadSubmission(c, svc)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := svc.Delete(c.Request.Context(), event, sub, userID); err != nil {
		log.Warn("删除投稿失败", "error", err, "submission_id", sub.ID, "user_id", userID)
		response.Fail(c, err)
		return
	}
	log.Info("投稿删除成功", "submission_id", sub.ID, "project_id", sub.ProjectID, "user_id", userID)
	response.Success(c)
}

func ReviewSubmission(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	svc := NewService(database.DB)
	sub, event, err := loadSubmission(c, svc)
	if err != nil {
		response.Fail(c, err)
		return
	}
	var req ReviewReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if err := svc.Review(c.Request.Context(), event, sub, userID, req); err != nil {
		response.Fail(c, err)
		return
	}
	log.Info("投稿审核完成", "submission_id", sub.ID, "status", req.Status, "reviewer_id", userID)

	view, err := svc.Get(c.Request.Context(), sub.ID, userID)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success(c, view)
}

type PresignReq struct {
	FileName    string `json:"fileName" binding:"required,max=255"`
	ContentType string `json:"contentType" binding:"max=100"`
	Size        int64  `json:"size" binding:"gte=0"`
}

// PresignAttachment 签发附件直传地址，文件不经过本服务
func PresignAttachment(c *gin.Context) {
	var req PresignReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, response.ErrInvalidRequest.WithOrigin(err))
		return
	}
	if limit := config.Get().Submission.MaxAttachmentBytes; limit > 0 && req.Size > limit {
		response.Fail(c, response.ErrAttachmentTooLarge.WithTips(fmt.Sprintf("上限 %d 字节", limit)))
		return
	}
	resp, err := objectstore.Default().GeneratePresignedUploadURL(c.Request.Context(), objectstore.PresignedUploadRequest{
		Filename:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		if errors.Is(err, objectstore.ErrBucketNotConfigured) {
			response.Fail(c, response.ErrStorage.WithTips("未配置对象存储"))
			return
		}
		log.Error("生成预签名地址失败", "error", err)
		response.Fail(c, response.ErrStorage.WithOrigin(err))
		return
	}
	response.Success(c, resp)
}

type exportRow struct {
	Rank      int                    `excel:"排名"`
	ID        uint                   `excel:"投稿ID"`
	Title     string                 `excel:"作品"`
	Leader    string                 `excel:"队长"`
	TeamSize  int                    `excel:"团队人数"`
	VoteCount int64                  `excel:"票数"`
	Status    model.SubmissionStatus `excel:"状态"`
	CreatedAt time.Time              `excel:"提交时间"`
}

// ExportSubmissions 按票数降序导出投稿排行
func ExportSubmissions(c *gin.Context) {
	userID := jwt.CurrentUserID(c)
	event, err := loadEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	admin, err := access.IsAdministrator(database.DB.WithContext(c.Request.Context()), event, userID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}
	if !admin {
		response.Fail(c, response.ErrForbidden.WithTips("需要活动管理员权限"))
		return
	}

	list, err := NewService(database.DB).List(c.Request.Context(), event, userID, ListReq{Sort: string(SortVoteCount), Order: "desc"})
	if err != nil {
		response.Fail(c, err)
		return
	}
	rows := make([]exportRow, 0, len(list.Submissions))
	for _, v := range list.Submissions {
		leader := v.Leader.Name
		if leader == "" {
			leader = v.Leader.Username
		}
		rows = append(rows, exportRow{
			Rank:      v.Rank,
			ID:        v.ID,
			Title:     v.Title,
			Leader:    leader,
			TeamSize:  len(v.Members) + 1,
			VoteCount: v.VoteCount,
			Status:    v.Status,
			CreatedAt: v.CreatedAt,
		})
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := tools.ExportToExcel(f, "投稿排行", rows); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	_ = f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("%s_投稿排行_%s.xlsx", event.Name, time.Now().Format("20060102"))
	if err := tools.SendExcel(c, f, filename); err != nil {
		log.Error("写出 excel 失败", "error", err, "event_id", event.ID)
	}
}
