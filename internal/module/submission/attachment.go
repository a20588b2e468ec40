package submission

import (
	"fmt"

	"event-submission-system/internal/global/response"
	"event-submission-system/internal/model"

	"gorm.io/gorm"
)

// AttachmentReq 附件描述，文件已由前端直传到对象存储
type AttachmentReq struct {
	FileName string `json:"fileName" binding:"required,max=255"`
	URL      string `json:"url" binding:"required,max=1000"`
	Type     string `json:"type" binding:"max=30"`
	MimeType string `json:"mimeType" binding:"max=100"`
	Size     int64  `json:"size" binding:"gte=0"`
	Order    *int   `json:"order"`
}

// ReplaceAttachments 删除项目的全部附件后按给定顺序重新插入，未指定 order 时取数组下标
func ReplaceAttachments(tx *gorm.DB, projectID uint, items []AttachmentReq, maxBytes int64) error {
	for _, item := range items {
		if maxBytes > 0 && item.Size > maxBytes {
			return response.ErrAttachmentTooLarge.WithTips(fmt.Sprintf("%s 超过 %d 字节", item.FileName, maxBytes))
		}
	}

	if err := tx.Where("project_id = ?", projectID).Delete(&model.ProjectAttachment{}).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	if len(items) == 0 {
		return nil
	}

	rows := make([]model.ProjectAttachment, 0, len(items))
	for i, item := range items {
		order := i
		if item.Order != nil {
			order = *item.Order
		}
		rows = append(rows, model.ProjectAttachment{
			ProjectID: projectID,
			FileName:  item.FileName,
			URL:       item.URL,
			Type:      item.Type,
			MimeType:  item.MimeType,
			Size:      item.Size,
			Order:     order,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return response.ErrDatabase.WithOrigin(err)
	}
	return nil
}
