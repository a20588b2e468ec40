package vote

import (
	"fmt"
	"time"

	"event-submission-system/internal/global/database"
	"event-submission-system/internal/global/response"
	"event-submission-system/tools"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

type summaryRow struct {
	Item  string `excel:"指标"`
	Value int64  `excel:"数值"`
}

// ExportStats 投票统计导出为 Excel：概览 + 排行榜
func ExportStats(c *gin.Context) {
	event, err := loadEnabledEvent(c)
	if err != nil {
		response.Fail(c, err)
		return
	}
	if err := requireAdministrator(c, event); err != nil {
		response.Fail(c, err)
		return
	}
	stats, err := NewLedger(database.DB).Stats(c.Request.Context(), event.ID)
	if err != nil {
		response.Fail(c, response.ErrDatabase.WithOrigin(err))
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summary := []summaryRow{
		{Item: "总票数", Value: stats.TotalVotes},
		{Item: "参与人数", Value: stats.TotalParticipants},
		{Item: "投票人数", Value: stats.DistinctVoters},
	}
	if err := tools.ExportToExcel(f, "概览", summary); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	if err := tools.ExportToExcel(f, "排行榜", stats.Leaderboard); err != nil {
		log.Error("导出 excel 错误", "error", err)
		response.Fail(c, response.ErrServerInternal.WithOrigin(err))
		return
	}
	_ = f.DeleteSheet("Sheet1")

	filename := fmt.Sprintf("%s_投票统计_%s.xlsx", event.Name, time.Now().Format("20060102"))
	if err := tools.SendExcel(c, f, filename); err != nil {
		log.Error("写出 excel 失败", "error", err, "event_id", event.ID)
	}
}
