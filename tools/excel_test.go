package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type excelRow struct {
	Rank    int       `excel:"排名"`
	Title   string    `excel:"作品"`
	Secret  string    `excel:"-"`
	Created time.Time `excel:"提交时间"`
	Score   *int      `excel:"评分"`
}

func TestExportToExcel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	score := 90
	created := time.Date(2026, 5, 1, 8, 30, 0, 0, time.UTC)
	rows := []excelRow{
		{Rank: 1, Title: "A", Secret: "x", Created: created, Score: &score},
		{Rank: 2, Title: "B"},
	}
	require.NoError(t, ExportToExcel(f, "排行", rows))

	got, err := f.GetRows("排行")
	require.NoError(t, err)
	require.Equal(t, []string{"排名", "作品", "提交时间", "评分"}, got[0])
	require.Equal(t, []string{"1", "A", "2026-05-01 08:30:00", "90"}, got[1])
	require.Equal(t, []string{"2", "B"}, got[2])
}

func TestExportToExcelRejectsNonSlice(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.Error(t, ExportToExcel(f, "", excelRow{}))
	require.Error(t, ExportToExcel(f, "", []int{1, 2}))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash := PasswordEncrypt("s3cret!pw")
	require.True(t, PasswordCompare("s3cret!pw", hash))
	require.False(t, PasswordCompare("wrong", hash))
}
