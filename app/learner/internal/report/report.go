// Package report 学习周报与 Excel 导出
package report

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/kidlingo/app/learner/internal/api"
	"github.com/lk2023060901/kidlingo/pkg/kidapi"
	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Tổng quan"
	DailySheet   = "Theo ngày"
)

// Service 周报服务
type Service struct {
	client *api.Client
}

// NewService 创建周报服务
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Weekly 最近 7 天 (含今天) 的学习报告
func (s *Service) Weekly(ctx context.Context) (*kidapi.WeeklyReport, error) {
	var r kidapi.WeeklyReport
	if err := s.client.Get(ctx, kidapi.PathWeeklyReport, &r); err != nil {
		return nil, errors.Wrap(err, "fetch weekly report")
	}
	return &r, nil
}

// Export 写出 xlsx：总览页与带折线图的每日分钟数页
func Export(w io.Writer, r *kidapi.WeeklyReport) error {
	if r == nil {
		return errors.New("report: nil report")
	}
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", SummarySheet)
	summary := [][]any{
		{"Chỉ số", "Giá trị"},
		{"Tổng số phút học", r.TotalMinutes},
		{"Số bài đã hoàn thành", r.LessonsCompleted},
		{"Từ đã học", strings.Join(r.LearnedWords, ", ")},
		{"Từ cần ôn thêm", strings.Join(r.WeakWords, ", ")},
	}
	if err := writeRows(f, SummarySheet, summary); err != nil {
		return err
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 24); err != nil {
		return errors.Wrap(err, "set column width")
	}
	if err := f.SetColWidth(SummarySheet, "B", "B", 48); err != nil {
		return errors.Wrap(err, "set column width")
	}

	if _, err := f.NewSheet(DailySheet); err != nil {
		return errors.Wrap(err, "create daily sheet")
	}
	daily := [][]any{{"Ngày", "Phút"}}
	for _, d := range r.DailyChart {
		daily = append(daily, []any{d.Date, d.Minutes})
	}
	if err := writeRows(f, DailySheet, daily); err != nil {
		return err
	}

	if n := len(r.DailyChart); n > 0 {
		last := n + 1
		chart := &excelize.Chart{
			Type: excelize.Line,
			Series: []excelize.ChartSeries{{
				Name:       "'" + DailySheet + "'!$B$1",
				Categories: "'" + DailySheet + "'!$A$2:$A$" + strconv.Itoa(last),
				Values:     "'" + DailySheet + "'!$B$2:$B$" + strconv.Itoa(last),
			}},
			Title: excelize.ChartTitle{Name: "Số phút học mỗi ngày"},
		}
		if err := f.AddChart(DailySheet, "D2", chart); err != nil {
			return errors.Wrap(err, "add daily chart")
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "write workbook")
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return errors.Wrap(err, "cell name")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return errors.Wrapf(err, "write %s row %d", sheet, i+1)
		}
	}
	return nil
}
