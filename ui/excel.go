package ui

import (
	"fmt"
	"sort"

	"worklens/app"

	"github.com/xuri/excelize/v2"
)

const weeklySheet = "Weekly Report"

// buildWeeklyWorkbook renders a weekly report as a spreadsheet: a summary
// block, the Mon-Sun minutes table, top clients and category minutes.
func buildWeeklyWorkbook(report *app.WeeklyReport) (*excelize.File, error) {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", weeklySheet)

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	setRow := func(cell string, values []interface{}) error {
		return f.SetSheetRow(weeklySheet, cell, &values)
	}

	rows := [][]interface{}{
		{"Week", fmt.Sprintf("%s to %s", report.WeekStart, report.WeekEnd)},
		{"Total hours", report.TotalHours},
		{"Productive hours", report.ProductiveHours},
		{"Avg productivity", report.AvgProductivity},
		{"Trend (min/day)", report.TrendSlope},
	}
	for i, row := range rows {
		if err := setRow(fmt.Sprintf("A%d", i+1), row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}
	if err := f.SetCellStyle(weeklySheet, "A1", "A5", header); err != nil {
		return nil, err
	}

	row := 7
	if err := setRow(fmt.Sprintf("A%d", row), []interface{}{"Day", "Minutes"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(weeklySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), header); err != nil {
		return nil, err
	}
	for _, day := range report.DailyMinutes {
		row++
		if err := setRow(fmt.Sprintf("A%d", row), []interface{}{day.Day, day.Minutes}); err != nil {
			return nil, err
		}
	}

	row += 2
	if err := setRow(fmt.Sprintf("A%d", row), []interface{}{"Top clients", "Intervals"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(weeklySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), header); err != nil {
		return nil, err
	}
	for _, client := range report.TopClients {
		row++
		if err := setRow(fmt.Sprintf("A%d", row), []interface{}{client.Client, client.Count}); err != nil {
			return nil, err
		}
	}

	row += 2
	if err := setRow(fmt.Sprintf("A%d", row), []interface{}{"Category", "Minutes"}); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(weeklySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row), header); err != nil {
		return nil, err
	}
	categories := make([]string, 0, len(report.CategoryMinutes))
	for category := range report.CategoryMinutes {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		row++
		if err := setRow(fmt.Sprintf("A%d", row), []interface{}{category, report.CategoryMinutes[category]}); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(weeklySheet, "A", "A", 22); err != nil {
		return nil, err
	}
	return f, nil
}
