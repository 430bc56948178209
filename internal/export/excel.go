// Package export renders report rows as Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/example/ec-storefront/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	DailySalesSheet = "Daily Sales"
	OrdersSheet     = "Orders"

	DailySalesFilename = "daily_sales_report.xlsx"
	OrdersFilename     = "detailed_orders_report.xlsx"

	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type column struct {
	header string
	width  float64
}

var dailyColumns = []column{
	{"Date", 15},
	{"Total Sales", 15},
	{"Number of Orders", 18},
}

var orderColumns = []column{
	{"Order ID", 38},
	{"Date/Time", 25},
	{"User ID", 38},
	{"Status", 15},
	{"Total Amount", 15},
}

// DailySalesWorkbook builds a workbook with one row per day.
func DailySalesWorkbook(days []report.DailySales) (*excelize.File, error) {
	rows := make([][]any, 0, len(days))
	for _, d := range days {
		rows = append(rows, []any{d.Date, d.TotalSales.InexactFloat64(), d.OrderCount})
	}
	return workbook(DailySalesSheet, dailyColumns, rows)
}

// OrdersWorkbook builds a workbook with one row per order.
func OrdersWorkbook(orders []report.OrderRow) (*excelize.File, error) {
	rows := make([][]any, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []any{
			o.OrderID,
			o.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			o.UserID,
			string(o.Status),
			o.TotalAmount.InexactFloat64(),
		})
	}
	return workbook(OrdersSheet, orderColumns, rows)
}

// Write streams f to w and closes it.
func Write(w io.Writer, f *excelize.File) error {
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}

func workbook(sheet string, columns []column, rows [][]any) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			f.Close()
			return nil, err
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			f.Close()
			return nil, err
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	last, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetCellStyle(sheet, "A1", last+"1", bold); err != nil {
		f.Close()
		return nil, err
	}

	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			f.Close()
			return nil, err
		}
	}
	return f, nil
}
