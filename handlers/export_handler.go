package handlers

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"nlas.ph/portal/config"
	"nlas.ph/portal/models"
	"nlas.ph/portal/pkg/apperr"
)

// ExportPayments streams the payment ledger as xlsx (default) or csv
// (?format=csv), optionally filtered by status
func ExportPayments(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Preload("Application").Order("created_at DESC")
	if status := r.URL.Query().Get("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var payments []models.Payment
	if err := q.Find(&payments).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	headers := []string{"ID", "Application", "Type", "Amount (USD)", "Status", "Method", "Transaction", "Paid At", "Created At"}
	rows := make([][]interface{}, 0, len(payments))
	for _, p := range payments {
		serviceName := ""
		if p.Application != nil {
			serviceName = p.Application.ServiceName
		}
		paidAt := ""
		if p.PaidAt != nil {
			paidAt = p.PaidAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, []interface{}{
			p.ID.String(), serviceName, string(p.PaymentType), p.Amount,
			string(p.Status), string(p.PaymentMethod), p.TransactionID,
			paidAt, p.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, "payments", headers, rows)
		return
	}
	writeExcel(w, "Payments", headers, rows)
}

// ExportQuotations streams the quotation book as xlsx or csv
func ExportQuotations(w http.ResponseWriter, r *http.Request) {
	q := config.DB.Order("created_at DESC")
	if state := r.URL.Query().Get("state"); state != "" {
		q = q.Where("state = ?", state)
	}

	var quotations []models.Quotation
	if err := q.Find(&quotations).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	headers := []string{"ID", "Client", "Email", "Service", "Amount (USD)", "Payment Plan", "State", "Valid Until", "Created At"}
	rows := make([][]interface{}, 0, len(quotations))
	for _, qt := range quotations {
		validity := ""
		if qt.ValidityDate != nil {
			validity = qt.ValidityDate.Format("2006-01-02")
		}
		rows = append(rows, []interface{}{
			qt.ID.String(), qt.ClientFirstName + " " + qt.ClientLastName, qt.ClientEmail,
			qt.Service, qt.Amount, string(qt.PaymentType), string(qt.State),
			validity, qt.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, "quotations", headers, rows)
		return
	}
	writeExcel(w, "Quotations", headers, rows)
}

// ExportDonations streams the donation log as xlsx or csv
func ExportDonations(w http.ResponseWriter, r *http.Request) {
	var donations []models.Donation
	if err := config.DB.Order("created_at DESC").Find(&donations).Error; err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "db error", err))
		return
	}

	headers := []string{"ID", "Donor", "Email", "Amount (USD)", "Status", "Created At"}
	rows := make([][]interface{}, 0, len(donations))
	for _, d := range donations {
		rows = append(rows, []interface{}{
			d.ID.String(), d.DonorName, d.DonorEmail, d.Amount,
			string(d.Status), d.CreatedAt.Format("2006-01-02 15:04"),
		})
	}

	if r.URL.Query().Get("format") == "csv" {
		writeCSV(w, "donations", headers, rows)
		return
	}
	writeExcel(w, "Donations", headers, rows)
}

func writeExcel(w http.ResponseWriter, sheetName string, headers []string, rows [][]interface{}) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to create sheet", err))
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#4472C4"},
			Pattern: 1,
		},
	})
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for colIdx, val := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	filename := fmt.Sprintf("%s-%s.xlsx", sheetName, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if err := f.Write(w); err != nil {
		apperr.WriteJSON(w, apperr.Wrap(apperr.KindServer, "failed to write workbook", err))
	}
}

func writeCSV(w http.ResponseWriter, name string, headers []string, rows [][]interface{}) {
	filename := fmt.Sprintf("%s-%s.csv", name, time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write(headers)
	for _, row := range rows {
		record := make([]string, len(row))
		for i, val := range row {
			switch v := val.(type) {
			case string:
				record[i] = v
			case float64:
				record[i] = strconv.FormatFloat(v, 'f', 2, 64)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		cw.Write(record)
	}
}
