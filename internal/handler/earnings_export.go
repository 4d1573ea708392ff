package handler

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/xuri/excelize/v2"
	"salonms-backend/internal/domain"
	"salonms-backend/internal/repository"
)

// EarningsExportHandler renders the per-worker earnings report as a CSV or
// XLSX download.
type EarningsExportHandler struct {
	Repo     repository.WorkerRepository
	Currency string
}

func (h EarningsExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/workers/earnings/export", h.export)
}

func (h EarningsExportHandler) export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	items, err := h.Repo.List(r.Context(), 2000)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filenameSuffix := time.Now().Format("20060102_150405")
	switch format {
	case "csv":
		data, err := h.exportCSV(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.csv\"", filenameSuffix))
		_, _ = w.Write(data)
	case "xlsx", "excel":
		data, err := h.exportXLSX(items)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"earnings_%s.xlsx\"", filenameSuffix))
		_, _ = w.Write(data)
	default:
		writeError(w, http.StatusBadRequest, "invalid format (use csv or xlsx)")
	}
}

func (h EarningsExportHandler) exportCSV(items []domain.Worker) ([]byte, error) {
	buf := new(bytes.Buffer)
	cw := csv.NewWriter(buf)
	_ = cw.Write([]string{"id", "name", "payment_type", "commission_rate", "services_performed", "total_earnings", "current_month_earnings"})
	for _, wk := range items {
		_ = cw.Write([]string{
			strconv.FormatInt(wk.ID, 10),
			wk.Name,
			string(wk.PaymentType),
			strconv.FormatFloat(wk.CommissionRate, 'f', -1, 64),
			strconv.FormatInt(wk.ServicesPerformed, 10),
			strconv.FormatInt(wk.TotalEarnings, 10),
			strconv.FormatInt(wk.CurrentMonthEarnings, 10),
		})
	}
	cw.Flush()
	return buf.Bytes(), cw.Error()
}

func (h EarningsExportHandler) exportXLSX(items []domain.Worker) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Earnings"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	header := []string{"ID", "Name", "Payment Type", "Commission Rate", "Services", "Total Earnings", "This Month"}
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for row, wk := range items {
		total := domain.Money{Amount: wk.TotalEarnings, Currency: h.Currency}
		month := domain.Money{Amount: wk.CurrentMonthEarnings, Currency: h.Currency}
		values := []any{
			wk.ID,
			wk.Name,
			string(wk.PaymentType),
			wk.CommissionRate,
			wk.ServicesPerformed,
			total.Format(),
			month.Format(),
		}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, row+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 8)
	_ = f.SetColWidth(sheet, "B", "B", 28)
	_ = f.SetColWidth(sheet, "C", "D", 16)
	_ = f.SetColWidth(sheet, "E", "G", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
