package importer

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ScanMaster/internal/calc/premium/autoplan"
	"ScanMaster/internal/calc/premium/batch"
)

const (
	maxUpload = 10 << 20
	xlsxType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type Handler struct {
	Batch *batch.Handler
	Log   *zap.Logger
}

type ImportResult struct {
	Count   int          `json:"count"`
	Skipped []RowError   `json:"skipped"`
	Rows    []Row        `json:"rows"`
	Batch   batch.Result `json:"batch"`
}

// Parts plans every row of an uploaded part list. ?format=xlsx returns the
// plans as a workbook instead of JSON.
func (h *Handler) Parts(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	rows, skipped, err := ReadParts(file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(rows) == 0 {
		http.Error(w, "No valid rows", http.StatusBadRequest)
		return
	}

	b := h.Batch
	if b == nil {
		b = &batch.Handler{}
	}
	parts := make([]autoplan.Part, len(rows))
	for i, row := range rows {
		parts[i] = row.Part
	}
	res, err := batch.Run(r.Context(), parts, b.EffectivePolicy(), b.Workers)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.Log != nil {
		h.Log.Info("part list imported", zap.Int("rows", len(rows)), zap.Int("skipped", len(skipped)), zap.Int("failed", res.Failed))
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxType)
		w.Header().Set("Content-Disposition", "attachment; filename=\"plans.xlsx\"")
		if err := WriteResults(w, rows, res); err != nil && h.Log != nil {
			h.Log.Error("write plans workbook", zap.Error(err))
		}
		return
	}
	if skipped == nil {
		skipped = []RowError{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Count: len(rows), Skipped: skipped, Rows: rows, Batch: res})
}

// Template serves an empty part list.
func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	f, err := NewTemplate()
	if err != nil {
		http.Error(w, "Workbook error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", xlsxType)
	w.Header().Set("Content-Disposition", "attachment; filename=\"parts.xlsx\"")
	f.WriteTo(w)
}
