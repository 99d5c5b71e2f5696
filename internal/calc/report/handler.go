package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"ScanMaster/internal/calc/ringblock"
)

type Handler struct {
	Policy ringblock.Policy
	Log    *zap.Logger
}

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	p := h.Policy
	if p.FallbackDepthRatios == nil {
		p = ringblock.DefaultPolicy()
	}
	ds, err := Prepare(input, p, time.Now())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := Render(&buf, ds); err != nil {
		if h.Log != nil {
			h.Log.Error("render datasheet", zap.String("document", ds.DocumentID), zap.Error(err))
		}
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.pdf\"", ds.DocumentID))
	w.Write(buf.Bytes())
}
