package autoplan

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ScanMaster/internal/calc/ringblock"
)

type Handler struct {
	Policy ringblock.Policy
	Log    *zap.Logger
}

func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var input Part
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	p := h.Policy
	if p.FallbackDepthRatios == nil {
		p = ringblock.DefaultPolicy()
	}
	res, err := Build(input, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.Log != nil {
		h.Log.Debug("plan built", zap.String("reference", res.Reference),
			zap.String("block_type", string(res.Spec.BlockType)), zap.Bool("compliant", res.Compliant))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
