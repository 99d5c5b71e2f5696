package batch

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"ScanMaster/internal/calc/ringblock"
)

type Handler struct {
	Policy  ringblock.Policy
	Workers int
	Log     *zap.Logger
}

// EffectivePolicy is the handler policy, or the default when unset.
func (h *Handler) EffectivePolicy() ringblock.Policy {
	if h.Policy.FallbackDepthRatios == nil {
		return ringblock.DefaultPolicy()
	}
	return h.Policy
}

func (h *Handler) Plan(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Run(r.Context(), input.Items, h.EffectivePolicy(), h.Workers)
	if err != nil {
		status := http.StatusBadRequest
		if r.Context().Err() != nil {
			status = http.StatusServiceUnavailable
		}
		http.Error(w, err.Error(), status)
		return
	}
	if h.Log != nil {
		h.Log.Info("batch planned", zap.Int("items", len(res.Items)), zap.Int("failed", res.Failed))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
