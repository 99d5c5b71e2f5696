package shearwave

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func (h *Handler) Select(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := SelectMaster(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if h.Log != nil && res.Block == nil {
		h.Log.Info("no shear-wave master", zap.Float64("od_mm", input.PartODMM),
			zap.String("geometry", string(input.PartGeometry)))
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) Tube(w http.ResponseWriter, r *http.Request) {
	var input TubeInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := SelectTubeReference(input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Tubes lists the stock tube reference bank.
func (h *Handler) Tubes(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TubeSizes())
}
