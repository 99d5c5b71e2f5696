package blockspec

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(input)
	if err != nil {
		if h.Log != nil {
			h.Log.Info("block spec rejected", zap.String("geometry", string(input.Geometry)),
				zap.String("standard", input.Standard), zap.Error(err))
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
