package recommend

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

// Preview is returned with ?resolve=1: the recommendation and the block it
// resolves to under the handler policy.
type Preview struct {
	Recommendation Recommendation          `json:"recommendation"`
	Block          ringblock.ResolvedBlock `json:"block"`
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h *Handler) Template(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	rec, err := Template(input)
	if err != nil {
		h.logger().Info("recommendation rejected", zap.String("standard", input.Standard), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.logger().Debug("template recommended",
		zap.String("standard", string(rec.Standard)),
		zap.String("template", rec.TemplateID))

	w.Header().Set("Content-Type", "application/json")
	if r.URL.Query().Get("resolve") != "1" {
		json.NewEncoder(w).Encode(rec)
		return
	}

	block, err := ringblock.ResolveWithPolicy(rec.TemplateID, &rec.Override, h.Policy)
	if err != nil {
		w.Header().Del("Content-Type")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	json.NewEncoder(w).Encode(Preview{Recommendation: rec, Block: block})
}
