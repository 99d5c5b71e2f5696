package ringblock

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

type Handler struct {
	Policy Policy
	Log    *zap.Logger
}

type ResolveRequest struct {
	TemplateID string            `json:"template_id"`
	Override   *GeometryOverride `json:"override,omitempty"`

	// Custom, when set, is resolved instead of a built-in template.
	Custom *CustomTemplate `json:"custom,omitempty"`
	Policy *Policy         `json:"policy,omitempty"`
}

func (h *Handler) logger() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h *Handler) policy() Policy {
	if h.Policy.FallbackDepthRatios == nil {
		return DefaultPolicy()
	}
	return h.Policy
}

// Resolve runs the request under p. A request-level Policy wins over p.
func (req ResolveRequest) Resolve(p Policy) (ResolvedBlock, error) {
	if req.Policy != nil {
		p = *req.Policy
	}
	if req.Custom != nil {
		t, err := CreateCustom(*req.Custom)
		if err != nil {
			return ResolvedBlock{}, err
		}
		return ResolveTemplate(t, req.Override, p)
	}
	return ResolveWithPolicy(req.TemplateID, req.Override, p)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	res, err := req.Resolve(h.policy())
	if err != nil {
		h.logger().Info("ring block rejected", zap.String("template", req.TemplateID), zap.Error(err))
		status := http.StatusBadRequest
		if errors.Is(err, ErrTemplateNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	h.logger().Debug("ring block resolved",
		zap.String("template", res.TemplateID),
		zap.Int("holes", len(res.Holes)),
		zap.Int("warnings", len(res.Warnings)),
		zap.Bool("compliant", res.Compliant))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Templates lists the built-in templates, optionally filtered by ?family=.
func (h *Handler) Templates(w http.ResponseWriter, r *http.Request) {
	var out []Template
	if f := r.URL.Query().Get("family"); f != "" {
		out = ListByFamily(Family(f))
	} else {
		for _, id := range ListIDs() {
			t, _ := GetTemplate(id)
			out = append(out, t)
		}
	}
	if out == nil {
		out = []Template{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}
