package standards

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
)

type Handler struct{}

// Standards lists every table.
func (h *Handler) Standards(w http.ResponseWriter, r *http.Request) {
	out := make([]Table, 0, len(tables))
	for _, std := range List() {
		t, _ := Lookup(std)
		out = append(out, t)
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

// Standard serves /standards/{name}; name may be any accepted spelling.
func (h *Handler) Standard(w http.ResponseWriter, r *http.Request) {
	std, err := Parse(mux.Vars(r)["name"])
	if err == nil {
		var t Table
		if t, err = Lookup(std); err == nil {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(t)
			return
		}
	}
	status := http.StatusBadRequest
	if errors.Is(err, ErrUnknownStandard) {
		status = http.StatusNotFound
	}
	http.Error(w, err.Error(), status)
}

func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Materials())
}
