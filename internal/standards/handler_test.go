package standards

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlers(t *testing.T) {
	h := &Handler{}

	rec := httptest.NewRecorder()
	h.Standards(rec, httptest.NewRequest(http.MethodGet, "/standards", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var all []Table
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&all))
	assert.Len(t, all, len(List()))

	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/standards/a388", nil), map[string]string{"name": "a388"})
	rec = httptest.NewRecorder()
	h.Standard(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"standard":"ASTM-A388"`)

	req = mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/standards/x", nil), map[string]string{"name": "x"})
	rec = httptest.NewRecorder()
	h.Standard(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	h.Materials(rec, httptest.NewRequest(http.MethodGet, "/materials", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), DefaultMaterial)
}
