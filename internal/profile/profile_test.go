package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ScanMaster/internal/auth"
	"ScanMaster/internal/repo"
)

func setup(t *testing.T) (*ProfileHandler, int) {
	t.Helper()
	r := repo.NewMemory()
	id, err := r.CreateUser(context.Background(), "sidorov", "sidorov@lab.example", "hash")
	require.NoError(t, err)
	return &ProfileHandler{Repo: r, UploadDir: t.TempDir()}, id
}

func asUser(req *http.Request, id int) *http.Request {
	return req.WithContext(auth.WithUser(req.Context(), id, "sidorov"))
}

func TestUpdateProfile(t *testing.T) {
	h, id := setup(t)

	rec := httptest.NewRecorder()
	h.UpdateProfile(rec, asUser(httptest.NewRequest(http.MethodPut, "/profile",
		strings.NewReader(`{"login":"sidorov","certification_level":"ut2","default_standard":"en 10228-3"}`)), id))
	require.Equal(t, http.StatusOK, rec.Code)

	var p repo.Profile
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&p))
	assert.Equal(t, "UT2", p.CertificationLevel)
	assert.Equal(t, "BS-EN-10228-3", p.DefaultStandard)

	for _, body := range []string{
		`{"login":""}`,
		`{"login":"sidorov","certification_level":"UT9"}`,
		`{"login":"sidorov","default_standard":"ISO-0000"}`,
	} {
		rec := httptest.NewRecorder()
		h.UpdateProfile(rec, asUser(httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(body)), id))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}

	rec = httptest.NewRecorder()
	h.UpdateProfile(rec, httptest.NewRequest(http.MethodPut, "/profile", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGetProfile(t *testing.T) {
	h, id := setup(t)

	rec := httptest.NewRecorder()
	h.GetProfile(rec, asUser(httptest.NewRequest(http.MethodGet, "/profile", nil), id))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"login":"sidorov"`)

	req := mux.SetURLVars(asUser(httptest.NewRequest(http.MethodGet, "/profile/99", nil), id), map[string]string{"id": "99"})
	rec = httptest.NewRecorder()
	h.GetProfile(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = mux.SetURLVars(asUser(httptest.NewRequest(http.MethodGet, "/profile/x", nil), id), map[string]string{"id": "x"})
	rec = httptest.NewRecorder()
	h.GetProfile(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadAvatar(t *testing.T) {
	h, id := setup(t)

	upload := func(name string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("photo", name)
		require.NoError(t, err)
		fw.Write([]byte("\x89PNG fake"))
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/profile/avatar", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		rec := httptest.NewRecorder()
		h.UploadAvatar(rec, asUser(req, id))
		return rec
	}

	rec := upload("me.png")
	require.Equal(t, http.StatusCreated, rec.Code)
	var out map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.True(t, strings.HasPrefix(out["avatar_url"], "/uploads/"))

	_, err := os.Stat(filepath.Join(h.UploadDir, strings.TrimPrefix(out["avatar_url"], "/uploads/")))
	assert.NoError(t, err)

	p, err := h.Repo.GetProfileByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, out["avatar_url"], p.AvatarURL)

	assert.Equal(t, http.StatusBadRequest, upload("me.exe").Code)
}
