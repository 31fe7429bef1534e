package students

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	handler := NewHandler(nil)
	r := chi.NewRouter()
	r.Route("/api/v1/students", handler.MountAPIRoutes)
	r.Route("/management/api/v1/students", handler.MountManagementRoutes)
	return r
}

func doJSON(t *testing.T, srv http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	srv.ServeHTTP(res, r)
	return res
}

func TestGetStudent(t *testing.T) {
	srv := newTestRouter(t)

	res := doJSON(t, srv, http.MethodGet, "/api/v1/students/1", "")
	require.Equal(t, http.StatusOK, res.Code)

	var student Student
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &student))
	assert.Equal(t, Student{ID: 1, Name: "james"}, student)
}

func TestGetStudentNotFound(t *testing.T) {
	srv := newTestRouter(t)
	res := doJSON(t, srv, http.MethodGet, "/api/v1/students/99", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestGetStudentBadID(t *testing.T) {
	srv := newTestRouter(t)
	res := doJSON(t, srv, http.MethodGet, "/api/v1/students/abc", "")
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestListStudents(t *testing.T) {
	srv := newTestRouter(t)

	res := doJSON(t, srv, http.MethodGet, "/management/api/v1/students/", "")
	require.Equal(t, http.StatusOK, res.Code)

	var list []Student
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	require.Len(t, list, 3)
	// Deterministic ID order.
	assert.Equal(t, []Student{
		{ID: 1, Name: "james"},
		{ID: 2, Name: "maria"},
		{ID: 3, Name: "anna"},
	}, list)
}

func TestCreateStudent(t *testing.T) {
	srv := newTestRouter(t)

	res := doJSON(t, srv, http.MethodPost, "/management/api/v1/students/", `{"name":"sofia"}`)
	require.Equal(t, http.StatusCreated, res.Code)

	var created Student
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.Equal(t, Student{ID: 4, Name: "sofia"}, created)

	res = doJSON(t, srv, http.MethodGet, "/api/v1/students/4", "")
	assert.Equal(t, http.StatusOK, res.Code)
}

func TestCreateStudentRequiresName(t *testing.T) {
	srv := newTestRouter(t)
	res := doJSON(t, srv, http.MethodPost, "/management/api/v1/students/", `{}`)
	assert.Equal(t, http.StatusBadRequest, res.Code)
}

func TestUpdateStudent(t *testing.T) {
	srv := newTestRouter(t)

	res := doJSON(t, srv, http.MethodPut, "/management/api/v1/students/2", `{"name":"maria lopez"}`)
	require.Equal(t, http.StatusOK, res.Code)

	var updated Student
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, Student{ID: 2, Name: "maria lopez"}, updated)
}

func TestUpdateStudentNotFound(t *testing.T) {
	srv := newTestRouter(t)
	res := doJSON(t, srv, http.MethodPut, "/management/api/v1/students/99", `{"name":"nobody"}`)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestDeleteStudent(t *testing.T) {
	srv := newTestRouter(t)

	res := doJSON(t, srv, http.MethodDelete, "/management/api/v1/students/3", "")
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doJSON(t, srv, http.MethodGet, "/api/v1/students/3", "")
	assert.Equal(t, http.StatusNotFound, res.Code)

	res = doJSON(t, srv, http.MethodDelete, "/management/api/v1/students/3", "")
	assert.Equal(t, http.StatusNotFound, res.Code)
}
