package students

import (
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/campusgate/campusgate/internal/auth"
	"github.com/campusgate/campusgate/internal/platform/httpx"
)

// Handler exposes student records over HTTP backed by an in-memory
// list, which is all the demonstration deployment needs.
type Handler struct {
	logger *slog.Logger

	mu       sync.RWMutex
	students map[int64]Student
	nextID   int64
}

// NewHandler constructs a Handler seeded with the demo records.
func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
		students: map[int64]Student{
			1: {ID: 1, Name: "james"},
			2: {ID: 2, Name: "maria"},
			3: {ID: 3, Name: "anna"},
		},
		nextID: 4,
	}
}

// MountAPIRoutes registers the student-facing read endpoint.
func (h *Handler) MountAPIRoutes(r chi.Router) {
	r.Get("/{studentID}", h.getStudent)
}

// MountManagementRoutes registers the management CRUD endpoints.
func (h *Handler) MountManagementRoutes(r chi.Router) {
	r.Get("/", h.listStudents)
	r.Post("/", h.createStudent)
	r.Put("/{studentID}", h.updateStudent)
	r.Delete("/{studentID}", h.deleteStudent)
}

func (h *Handler) getStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	h.mu.RLock()
	student, ok := h.students[id]
	h.mu.RUnlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) listStudents(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	list := make([]Student, 0, len(h.students))
	for _, s := range h.students {
		list = append(list, s)
	}
	h.mu.RUnlock()
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	httpx.JSON(w, http.StatusOK, list)
}

type studentInput struct {
	Name string `json:"name"`
}

func (h *Handler) createStudent(w http.ResponseWriter, r *http.Request) {
	var input studentInput
	if err := httpx.DecodeJSON(r, &input); err != nil || input.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	h.mu.Lock()
	student := Student{ID: h.nextID, Name: input.Name}
	h.students[student.ID] = student
	h.nextID++
	h.mu.Unlock()
	h.logAction(r, "student created", student.ID)
	httpx.JSON(w, http.StatusCreated, student)
}

func (h *Handler) updateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	var input studentInput
	if err := httpx.DecodeJSON(r, &input); err != nil || input.Name == "" {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	h.mu.Lock()
	student, ok := h.students[id]
	if ok {
		student.Name = input.Name
		h.students[id] = student
	}
	h.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logAction(r, "student updated", id)
	httpx.JSON(w, http.StatusOK, student)
}

func (h *Handler) deleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "studentID"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrValidation)
		return
	}
	h.mu.Lock()
	_, ok := h.students[id]
	delete(h.students, id)
	h.mu.Unlock()
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logAction(r, "student deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logAction(r *http.Request, msg string, id int64) {
	if h.logger == nil {
		return
	}
	actor := ""
	if p := auth.PrincipalFromContext(r.Context()); p != nil {
		actor = p.Username()
	}
	h.logger.Info(msg, slog.Int64("student_id", id), slog.String("actor", actor))
}
