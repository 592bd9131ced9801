package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/usersvc/internal/common"
	"github.com/dmitrijs2005/usersvc/internal/logging"
	"github.com/dmitrijs2005/usersvc/internal/server/models"
	"github.com/gorilla/mux"
)

// Client-facing messages.
const (
	msgValidation    = "Name and email are required"
	msgEmailExists   = "Email already exists"
	msgNotFound      = "User not found"
	msgConnection    = "Database connection failed"
	msgInvalidBody   = "Invalid request body"
	msgInternal      = "Internal server error"
	msgDeleted       = "User deleted successfully"
	msgRouteNotFound = "Not found"
	msgBadMethod     = "Method not allowed"
)

type userSvc interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, in *models.UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in *models.UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) error
}

type healthSvc interface {
	Check(ctx context.Context) models.HealthStatus
}

type Handler struct {
	users  userSvc
	health healthSvc
	logger logging.Logger
}

func NewHandler(u userSvc, h healthSvc, l logging.Logger) *Handler {
	return &Handler{
		users:  u,
		health: h,
		logger: l.With("module", "http_handler"),
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := h.health.Check(r.Context())

	code := http.StatusOK
	if !status.Healthy() {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, status)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.users.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []models.User{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user created", "id", user.ID)
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	user, err := h.users.Update(r.Context(), id, in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info(r.Context(), "user deleted", "id", id)
	writeJSON(w, http.StatusOK, messageResponse{Message: msgDeleted})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: msgRouteNotFound})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: msgBadMethod})
}

// decodeInput reads a UserInput body. An empty body decodes to an empty
// input so that it fails validation like a body without fields.
func (h *Handler) decodeInput(w http.ResponseWriter, r *http.Request) (*models.UserInput, bool) {
	in := &models.UserInput{}
	if err := json.NewDecoder(r.Body).Decode(in); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Debug(r.Context(), "bad request body", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return nil, false
	}
	return in, true
}

// pathID parses {id}; anything that is not a positive integer within the
// range of a SERIAL column can never name a row.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgValidation})
	case errors.Is(err, common.ErrAlreadyExists):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgEmailExists})
	case errors.Is(err, common.ErrorNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNotFound})
	case errors.Is(err, common.ErrConnection):
		h.logger.Error(r.Context(), "database connection error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: msgConnection})
	default:
		h.logger.Error(r.Context(), "request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: common.PublicMessage(err, msgInternal)})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
