package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/listhub/listhub/internal/model"
)

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	// ListUsers returns users newest first. A nil page returns every user.
	ListUsers(ctx context.Context, page *model.Page) ([]model.User, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)
}

// UserHandler serves the user service's /users routes.
type UserHandler struct {
	store  UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(store UserStore, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		store:  store,
		logger: logger.With("component", "handler.user"),
		now:    time.Now,
	}
}

type usersResponse struct {
	Result bool         `json:"result"`
	Users  []model.User `json:"users"`
}

type userResponse struct {
	Result bool        `json:"result"`
	User   *model.User `json:"user"`
}

// List handles GET /users.
// Without page_num and page_size the full set is returned.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, present, errs := parsePage(r.URL.Query())
	if len(errs) > 0 {
		writeFailure(w, http.StatusBadRequest, errs...)
		return
	}

	var pagePtr *model.Page
	if present {
		pagePtr = &page
	}

	users, err := h.store.ListUsers(r.Context(), pagePtr)
	if err != nil {
		h.logger.Error("list_users_failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch users")
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, usersResponse{Result: true, Users: users})
}

// Create handles POST /users with a form-encoded name.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}

	name := strings.TrimSpace(r.PostForm.Get("name"))
	if name == "" {
		writeFailure(w, http.StatusBadRequest, "name is required")
		return
	}

	user := model.NewUser(name, h.now())
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		h.logger.Error("create_user_failed", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)
	writeJSON(w, http.StatusOK, userResponse{Result: true, User: user})
}

// Get handles GET /users/{id}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeFailure(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	user, err := h.store.GetUser(r.Context(), id)
	if errors.Is(err, model.ErrNotFound) {
		writeFailure(w, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		h.logger.Error("get_user_failed", "user_id", id, "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Result: true, User: user})
}

// parseForm parses a form body and writes the error response itself when
// that fails.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	err := r.ParseForm()
	if err == nil {
		return true
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeFailure(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}
	writeFailure(w, http.StatusBadRequest, "invalid form body")
	return false
}
