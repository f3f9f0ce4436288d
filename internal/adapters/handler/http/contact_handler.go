package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/contacts/api/internal/core/domain"
	"github.com/contacts/api/internal/core/ports"
)

type ContactHandler struct {
	service ports.ContactService
}

func NewContactHandler(service ports.ContactService) *ContactHandler {
	return &ContactHandler{
		service: service,
	}
}

type contactRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	BornDate    string `json:"born_date"`
	Description string `json:"description"`
}

type statusRequest struct {
	Done bool `json:"done"`
}

// List godoc
// @Summary      Lists the current user's contacts
// @Description  No more than 10 requests per minute. Supports skip/limit pagination.
// @Tags         contacts
// @Produce      json
// @Param        skip   query  int  false  "Rows to skip"
// @Param        limit  query  int  false  "Maximum rows to return"
// @Success      200
// @Failure      401
// @Router       /contacts [get]
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	input := ports.ListContactsInput{}
	if v := r.URL.Query().Get("skip"); v != "" {
		input.Skip, _ = strconv.Atoi(v)
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		input.Limit, _ = strconv.Atoi(v)
	}

	contacts, err := h.service.List(r.Context(), userID, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	contact, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// Create godoc
// @Summary      Creates a contact
// @Description  No more than 10 requests per minute.
// @Tags         contacts
// @Accept       json
// @Produce      json
// @Success      201
// @Failure      422
// @Router       /contacts [post]
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	contact, err := h.service.Create(r.Context(), userID, contactInput(req))
	if err != nil {
		writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	contact, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), contactInput(req))
	if err != nil {
		writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	contact, err := h.service.UpdateStatus(r.Context(), userID, chi.URLParam(r, "id"), req.Done)
	if err != nil {
		writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	contact, err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeContactError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// Search godoc
// @Summary      Searches contacts by name or email
// @Description  Case-insensitive substring match over first name, last name and email. An empty query returns an empty list.
// @Tags         contacts
// @Produce      json
// @Param        q  query  string  false  "Search query"
// @Success      200
// @Router       /contacts/search [get]
func (h *ContactHandler) Search(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	contacts, err := h.service.Search(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// Birthdays godoc
// @Summary      Lists contacts with a birthday in the next 7 days
// @Tags         contacts
// @Produce      json
// @Success      200
// @Router       /contacts/birthdays [get]
func (h *ContactHandler) Birthdays(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(UserIDKey).(uuid.UUID)
	if !ok {
		http.Error(w, "Unauthorized: missing user context", http.StatusUnauthorized)
		return
	}

	contacts, err := h.service.UpcomingBirthdays(r.Context(), userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

func contactInput(req contactRequest) ports.ContactInput {
	return ports.ContactInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		BornDate:    req.BornDate,
		Description: req.Description,
	}
}

func writeContactError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, domain.ErrInvalidContactID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrContactNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
	}
}
