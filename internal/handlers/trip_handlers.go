package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

type TripStore interface {
	Create(ctx context.Context, trip *models.Trip) error
	GetByID(ctx context.Context, tripID string) (*models.Trip, error)
}

type TripHandlers struct {
	store  TripStore
	logger *logrus.Logger
}

func NewTripHandlers(store TripStore, logger *logrus.Logger) *TripHandlers {
	return &TripHandlers{
		store:  store,
		logger: logger,
	}
}

type CreateTripRequest struct {
	TripName  string `json:"trip_name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (h *TripHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TripName == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	trip := &models.Trip{
		ID:        uuid.New().String(),
		TripName:  req.TripName,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	}

	if err := h.store.Create(r.Context(), trip); err != nil {
		h.logger.WithError(err).Error("Failed to create trip")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create trip")
		return
	}

	respondWithJSON(w, http.StatusCreated, trip)
}

func (h *TripHandlers) Get(w http.ResponseWriter, r *http.Request) {
	trip, err := h.store.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.logger.WithError(err).Error("Failed to get trip")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get trip")
		return
	}
	if trip == nil {
		respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Trip not found")
		return
	}

	respondWithJSON(w, http.StatusOK, trip)
}
