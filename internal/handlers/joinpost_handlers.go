package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/sirupsen/logrus"
)

type JoinPostHandlers struct {
	joinPostService *service.JoinPostService
	logger          *logrus.Logger
}

func NewJoinPostHandlers(joinPostService *service.JoinPostService, logger *logrus.Logger) *JoinPostHandlers {
	return &JoinPostHandlers{
		joinPostService: joinPostService,
		logger:          logger,
	}
}

type JoinPostRequest struct {
	TripID  string `json:"trip_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *JoinPostHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req JoinPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Title == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	// One recruiting post per trip.
	if req.TripID != "" {
		exists, err := h.joinPostService.ExistsByTripID(r.Context(), req.TripID)
		if err != nil {
			h.logger.WithError(err).Error("Failed to check existing join post")
			respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create post")
			return
		}
		if exists {
			respondWithError(w, http.StatusConflict, "POST_EXISTS", "이미 해당 여행의 모집글이 존재합니다.")
			return
		}
	}

	post, err := h.joinPostService.Create(r.Context(), service.JoinPostInput{
		UserID:       claims.UserID,
		UserNickname: claims.Name,
		TripID:       req.TripID,
		Title:        req.Title,
		Content:      req.Content,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create post")
		return
	}

	respondWithJSON(w, http.StatusCreated, post)
}

func (h *JoinPostHandlers) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.joinPostService.FindAll(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to list join posts")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list posts")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *JoinPostHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	posts, err := h.joinPostService.FindByUserID(r.Context(), claims.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list user's join posts")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list posts")
		return
	}

	respondWithJSON(w, http.StatusOK, posts)
}

func (h *JoinPostHandlers) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.joinPostService.FindByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, service.ErrJoinPostNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to get post")
		return
	}

	respondWithJSON(w, http.StatusOK, post)
}

func (h *JoinPostHandlers) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	postID := mux.Vars(r)["id"]

	var req JoinPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	existing, err := h.joinPostService.FindByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrJoinPostNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update post")
		return
	}

	if existing.UserID != claims.UserID {
		respondWithError(w, http.StatusForbidden, "FORBIDDEN", "Not the author of this post")
		return
	}

	post, err := h.joinPostService.UpdateContent(r.Context(), postID, req.Title, req.Content)
	if err != nil {
		h.logger.WithError(err).Error("Failed to update join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to update post")
		return
	}

	respondWithJSON(w, http.StatusOK, post)
}

func (h *JoinPostHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	postID := mux.Vars(r)["id"]

	existing, err := h.joinPostService.FindByID(r.Context(), postID)
	if err != nil {
		if errors.Is(err, service.ErrJoinPostNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Post not found")
			return
		}
		h.logger.WithError(err).Error("Failed to get join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete post")
		return
	}

	if existing.UserID != claims.UserID {
		respondWithError(w, http.StatusForbidden, "FORBIDDEN", "Not the author of this post")
		return
	}

	if err := h.joinPostService.Delete(r.Context(), postID); err != nil {
		h.logger.WithError(err).Error("Failed to delete join post")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to delete post")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
