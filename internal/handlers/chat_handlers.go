package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

// ChatStore is the persistence side of the chat; realtime delivery belongs
// to a separate layer.
type ChatStore interface {
	Save(ctx context.Context, message *models.ChatMessage) error
	ListByRoom(ctx context.Context, roomID string) ([]models.ChatMessage, error)
}

type ChatHandlers struct {
	store  ChatStore
	logger *logrus.Logger
}

func NewChatHandlers(store ChatStore, logger *logrus.Logger) *ChatHandlers {
	return &ChatHandlers{
		store:  store,
		logger: logger,
	}
}

// History returns the messages of one chat room in order.
func (h *ChatHandlers) History(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]

	messages, err := h.store.ListByRoom(r.Context(), roomID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to load chat history")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load chat history")
		return
	}

	respondWithJSON(w, http.StatusOK, messages)
}

type PostMessageRequest struct {
	Message string `json:"message"`
}

// Post appends a message to the room's history.
func (h *ChatHandlers) Post(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	message := &models.ChatMessage{
		ID:           uuid.New().String(),
		UserID:       claims.UserID,
		UserNickname: claims.Name,
		ChatRoomID:   mux.Vars(r)["roomId"],
		Message:      req.Message,
		CreatedAt:    time.Now(),
	}

	if err := h.store.Save(r.Context(), message); err != nil {
		h.logger.WithError(err).Error("Failed to save chat message")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save chat message")
		return
	}

	respondWithJSON(w, http.StatusCreated, message)
}
