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

type TeamHandlers struct {
	teamService *service.TeamService
	logger      *logrus.Logger
}

func NewTeamHandlers(teamService *service.TeamService, logger *logrus.Logger) *TeamHandlers {
	return &TeamHandlers{
		teamService: teamService,
		logger:      logger,
	}
}

type CreateTeamRequest struct {
	TripID   string `json:"trip_id"`
	TripName string `json:"trip_name"`
}

func (h *TeamHandlers) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req CreateTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.TripName == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), service.CreateTeamInput{
		TripID:   req.TripID,
		TripName: req.TripName,
		LeaderID: claims.UserID,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to create team")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create team")
		return
	}

	respondWithJSON(w, http.StatusCreated, team)
}

type JoinTeamRequest struct {
	InviteCode string `json:"invite_code"`
}

func (h *TeamHandlers) Join(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req JoinTeamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.InviteCode == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	team, err := h.teamService.JoinByInviteCode(r.Context(), req.InviteCode, claims.UserID)
	if err != nil {
		if errors.Is(err, service.ErrTeamNotFound) {
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Invalid invite code")
			return
		}
		h.logger.WithError(err).Error("Failed to join team")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to join team")
		return
	}

	respondWithJSON(w, http.StatusOK, team)
}

func (h *TeamHandlers) Leave(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	teamID := mux.Vars(r)["id"]

	if err := h.teamService.LeaveTeam(r.Context(), teamID, claims.UserID); err != nil {
		switch {
		case errors.Is(err, service.ErrTeamNotFound):
			respondWithError(w, http.StatusNotFound, "NOT_FOUND", "Team not found")
		case errors.Is(err, service.ErrLeaderCannotLeave):
			respondWithError(w, http.StatusConflict, "LEADER_CANNOT_LEAVE", "팀 리더는 팀에서 탈퇴할 수 없습니다.")
		default:
			h.logger.WithError(err).Error("Failed to leave team")
			respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to leave team")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "left team"})
}

func (h *TeamHandlers) ListMine(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	teams, err := h.teamService.GetUserTeams(r.Context(), claims.UserID)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list teams")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list teams")
		return
	}

	respondWithJSON(w, http.StatusOK, teams)
}
