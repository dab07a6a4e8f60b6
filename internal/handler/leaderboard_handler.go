package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/step-challenge-api/internal/middleware"
	"github.com/noah-isme/step-challenge-api/internal/models"
	appErrors "github.com/noah-isme/step-challenge-api/pkg/errors"
	"github.com/noah-isme/step-challenge-api/pkg/response"
)

type leaderboardService interface {
	Overall(ctx context.Context) (models.StudentLeaderboard, bool)
	BySession(ctx context.Context, session models.Session) (models.StudentLeaderboard, bool)
	Campuses(ctx context.Context) (models.CampusLeaderboard, bool)
	Stats(ctx context.Context) (models.ChallengeStats, bool)
}

// LeaderboardHandler exposes the public rankings.
type LeaderboardHandler struct {
	service leaderboardService
}

// NewLeaderboardHandler constructs the handler.
func NewLeaderboardHandler(service leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// Overall godoc
// @Summary Top students overall
// @Tags Leaderboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboards/overall [get]
func (h *LeaderboardHandler) Overall(c *gin.Context) {
	board, hit := h.service.Overall(c.Request.Context())
	respondCached(c, board, hit)
}

// BySession godoc
// @Summary Top students in one session
// @Tags Leaderboards
// @Produce json
// @Param session path string true "AM, PM or all-day"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /leaderboards/sessions/{session} [get]
func (h *LeaderboardHandler) BySession(c *gin.Context) {
	session, ok := models.ParseSession(c.Param("session"))
	if !ok {
		response.Error(c, appErrors.WithDetails(appErrors.ErrValidation, "unknown session",
			map[string]string{"session": "session must be AM, PM or All Day"}))
		return
	}
	board, hit := h.service.BySession(c.Request.Context(), session)
	respondCached(c, board, hit)
}

// Campuses godoc
// @Summary Campus ranking by Bayesian average
// @Tags Leaderboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboards/campuses [get]
func (h *LeaderboardHandler) Campuses(c *gin.Context) {
	board, hit := h.service.Campuses(c.Request.Context())
	respondCached(c, board, hit)
}

// Stats godoc
// @Summary Challenge summary numbers
// @Tags Leaderboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *LeaderboardHandler) Stats(c *gin.Context) {
	stats, hit := h.service.Stats(c.Request.Context())
	respondCached(c, stats, hit)
}

func respondCached(c *gin.Context, data interface{}, hit bool) {
	middleware.SetCacheHit(c, hit)
	response.JSON(c, http.StatusOK, data, nil, middleware.ExtractMeta(c))
}
