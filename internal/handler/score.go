package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nanafes/reservation-api/internal/model"
	"github.com/nanafes/reservation-api/internal/repository"
)

const (
	rankingCacheKey = "cache:ranking"
	rankingCacheTTL = 30 * time.Second
	rankingLimit    = 20
	recentLimit     = 100
)

// ScoreHandler records game results and serves the ranking board. The
// ranking is the one read-heavy endpoint of the service (it runs on a
// screen at the venue), so it goes through a short redis cache.
type ScoreHandler struct {
	scores *repository.ScoreRepo
	rdb    *redis.Client // may be nil; caching is then skipped
}

// NewScoreHandler constructs a ScoreHandler.
func NewScoreHandler(scores *repository.ScoreRepo, rdb *redis.Client) *ScoreHandler {
	if scores == nil {
		panic("nil score repo passed to NewScoreHandler")
	}
	return &ScoreHandler{scores: scores, rdb: rdb}
}

// Create handles POST /v1/scores (machine only).
func (h *ScoreHandler) Create(c echo.Context) error {
	var body struct {
		TeamName    string  `json:"team_name"`
		Headcount   int     `json:"headcount"`
		GameSession string  `json:"game_session"`
		Description *string `json:"description"`
		Score       int64   `json:"score"`
		Players     []struct {
			PlayerName string `json:"player_name"`
			Score      int64  `json:"score"`
		} `json:"players"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.TeamName == "" || body.GameSession == "" || body.Headcount < 1 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "team_name, game_session and headcount are required"})
	}
	score := &model.TeamScore{
		TeamName:    body.TeamName,
		Headcount:   body.Headcount,
		GameSession: body.GameSession,
		Description: body.Description,
		Score:       body.Score,
	}
	for _, p := range body.Players {
		if p.PlayerName == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "player_name is required"})
		}
		score.PlayerScores = append(score.PlayerScores, model.PlayerScore{
			PlayerName: p.PlayerName,
			Score:      p.Score,
		})
	}
	if err := h.scores.Create(c.Request().Context(), score); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	h.invalidateRanking(c.Request().Context())
	return c.JSON(http.StatusCreated, score)
}

// Ranking handles GET /v1/scores/ranking.
func (h *ScoreHandler) Ranking(c echo.Context) error {
	ctx := c.Request().Context()
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, rankingCacheKey).Bytes(); err == nil {
			return c.JSONBlob(http.StatusOK, cached)
		}
	}
	scores, err := h.scores.ListRanking(ctx, rankingLimit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	payload := echo.Map{"ranking": scores}
	if h.rdb != nil {
		if raw, err := json.Marshal(payload); err == nil {
			_ = h.rdb.Set(ctx, rankingCacheKey, raw, rankingCacheTTL).Err()
		}
	}
	return c.JSON(http.StatusOK, payload)
}

// List handles GET /v1/scores. Newest submissions first.
func (h *ScoreHandler) List(c echo.Context) error {
	limit := recentLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > recentLimit {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	scores, err := h.scores.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"scores": scores})
}

func (h *ScoreHandler) invalidateRanking(ctx context.Context) {
	if h.rdb != nil {
		_ = h.rdb.Del(ctx, rankingCacheKey).Err()
	}
}
