package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/internal/service/game"
)

type TokenIssuer interface {
	GenerateGameToken(gameID string) (string, error)
}

type GameHandler struct {
	SessionManager    *game.SessionManager
	Tokens            TokenIssuer
	DefaultDifficulty string
}

func NewGameHandler(sm *game.SessionManager, tokens TokenIssuer, defaultDifficulty string) *GameHandler {
	if defaultDifficulty == "" {
		defaultDifficulty = bot.DifficultyRandom
	}
	return &GameHandler{SessionManager: sm, Tokens: tokens, DefaultDifficulty: defaultDifficulty}
}

type botResponse struct {
	Difficulty string `json:"difficulty"`
	Name       string `json:"name"`
}

type createGameRequest struct {
	Difficulty string `json:"difficulty"`
	BotStarts  bool   `json:"botStarts"`
}

type createGameResponse struct {
	Token string           `json:"token"`
	Game  game.SessionView `json:"game"`
}

type moveRequest struct {
	Column *int `json:"column" binding:"required"`
}

type turnResponse struct {
	Human          *domain.Placement `json:"human,omitempty"`
	Opponent       *domain.Placement `json:"opponent,omitempty"`
	OpponentColumn *int              `json:"opponentColumn,omitempty"`
	OpponentError  string            `json:"opponentError,omitempty"`
	Game           game.SessionView  `json:"game"`
}

func (h *GameHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *GameHandler) ListBots(c *gin.Context) {
	bots := make([]botResponse, 0, len(bot.BotNames))
	for _, d := range bot.Difficulties() {
		bots = append(bots, botResponse{Difficulty: d, Name: bot.GetBotName(d)})
	}
	c.JSON(http.StatusOK, bots)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req createGameRequest
	// an empty body means defaults
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Difficulty == "" {
		req.Difficulty = h.DefaultDifficulty
	}

	session, err := h.SessionManager.Create(c.Request.Context(), req.Difficulty, req.BotStarts)
	if err != nil {
		respondError(c, err)
		return
	}

	token, err := h.Tokens.GenerateGameToken(session.GameID)
	if err != nil {
		_ = h.SessionManager.Remove(c.Request.Context(), session.GameID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, createGameResponse{Token: token, Game: session.View()})
}

func (h *GameHandler) GetGame(c *gin.Context) {
	view, err := h.SessionManager.View(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *GameHandler) MakeMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "column is required"})
		return
	}

	gameID := c.Param("id")
	result, err := h.SessionManager.Play(c.Request.Context(), gameID, *req.Column)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondTurn(c, gameID, result)
}

func (h *GameHandler) ResetGame(c *gin.Context) {
	gameID := c.Param("id")
	result, err := h.SessionManager.Reset(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}
	h.respondTurn(c, gameID, result)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	gameID := c.Param("id")
	if err := h.SessionManager.Remove(c.Request.Context(), gameID); err != nil {
		respondError(c, err)
		return
	}
	log.Info().Str("component", "http").Str("game_id", gameID).Msg("game deleted")
	c.Status(http.StatusNoContent)
}

func (h *GameHandler) respondTurn(c *gin.Context, gameID string, result game.TurnResult) {
	view, err := h.SessionManager.View(c.Request.Context(), gameID)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := turnResponse{Human: result.Human, Opponent: result.Opponent, Game: view}
	if result.Opponent != nil || result.OpponentErr != nil {
		col := result.OpponentColumn
		resp.OpponentColumn = &col
	}
	if result.OpponentErr != nil {
		resp.OpponentError = "opponent placed incorrectly: " + result.OpponentErr.Error()
	}
	c.JSON(http.StatusOK, resp)
}
