package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/service/game"
	"github.com/iamasit07/connect4-engine/pkg/auth"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

type TokenService interface {
	GenerateGameToken(gameID string) (string, error)
	ValidateGameToken(token string) (*auth.GameClaims, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager       *ConnectionManager
	SessionManager    *game.SessionManager
	Tokens            TokenService
	DefaultDifficulty string
	Upgrader          websocket.Upgrader
}

func NewHandler(cm *ConnectionManager, sm *game.SessionManager, tokens TokenService, defaultDifficulty string, allowedOrigins []string) *Handler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = struct{}{}
	}

	return &Handler{
		ConnManager:       cm,
		SessionManager:    sm,
		Tokens:            tokens,
		DefaultDifficulty: defaultDifficulty,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				_, ok := allowed[origin]
				return ok
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Str("component", "ws").Msg("upgrade failed")
		return
	}

	h.handleConnection(conn)
}

func (h *Handler) handleConnection(conn *websocket.Conn) {
	client := newClient(conn)
	done := make(chan struct{})

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// keep-alive pinger; WriteControl may run alongside Send
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	defer func() {
		close(done)
		if client.gameID != "" {
			h.ConnManager.RemoveIfMatching(client.gameID, client)
		}
		conn.Close()
		log.Debug().Str("component", "ws").Str("game_id", client.gameID).Msg("connection closed")
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("component", "ws").Msg("client disconnected unexpectedly")
			}
			return
		}

		var msg domain.ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			client.SendError("invalid message format")
			continue
		}

		// a replaced connection stops taking orders for its game
		if client.gameID != "" && !h.ConnManager.IsCurrent(client.gameID, client) {
			return
		}

		h.processMessage(context.Background(), client, msg)
	}
}

// processMessage routes specific actions
func (h *Handler) processMessage(ctx context.Context, client *Client, msg domain.ClientMessage) {
	switch msg.Type {
	case "new_game":
		h.handleNewGame(ctx, client, msg)
	case "resume":
		h.handleResume(ctx, client, msg)
	case "make_move":
		if client.gameID == "" {
			client.SendError("no active game")
			return
		}
		if msg.Column == nil {
			client.SendError("column is required")
			return
		}
		result, err := h.SessionManager.Play(ctx, client.gameID, *msg.Column)
		if err != nil {
			client.SendError(err.Error())
			return
		}
		h.sendTurn(ctx, client, result)
	case "reset":
		if client.gameID == "" {
			client.SendError("no active game")
			return
		}
		if _, err := h.SessionManager.Reset(ctx, client.gameID); err != nil {
			client.SendError(err.Error())
			return
		}
		h.sendGameStart(ctx, client, "")
	default:
		client.SendError("unknown message type")
	}
}

func (h *Handler) handleNewGame(ctx context.Context, client *Client, msg domain.ClientMessage) {
	difficulty := msg.Difficulty
	if difficulty == "" {
		difficulty = h.DefaultDifficulty
	}

	session, err := h.SessionManager.Create(ctx, difficulty, msg.BotStarts)
	if err != nil {
		client.SendError(err.Error())
		return
	}
	token, err := h.Tokens.GenerateGameToken(session.GameID)
	if err != nil {
		log.Error().Err(err).Str("component", "ws").Msg("failed to sign game token")
		_ = h.SessionManager.Remove(ctx, session.GameID)
		client.SendError("failed to start game")
		return
	}

	h.attach(client, session.GameID)
	h.sendGameStart(ctx, client, token)
}

func (h *Handler) handleResume(ctx context.Context, client *Client, msg domain.ClientMessage) {
	claims, err := h.Tokens.ValidateGameToken(msg.Token)
	if err != nil {
		client.SendError("invalid game token")
		return
	}
	if _, err := h.SessionManager.Get(ctx, claims.GameID); err != nil {
		client.SendError(err.Error())
		return
	}

	h.attach(client, claims.GameID)
	h.sendGameStart(ctx, client, msg.Token)
}

func (h *Handler) attach(client *Client, gameID string) {
	if client.gameID != "" && client.gameID != gameID {
		h.ConnManager.RemoveIfMatching(client.gameID, client)
	}
	client.gameID = gameID
	h.ConnManager.Attach(gameID, client)
}

// sendGameStart sends the full session. A bot opening, if any, is
// already on the board it carries.
func (h *Handler) sendGameStart(ctx context.Context, client *Client, token string) {
	view, err := h.SessionManager.View(ctx, client.gameID)
	if err != nil {
		client.SendError(err.Error())
		return
	}

	state := view.State
	client.Send(domain.ServerMessage{
		Type:       "game_start",
		GameID:     view.GameID,
		Token:      token,
		Opponent:   view.BotName,
		Difficulty: view.Difficulty,
		YourPiece:  view.HumanPiece,
		NextTurn:   view.NextTurn,
		Board:      view.Board.Cells(),
		State:      &state,
	})
}

func (h *Handler) sendTurn(ctx context.Context, client *Client, result game.TurnResult) {
	var winning *domain.Placement
	for _, p := range []*domain.Placement{result.Human, result.Opponent} {
		if p == nil {
			continue
		}
		client.Send(moveMessage(*p))
		if p.Result == domain.ResultWin {
			winning = p
		}
	}

	if result.OpponentErr != nil {
		col := result.OpponentColumn
		client.Send(domain.ServerMessage{
			Type:    "opponent_error",
			Message: "opponent placed incorrectly: " + result.OpponentErr.Error(),
			Column:  &col,
		})
	}

	if !result.State.IsTerminal() {
		return
	}

	view, err := h.SessionManager.View(ctx, client.gameID)
	if err != nil {
		client.SendError(err.Error())
		return
	}
	state := view.State
	over := domain.ServerMessage{
		Type:   "game_over",
		GameID: view.GameID,
		Winner: view.Outcome,
		Board:  view.Board.Cells(),
		State:  &state,
	}
	if winning != nil {
		over.WinningLine = winning.WinningLine
	}
	client.Send(over)
}

func moveMessage(p domain.Placement) domain.ServerMessage {
	col, row := p.Column, p.Row
	return domain.ServerMessage{
		Type:   "move_made",
		Column: &col,
		Row:    &row,
		Piece:  p.Piece,
	}
}
