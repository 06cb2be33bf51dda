package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/event"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/pkg/uid"
)

const gameKeyPrefix = "game:"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrUnknownDifficulty = errors.New("unknown difficulty")
)

// CacheRepository stores live session snapshots. Get returns "" and a nil
// error when the key does not exist.
type CacheRepository interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type EventPublisher interface {
	PublishGameFinished(ctx context.Context, e event.GameFinished) error
}

type Options struct {
	SearchDepth int
	// SessionTTL is how long a cached snapshot outlives its last update
	SessionTTL time.Duration
}

// SessionManager manages active game sessions
type SessionManager struct {
	sessions  map[string]*Session // gameID → Session
	mu        sync.RWMutex
	publishes sync.WaitGroup // in-flight game-finished events
	cache     CacheRepository // optional
	publisher EventPublisher  // optional
	opts      Options
	now       func() time.Time
}

func NewSessionManager(cache CacheRepository, publisher EventPublisher, opts Options) *SessionManager {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = time.Hour
	}
	return &SessionManager{
		sessions:  make(map[string]*Session),
		cache:     cache,
		publisher: publisher,
		opts:      opts,
		now:       time.Now,
	}
}

// snapshot is what goes to the cache under game:<id>
type snapshot struct {
	GameID     string    `json:"gameId"`
	Difficulty string    `json:"difficulty"`
	BotStarts  bool      `json:"botStarts"`
	Board      [][]int   `json:"board"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (sm *SessionManager) Create(ctx context.Context, difficulty string, botStarts bool) (*Session, error) {
	if !bot.IsKnownDifficulty(difficulty) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	strategy, err := bot.New(difficulty, bot.Options{SearchDepth: sm.opts.SearchDepth})
	if err != nil {
		return nil, err
	}

	session := newSession(uid.GenerateGameID(), difficulty, botStarts, domain.NewEngine(), strategy, sm.now)

	if botStarts {
		session.Reset()
	}

	sm.mu.Lock()
	sm.sessions[session.GameID] = session
	sm.mu.Unlock()

	session.mu.Lock()
	sm.persistLocked(ctx, session)
	session.mu.Unlock()

	log.Info().
		Str("component", "session").
		Str("game_id", session.GameID).
		Str("difficulty", difficulty).
		Bool("bot_starts", botStarts).
		Msg("created session")
	return session, nil
}

// Get finds a live session, falling back to the cache after a restart.
func (sm *SessionManager) Get(ctx context.Context, gameID string) (*Session, error) {
	sm.mu.RLock()
	session, exists := sm.sessions[gameID]
	sm.mu.RUnlock()
	if exists {
		return session, nil
	}

	if sm.cache == nil || !uid.IsGameID(gameID) {
		return nil, ErrGameNotFound
	}

	raw, err := sm.cache.Get(ctx, gameKeyPrefix+gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to read session %s from cache: %w", gameID, err)
	}
	if raw == "" {
		return nil, ErrGameNotFound
	}

	restored, err := sm.restore(raw)
	if err != nil {
		log.Warn().Err(err).Str("component", "session").Str("game_id", gameID).Msg("dropping unreadable cached session")
		_ = sm.cache.Del(ctx, gameKeyPrefix+gameID)
		return nil, ErrGameNotFound
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()
	// someone else may have restored it meanwhile
	if existing, ok := sm.sessions[gameID]; ok {
		return existing, nil
	}
	sm.sessions[gameID] = restored

	log.Info().Str("component", "session").Str("game_id", gameID).Msg("restored session from cache")
	return restored, nil
}

func (sm *SessionManager) restore(raw string) (*Session, error) {
	var snap snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	board, err := domain.BoardFromCells(snap.Board)
	if err != nil {
		return nil, err
	}
	engine, err := domain.Restore(board)
	if err != nil {
		return nil, err
	}
	strategy, err := bot.New(snap.Difficulty, bot.Options{SearchDepth: sm.opts.SearchDepth})
	if err != nil {
		return nil, err
	}

	session := newSession(snap.GameID, snap.Difficulty, snap.BotStarts, engine, strategy, sm.now)
	session.CreatedAt = snap.CreatedAt
	session.UpdatedAt = snap.UpdatedAt
	if engine.CurrentState().IsTerminal() {
		session.FinishedAt = snap.UpdatedAt
	}
	return session, nil
}

func (sm *SessionManager) Play(ctx context.Context, gameID string, column int) (TurnResult, error) {
	session, err := sm.Get(ctx, gameID)
	if err != nil {
		return TurnResult{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	result, err := session.playLocked(column)
	if err != nil {
		return TurnResult{}, err
	}

	if result.OpponentErr != nil {
		log.Warn().
			Str("component", "session").
			Str("game_id", gameID).
			Int("column", result.OpponentColumn).
			Err(result.OpponentErr).
			Msg("opponent placed incorrectly")
	}

	sm.persistLocked(ctx, session)
	if result.State.IsTerminal() {
		sm.publishFinishedLocked(session, result)
	}
	return result, nil
}

func (sm *SessionManager) Reset(ctx context.Context, gameID string) (TurnResult, error) {
	session, err := sm.Get(ctx, gameID)
	if err != nil {
		return TurnResult{}, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	result := session.resetLocked()
	sm.persistLocked(ctx, session)

	log.Info().Str("component", "session").Str("game_id", gameID).Msg("session reset")
	return result, nil
}

func (sm *SessionManager) View(ctx context.Context, gameID string) (SessionView, error) {
	session, err := sm.Get(ctx, gameID)
	if err != nil {
		return SessionView{}, err
	}
	return session.View(), nil
}

func (sm *SessionManager) Remove(ctx context.Context, gameID string) error {
	sm.mu.Lock()
	_, exists := sm.sessions[gameID]
	delete(sm.sessions, gameID)
	sm.mu.Unlock()

	if sm.cache != nil {
		if err := sm.cache.Del(ctx, gameKeyPrefix+gameID); err != nil {
			return fmt.Errorf("failed to delete cached session %s: %w", gameID, err)
		}
		return nil
	}
	if !exists {
		return ErrGameNotFound
	}
	return nil
}

// CleanupIdle drops in-memory sessions untouched for longer than maxIdle
// and returns how many went away.
func (sm *SessionManager) CleanupIdle(maxIdle time.Duration) int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	count := 0
	now := sm.now()
	for gameID, session := range sm.sessions {
		if session.idleSince(now) > maxIdle {
			delete(sm.sessions, gameID)
			count++
		}
	}

	if count > 0 {
		log.Info().Str("component", "session").Int("removed", count).Msg("memory cleanup removed idle sessions")
	}
	return count
}

func (sm *SessionManager) ActiveCount() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// persistLocked writes the session snapshot to the cache. The caller holds session.mu.
func (sm *SessionManager) persistLocked(ctx context.Context, session *Session) {
	if sm.cache == nil {
		return
	}

	board := session.engine.Snapshot()
	data, err := json.Marshal(snapshot{
		GameID:     session.GameID,
		Difficulty: session.Difficulty,
		BotStarts:  session.BotStarts,
		Board:      board.Cells(),
		CreatedAt:  session.CreatedAt,
		UpdatedAt:  session.UpdatedAt,
	})
	if err != nil {
		log.Error().Err(err).Str("component", "session").Str("game_id", session.GameID).Msg("failed to marshal snapshot")
		return
	}

	if err := sm.cache.Set(ctx, gameKeyPrefix+session.GameID, string(data), sm.opts.SessionTTL); err != nil {
		log.Warn().Err(err).Str("component", "session").Str("game_id", session.GameID).Msg("failed to cache session")
	}
}

// publishFinishedLocked sends the game-finished event in the background so
// the caller is not held up by the broker.
func (sm *SessionManager) publishFinishedLocked(session *Session, result TurnResult) {
	if sm.publisher == nil {
		return
	}

	e := event.GameFinished{
		Event:           event.EventGameFinished,
		GameID:          session.GameID,
		Difficulty:      session.Difficulty,
		Winner:          session.outcome(result.State),
		Moves:           result.MoveCount,
		DurationSeconds: session.FinishedAt.Sub(session.CreatedAt).Seconds(),
	}

	sm.publishes.Add(1)
	go func() {
		defer sm.publishes.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := sm.publisher.PublishGameFinished(ctx, e); err != nil {
			log.Error().Err(err).Str("component", "session").Str("game_id", e.GameID).Msg("failed to publish game finished event")
		}
	}()
}

// Drain waits for in-flight game-finished events, or for ctx to end.
// Call it before closing the publisher.
func (sm *SessionManager) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		sm.publishes.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
