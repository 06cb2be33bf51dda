package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
	"github.com/iamasit07/connect4-engine/internal/event"
	"github.com/iamasit07/connect4-engine/internal/service/bot"
	"github.com/iamasit07/connect4-engine/pkg/uid"
)

// scriptedStrategy replays a fixed list of columns, looping at the end.
type scriptedStrategy struct {
	cols []int
	i    int
}

func (s *scriptedStrategy) ChooseColumn(board domain.Board, piece domain.Cell) int {
	col := s.cols[s.i%len(s.cols)]
	s.i++
	return col
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (c *fakeCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value.(string)
	c.ttl[key] = expiration
	return nil
}

func (c *fakeCache) Get(ctx context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *fakeCache) Del(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

type fakePublisher struct {
	events chan event.GameFinished
}

func (p *fakePublisher) PublishGameFinished(ctx context.Context, e event.GameFinished) error {
	p.events <- e
	return nil
}

func testSession(botStarts bool, cols ...int) *Session {
	return newSession("g1", bot.DifficultyRandom, botStarts, domain.NewEngine(), &scriptedStrategy{cols: cols}, time.Now)
}

func TestPlayAlternatesHumanAndBot(t *testing.T) {
	s := testSession(false, 1)

	res, err := s.Play(0)
	if err != nil {
		t.Fatal(err)
	}
	if res.Human == nil || res.Human.Column != 0 || res.Human.Piece != domain.PlayerA {
		t.Fatalf("unexpected human placement %+v", res.Human)
	}
	if res.Opponent == nil || res.Opponent.Column != 1 || res.Opponent.Piece != domain.PlayerB {
		t.Fatalf("unexpected opponent placement %+v", res.Opponent)
	}
	if res.Board[0][0] != domain.PlayerA || res.Board[0][1] != domain.PlayerB {
		t.Fatalf("board does not match placements:\n%s", res.Board)
	}
	if res.MoveCount != 2 || res.State != domain.InProgress() {
		t.Fatalf("unexpected state %+v after %d moves", res.State, res.MoveCount)
	}
}

func TestPlayReportsInvalidOpponentColumn(t *testing.T) {
	s := testSession(false, 9)

	res, err := s.Play(3)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.OpponentErr, domain.ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn from opponent, got %v", res.OpponentErr)
	}
	if res.Opponent != nil || res.OpponentColumn != 9 {
		t.Fatalf("opponent should not have placed: %+v col=%d", res.Opponent, res.OpponentColumn)
	}
	if res.MoveCount != 1 {
		t.Fatalf("only the human piece should be on the board, got %d moves", res.MoveCount)
	}

	// the turn is back with the human
	if _, err := s.Play(3); err != nil {
		t.Fatalf("human should be able to move again: %v", err)
	}
}

func TestPlayReportsFullOpponentColumn(t *testing.T) {
	s := testSession(false, 0)
	for i := 0; i < 3; i++ {
		if _, err := s.Play(0); err != nil {
			t.Fatal(err)
		}
	}

	before := s.View().Board
	res, err := s.Play(1)
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(res.OpponentErr, domain.ErrColumnFull) {
		t.Fatalf("expected ErrColumnFull from opponent, got %v", res.OpponentErr)
	}
	before[0][1] = domain.PlayerA
	if res.Board != before {
		t.Fatalf("rejected opponent move changed the board:\n%s", res.Board)
	}
}

func TestPlayHumanErrorsLeaveSession(t *testing.T) {
	s := testSession(false, 6)

	if _, err := s.Play(-1); !errors.Is(err, domain.ErrInvalidColumn) {
		t.Fatalf("expected ErrInvalidColumn, got %v", err)
	}
	if v := s.View(); v.MoveCount != 0 {
		t.Fatalf("rejected move changed the session: %d moves", v.MoveCount)
	}
}

func TestHumanWinEndsSession(t *testing.T) {
	s := testSession(false, 6)

	var res TurnResult
	var err error
	for c := 0; c < 4; c++ {
		res, err = s.Play(c)
		if err != nil {
			t.Fatal(err)
		}
	}
	if res.Human.Result != domain.ResultWin || res.Opponent != nil {
		t.Fatalf("expected winning human move and no reply, got %+v %+v", res.Human, res.Opponent)
	}
	if res.State != domain.WonBy(domain.PlayerA) {
		t.Fatalf("expected WonBy(A), got %+v", res.State)
	}

	v := s.View()
	if v.Outcome != OutcomeHuman || v.NextTurn != domain.Empty {
		t.Fatalf("unexpected view %+v", v)
	}
	if s.FinishedAt.IsZero() {
		t.Fatal("finished time not recorded")
	}

	if _, err := s.Play(5); !errors.Is(err, domain.ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestBotWinOutcome(t *testing.T) {
	s := testSession(false, 6)
	var res TurnResult
	for _, c := range []int{0, 1, 0, 1} {
		var err error
		res, err = s.Play(c)
		if err != nil {
			t.Fatal(err)
		}
	}
	if res.State != domain.WonBy(domain.PlayerB) {
		t.Fatalf("expected bot to win with four in column 6, got %+v\n%s", res.State, res.Board)
	}
	if s.View().Outcome != OutcomeBot {
		t.Fatalf("expected bot outcome, got %q", s.View().Outcome)
	}
}

func TestBotStartsSwapsPieces(t *testing.T) {
	s := testSession(true, 3)
	if s.HumanPiece != domain.PlayerB || s.BotPiece != domain.PlayerA {
		t.Fatalf("bot should play first with A, got human=%v bot=%v", s.HumanPiece, s.BotPiece)
	}

	res := s.Reset()
	if res.Human != nil || res.Opponent == nil || res.Opponent.Column != 3 {
		t.Fatalf("expected a bot opening in column 3, got %+v", res)
	}
	if res.Board[0][3] != domain.PlayerA {
		t.Fatalf("opening piece missing:\n%s", res.Board)
	}

	res, err := s.Play(3)
	if err != nil {
		t.Fatal(err)
	}
	if res.Human.Piece != domain.PlayerB || res.Human.Row != 1 {
		t.Fatalf("human should stack B on top, got %+v", res.Human)
	}
}

func TestResetClearsFinishedGame(t *testing.T) {
	s := testSession(false, 6)
	for c := 0; c < 4; c++ {
		s.Play(c)
	}
	res := s.Reset()
	if res.State != domain.InProgress() || res.MoveCount != 0 {
		t.Fatalf("reset left state %+v with %d moves", res.State, res.MoveCount)
	}
	if !s.FinishedAt.IsZero() {
		t.Fatal("reset should clear the finished time")
	}
}

func TestManagerCreateUnknownDifficulty(t *testing.T) {
	sm := NewSessionManager(nil, nil, Options{})
	if _, err := sm.Create(context.Background(), "impossible", false); !errors.Is(err, ErrUnknownDifficulty) {
		t.Fatalf("expected ErrUnknownDifficulty, got %v", err)
	}
	if _, err := sm.Get(context.Background(), "missing"); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestManagerCachesAndRestores(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	sm := NewSessionManager(cache, nil, Options{SessionTTL: 5 * time.Minute})

	session, err := sm.Create(ctx, bot.DifficultyEasy, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cache.data[gameKeyPrefix+session.GameID]; !ok {
		t.Fatal("created session was not cached")
	}
	if cache.ttl[gameKeyPrefix+session.GameID] != 5*time.Minute {
		t.Fatalf("unexpected ttl %v", cache.ttl[gameKeyPrefix+session.GameID])
	}

	session.strategy = &scriptedStrategy{cols: []int{4}}
	if _, err := sm.Play(ctx, session.GameID, 2); err != nil {
		t.Fatal(err)
	}
	want := session.View().Board

	// a fresh manager over the same cache, as after a restart
	restarted := NewSessionManager(cache, nil, Options{})
	view, err := restarted.View(ctx, session.GameID)
	if err != nil {
		t.Fatal(err)
	}
	if view.Board != want || view.MoveCount != 2 || view.Difficulty != bot.DifficultyEasy {
		t.Fatalf("restored view differs: %+v\n%s", view, view.Board)
	}
	if restarted.ActiveCount() != 1 {
		t.Fatalf("restored session not tracked, count=%d", restarted.ActiveCount())
	}
}

func TestManagerDropsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	cache := newFakeCache()
	id := uid.GenerateGameID()
	cache.data[gameKeyPrefix+id] = `{"gameId":"` + id + `","difficulty":"easy","board":[[1]]}`

	sm := NewSessionManager(cache, nil, Options{})
	if _, err := sm.Get(ctx, id); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, ok := cache.data[gameKeyPrefix+id]; ok {
		t.Fatal("corrupt snapshot should be removed")
	}
}

func TestManagerPublishesFinishedGame(t *testing.T) {
	ctx := context.Background()
	pub := &fakePublisher{events: make(chan event.GameFinished, 1)}
	sm := NewSessionManager(nil, pub, Options{})

	session, err := sm.Create(ctx, bot.DifficultyRandom, false)
	if err != nil {
		t.Fatal(err)
	}
	session.strategy = &scriptedStrategy{cols: []int{6}}

	for c := 0; c < 4; c++ {
		if _, err := sm.Play(ctx, session.GameID, c); err != nil {
			t.Fatal(err)
		}
	}

	select {
	case e := <-pub.events:
		if e.GameID != session.GameID || e.Winner != OutcomeHuman || e.Moves != 7 {
			t.Fatalf("unexpected event %+v", e)
		}
		if e.Event != event.EventGameFinished {
			t.Fatalf("unexpected event name %q", e.Event)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no game finished event published")
	}
}

func TestManagerRemoveAndCleanup(t *testing.T) {
	ctx := context.Background()
	sm := NewSessionManager(nil, nil, Options{})

	a, _ := sm.Create(ctx, bot.DifficultyRandom, false)
	b, _ := sm.Create(ctx, bot.DifficultyMedium, false)
	if sm.ActiveCount() != 2 {
		t.Fatalf("expected 2 sessions, got %d", sm.ActiveCount())
	}

	if err := sm.Remove(ctx, a.GameID); err != nil {
		t.Fatal(err)
	}
	if err := sm.Remove(ctx, a.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound on second remove, got %v", err)
	}

	if n := sm.CleanupIdle(time.Hour); n != 0 {
		t.Fatalf("fresh session should survive cleanup, removed %d", n)
	}
	sm.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n := sm.CleanupIdle(time.Hour); n != 1 {
		t.Fatalf("expected 1 idle session removed, got %d", n)
	}
	if _, err := sm.Get(ctx, b.GameID); !errors.Is(err, ErrGameNotFound) {
		t.Fatalf("expected idle session gone, got %v", err)
	}
}

// blockingPublisher holds every publish until release is closed.
type blockingPublisher struct {
	release chan struct{}
	sent    chan event.GameFinished
}

func (p *blockingPublisher) PublishGameFinished(ctx context.Context, e event.GameFinished) error {
	<-p.release
	p.sent <- e
	return nil
}

func TestDrainWaitsForPendingEvents(t *testing.T) {
	ctx := context.Background()
	pub := &blockingPublisher{release: make(chan struct{}), sent: make(chan event.GameFinished, 1)}
	sm := NewSessionManager(nil, pub, Options{})

	session, err := sm.Create(ctx, bot.DifficultyRandom, false)
	if err != nil {
		t.Fatal(err)
	}
	session.strategy = &scriptedStrategy{cols: []int{6}}
	for c := 0; c < 4; c++ {
		if _, err := sm.Play(ctx, session.GameID, c); err != nil {
			t.Fatal(err)
		}
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := sm.Drain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("drain should wait for the blocked event, got %v", err)
	}

	close(pub.release)
	if err := sm.Drain(ctx); err != nil {
		t.Fatal(err)
	}
	select {
	case e := <-pub.sent:
		if e.GameID != session.GameID {
			t.Fatalf("unexpected event %+v", e)
		}
	default:
		t.Fatal("drain returned before the event was sent")
	}
}

func TestDrainWithNothingPending(t *testing.T) {
	sm := NewSessionManager(nil, nil, Options{})
	if err := sm.Drain(context.Background()); err != nil {
		t.Fatal(err)
	}
}
