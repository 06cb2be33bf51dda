package bot

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/iamasit07/connect4-engine/internal/domain"
)

// Strategy picks a column for a non-human player. The engine still
// validates whatever it returns, so a strategy may pick badly.
type Strategy interface {
	ChooseColumn(board domain.Board, piece domain.Cell) int
}

const (
	DifficultyRandom = "random"
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

var BotNames = map[string]string{
	DifficultyRandom: "Randy",
	DifficultyEasy:   "Alice",
	DifficultyMedium: "Bob",
	DifficultyHard:   "Charles",
}

func GetBotName(difficulty string) string {
	if name, ok := BotNames[difficulty]; ok {
		return name
	}
	return "BOT"
}

func IsKnownDifficulty(difficulty string) bool {
	_, ok := BotNames[difficulty]
	return ok
}

// Difficulties lists the known difficulty names in a stable order.
func Difficulties() []string {
	names := make([]string, 0, len(BotNames))
	for d := range BotNames {
		names = append(names, d)
	}
	order := map[string]int{DifficultyRandom: 0, DifficultyEasy: 1, DifficultyMedium: 2, DifficultyHard: 3}
	sort.Slice(names, func(i, j int) bool { return order[names[i]] < order[names[j]] })
	return names
}

type Options struct {
	// SearchDepth is the minimax depth for the hard bot
	SearchDepth int
	Seed        int64
}

// New builds the strategy for a difficulty. Every call gets its own random source.
func New(difficulty string, opts Options) (Strategy, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	switch difficulty {
	case DifficultyRandom:
		return NewRandomStrategy(rng), nil
	case DifficultyEasy:
		return NewEasyStrategy(rng), nil
	case DifficultyMedium:
		return NewMediumStrategy(), nil
	case DifficultyHard:
		return NewSearchStrategy(opts.SearchDepth), nil
	default:
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}
}

func getOpponent(p domain.Cell) domain.Cell {
	return p.Opponent()
}
