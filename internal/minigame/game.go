// Package minigame is the "guess the category" quiz: fixed-round sessions over
// the current catalog, with a capped best-scores leaderboard.
package minigame

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

const (
	DefaultRounds = 10
	maxWrong      = 3
)

var (
	ErrNoCatalog       = errors.New("no items or categories available")
	ErrRoundAnswered   = errors.New("round already answered")
	ErrRoundUnanswered = errors.New("round not answered yet")
	ErrGameOver        = errors.New("game is over")
)

type Round struct {
	Item    models.Item `json:"item"`
	Options []string    `json:"options"`

	correct string
}

type Game struct {
	items      []models.Item
	categories []models.Category
	rounds     int
	rng        *rand.Rand

	round    int
	score    int
	answered bool
	over     bool
	current  Round
}

func New(items []models.Item, categories []models.Category, rounds int, rng *rand.Rand) (*Game, error) {
	if len(items) == 0 || len(categories) == 0 {
		return nil, ErrNoCatalog
	}
	if rounds <= 0 {
		rounds = DefaultRounds
	}

	g := &Game{
		items:      append([]models.Item(nil), items...),
		categories: append([]models.Category(nil), categories...),
		rounds:     rounds,
		rng:        rng,
	}
	g.round = 1
	g.deal()
	return g, nil
}

func (g *Game) Round() int         { return g.round }
func (g *Game) Rounds() int        { return g.rounds }
func (g *Game) Score() int         { return g.score }
func (g *Game) Over() bool         { return g.over }
func (g *Game) Answered() bool     { return g.answered }
func (g *Game) Current() Round     { return g.current }

func (g *Game) categoryName(id int64) string {
	for _, c := range g.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

// deal picks a random item, its correct category name, and up to three
// distinct wrong category names, then shuffles the options.
func (g *Game) deal() {
	item := g.items[g.rng.Intn(len(g.items))]
	correct := g.categoryName(item.CategoryID)

	var others []string
	for _, c := range g.categories {
		if c.Name != correct {
			others = append(others, c.Name)
		}
	}
	options := []string{correct}
	for len(others) > 0 && len(options) < 1+maxWrong {
		i := g.rng.Intn(len(others))
		options = append(options, others[i])
		others = append(others[:i], others[i+1:]...)
	}
	g.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	g.current = Round{Item: item, Options: options, correct: correct}
	g.answered = false
}

// Answer scores the current round. The correct category name is returned so
// the caller can show it on a miss.
func (g *Game) Answer(option string) (correct bool, answer string, err error) {
	if g.over {
		return false, "", ErrGameOver
	}
	if g.answered {
		return false, "", fmt.Errorf("%w: round %d", ErrRoundAnswered, g.round)
	}

	g.answered = true
	if option == g.current.correct {
		g.score++
		return true, g.current.correct, nil
	}
	return false, g.current.correct, nil
}

// Next advances to the following round, or ends the game after the last one.
func (g *Game) Next() error {
	if g.over {
		return ErrGameOver
	}
	if !g.answered {
		return fmt.Errorf("%w: round %d", ErrRoundUnanswered, g.round)
	}
	if g.round >= g.rounds {
		g.over = true
		return nil
	}
	g.round++
	g.deal()
	return nil
}
