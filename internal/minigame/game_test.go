package minigame

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jmdelacruz/sarisari-pos/internal/models"
)

func testCatalog() ([]models.Item, []models.Category) {
	categories := []models.Category{
		{ID: 1, Name: "Food"},
		{ID: 2, Name: "Snack"},
		{ID: 3, Name: "Beverage"},
		{ID: 4, Name: "Detergent"},
	}
	items := []models.Item{
		{ID: 1, Name: "Rice", Price: 50, CategoryID: 1},
		{ID: 2, Name: "Chips", Price: 15, CategoryID: 2},
		{ID: 3, Name: "Cola", Price: 25, CategoryID: 3},
		{ID: 4, Name: "Soap", Price: 10, CategoryID: 4},
	}
	return items, categories
}

func newTestGame(t *testing.T, rounds int) *Game {
	t.Helper()
	items, categories := testCatalog()
	g, err := New(items, categories, rounds, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	return g
}

func TestNewRequiresCatalog(t *testing.T) {
	_, categories := testCatalog()
	_, err := New(nil, categories, 10, rand.New(rand.NewSource(1)))
	require.ErrorIs(t, err, ErrNoCatalog)
}

func TestRoundOptions(t *testing.T) {
	g := newTestGame(t, 10)

	round := g.Current()
	require.Len(t, round.Options, 4)

	var correctName string
	_, categories := testCatalog()
	for _, c := range categories {
		if c.ID == round.Item.CategoryID {
			correctName = c.Name
		}
	}
	require.Contains(t, round.Options, correctName)

	seen := map[string]bool{}
	for _, o := range round.Options {
		require.False(t, seen[o], "duplicate option %q", o)
		seen[o] = true
	}
}

func TestAnswerScoresOncePerRound(t *testing.T) {
	g := newTestGame(t, 10)

	correct, answer, err := g.Answer(g.Current().correct)
	require.NoError(t, err)
	require.True(t, correct)
	require.Equal(t, g.Current().correct, answer)
	require.Equal(t, 1, g.Score())

	_, _, err = g.Answer(answer)
	require.ErrorIs(t, err, ErrRoundAnswered)
	require.Equal(t, 1, g.Score())
}

func TestWrongAnswerRevealsCorrect(t *testing.T) {
	g := newTestGame(t, 10)

	correct, answer, err := g.Answer("not a category")
	require.NoError(t, err)
	require.False(t, correct)
	require.Equal(t, g.Current().correct, answer)
	require.Zero(t, g.Score())
}

func TestNextRequiresAnswer(t *testing.T) {
	g := newTestGame(t, 10)
	require.ErrorIs(t, g.Next(), ErrRoundUnanswered)
}

func TestGameEndsAfterLastRound(t *testing.T) {
	g := newTestGame(t, 3)

	for i := 0; i < 3; i++ {
		require.Equal(t, i+1, g.Round())
		_, _, err := g.Answer(g.Current().correct)
		require.NoError(t, err)
		require.NoError(t, g.Next())
	}

	require.True(t, g.Over())
	require.Equal(t, 3, g.Score())
	require.ErrorIs(t, g.Next(), ErrGameOver)
	_, _, err := g.Answer("Food")
	require.ErrorIs(t, err, ErrGameOver)
}

func TestLeaderboardKeepsTopFive(t *testing.T) {
	dir := t.TempDir()
	lb, err := NewLeaderboard(dir, 5)
	require.NoError(t, err)

	for _, s := range []int{3, 9, 1, 7, 5, 8} {
		require.NoError(t, lb.Add(s))
	}
	require.Equal(t, []int{9, 8, 7, 5, 3}, lb.Scores())

	// Scores persist across reopen.
	lb2, err := NewLeaderboard(dir, 5)
	require.NoError(t, err)
	require.Equal(t, []int{9, 8, 7, 5, 3}, lb2.Scores())
}
