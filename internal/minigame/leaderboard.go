package minigame

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jmdelacruz/sarisari-pos/internal/storage"
)

const LeaderboardFileName = "leaderboard.json"

// Leaderboard keeps the best historical scores, sorted descending and
// truncated to its cap.
type Leaderboard struct {
	mu     sync.Mutex
	scores []int
	cap    int
	file   *storage.JSONStore
}

func NewLeaderboard(dataDir string, limit int) (*Leaderboard, error) {
	file, err := storage.NewJSONStore(dataDir, LeaderboardFileName)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 5
	}

	l := &Leaderboard{cap: limit, file: file}
	if err := file.Load(&l.scores); err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(l.scores)))
	if len(l.scores) > limit {
		l.scores = l.scores[:limit]
	}
	return l, nil
}

func (l *Leaderboard) Add(score int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := append(append([]int(nil), l.scores...), score)
	sort.Sort(sort.Reverse(sort.IntSlice(next)))
	if len(next) > l.cap {
		next = next[:l.cap]
	}

	if err := l.file.Save(next); err != nil {
		return err
	}
	l.scores = next
	return nil
}

func (l *Leaderboard) Scores() []int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]int(nil), l.scores...)
}
