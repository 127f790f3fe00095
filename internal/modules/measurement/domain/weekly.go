package domain

import (
	"time"

	apperrors "stridekit/internal/platform/errors"
)

const (
	ParamWalkScore = "walk_score"
	weekWindow     = 7 * 24 * time.Hour
)

type WeeklyScore struct {
	Average float64
	Walks   int
	Since   time.Time
}

// WeeklyWalkScore averages the walk score of fully analyzed walks recorded in
// the seven days before now.
func WeeklyWalkScore(records []Record, now time.Time) (WeeklyScore, error) {
	since := now.Add(-weekWindow)
	filter := Filter{ActivityType: "walk", Completeness: CompletenessFull, Since: since}
	total := 0.0
	count := 0
	for _, r := range records {
		if !filter.Match(r) || r.RecordedAt.After(now) {
			continue
		}
		score, ok := r.Parameters[ParamWalkScore]
		if !ok {
			continue
		}
		total += score
		count++
	}
	if count == 0 {
		return WeeklyScore{Since: since}, apperrors.ErrNoData
	}
	return WeeklyScore{Average: total / float64(count), Walks: count, Since: since}, nil
}
