package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/derekprior/league/internal/fixture"
	"github.com/derekprior/league/internal/model"
)

// Options configures how pairings are laid out across the season window.
type Options struct {
	SeasonID     uuid.UUID
	Start        time.Time
	End          time.Time
	GamesPerWeek int

	// NewID produces game ids. Defaults to uuid.New.
	NewID func() uuid.UUID
}

// Result is the output of partitioning: weeks referencing games by id, and
// the games themselves in the same order.
type Result struct {
	Weeks []model.Week
	Games []model.Game
}

// PartitionIntoWeeks groups round-major pairings into contiguous weeks that
// exactly cover [Start, End] at day granularity. Each week holds at most
// GamesPerWeek games; pairings are never reordered.
func PartitionIntoWeeks(pairings []fixture.Pairing[string], opts Options) (*Result, error) {
	if opts.GamesPerWeek < 1 {
		return nil, fmt.Errorf("games per week must be positive, got %d", opts.GamesPerWeek)
	}
	start, end := Day(opts.Start), Day(opts.End)
	if !end.After(start) {
		return nil, &model.InvalidDateRangeError{Start: start, End: end, Reason: "end must be after start"}
	}
	if len(pairings) == 0 {
		return &Result{}, nil
	}

	numWeeks := (len(pairings) + opts.GamesPerWeek - 1) / opts.GamesPerWeek
	ranges, err := splitDays(start, end, numWeeks)
	if err != nil {
		return nil, err
	}

	newID := opts.NewID
	if newID == nil {
		newID = uuid.New
	}

	result := &Result{
		Weeks: make([]model.Week, numWeeks),
		Games: make([]model.Game, 0, len(pairings)),
	}
	for w, r := range ranges {
		result.Weeks[w] = model.Week{Index: w + 1, StartDate: r.start, EndDate: r.end}
	}
	for i, p := range pairings {
		w := i / opts.GamesPerWeek
		g := model.Game{
			ID:            newID(),
			SeasonID:      opts.SeasonID,
			Round:         p.Round,
			Week:          w + 1,
			HomeTeam:      p.Home,
			AwayTeam:      p.Away,
			ScheduledDate: result.Weeks[w].StartDate,
			Status:        model.GamePending,
		}
		result.Games = append(result.Games, g)
		result.Weeks[w].Games = append(result.Weeks[w].Games, g.ID)
	}
	return result, nil
}

type dayRange struct {
	start, end time.Time
}

// splitDays divides the inclusive day range [start, end] into n equal,
// contiguous ranges. The last range absorbs the remainder days.
func splitDays(start, end time.Time, n int) ([]dayRange, error) {
	totalDays := daysBetween(start, end) + 1
	if totalDays < n {
		return nil, &model.InvalidDateRangeError{
			Start:  start,
			End:    end,
			Reason: fmt.Sprintf("%d days cannot hold %d weeks", totalDays, n),
		}
	}
	length := totalDays / n
	ranges := make([]dayRange, n)
	for i := range ranges {
		s := start.AddDate(0, 0, i*length)
		e := s.AddDate(0, 0, length-1)
		if i == n-1 {
			e = end
		}
		ranges[i] = dayRange{s, e}
	}
	return ranges, nil
}

// Day truncates t to midnight UTC of its calendar date. Season windows are
// compared and split at this granularity.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}
