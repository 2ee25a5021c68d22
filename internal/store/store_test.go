package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/derekprior/league/internal/model"
)

func TestGameFilterMatch(t *testing.T) {
	g := &model.Game{HomeTeam: "a", AwayTeam: "b", Week: 2, Status: model.GameScheduled}

	tests := []struct {
		name   string
		filter GameFilter
		want   bool
	}{
		{"empty filter matches", GameFilter{}, true},
		{"status", GameFilter{Status: model.GameScheduled}, true},
		{"other status", GameFilter{Status: model.GameCompleted}, false},
		{"away team", GameFilter{Team: "b"}, true},
		{"team not playing", GameFilter{Team: "c"}, false},
		{"week", GameFilter{Week: 2}, true},
		{"other week", GameFilter{Week: 1}, false},
		{"all fields", GameFilter{Status: model.GameScheduled, Team: "a", Week: 2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Match(g))
		})
	}
}

func TestLinkWeeks(t *testing.T) {
	g1 := model.Game{ID: uuid.New(), Week: 2}
	g2 := model.Game{ID: uuid.New(), Week: 1}
	g3 := model.Game{ID: uuid.New(), Week: 2}
	s := &model.Season{
		Weeks: []model.Week{{Index: 1, Games: []uuid.UUID{uuid.New()}}, {Index: 2}},
		Games: []model.Game{g1, g2, g3},
	}

	LinkWeeks(s)
	assert.Equal(t, []uuid.UUID{g2.ID}, s.Weeks[0].Games)
	assert.Equal(t, []uuid.UUID{g1.ID, g3.ID}, s.Weeks[1].Games)

	s.Games = nil
	LinkWeeks(s)
	assert.Empty(t, s.Weeks[0].Games)
	assert.Empty(t, s.Weeks[1].Games)
}
