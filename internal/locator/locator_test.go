package locator_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
	"wayfinder-backend/internal/graph/graphtest"
	"wayfinder-backend/internal/graph/source"
	"wayfinder-backend/internal/locator"
)

// MockTextResolver is a mock implementation of locator.TextResolver.
type MockTextResolver struct {
	mock.Mock
}

func (m *MockTextResolver) ResolveText(ctx context.Context, query string, candidates []string) (string, bool, error) {
	args := m.Called(ctx, query, candidates)
	return args.String(0), args.Bool(1), args.Error(2)
}

func TestResolve_ExactForEveryNode(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Campus())
	l := locator.New(g, nil, 0, nil)
	ctx := context.Background()

	for _, n := range g.Nodes() {
		queries := []string{n.ID, n.Name, strings.ToUpper(n.Name), "  " + n.Name + "\t"}
		queries = append(queries, n.Aliases...)
		queries = append(queries, n.Rooms...)

		for _, q := range queries {
			res, err := l.Resolve(ctx, q)
			require.NoError(t, err, q)
			assert.Equal(t, n.ID, res.NodeID, q)
			assert.Equal(t, locator.StrategyExact, res.Strategy, q)
		}
	}
}

func TestResolve_Scenario(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Scenario())
	l := locator.New(g, nil, 0, nil)

	res, err := l.Resolve(context.Background(), "101")
	require.NoError(t, err)
	assert.Equal(t, "room101", res.NodeID)

	_, err = l.Resolve(context.Background(), "nonexistent place")
	require.Error(t, err)
	assert.True(t, shared.IsNotFound(err))
}

func TestResolve_Strategies(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Campus())
	l := locator.New(g, nil, 0, nil)

	tests := []struct {
		query    string
		nodeID   string
		strategy locator.Strategy
	}{
		{"St. Larry's Pub", "st_larrys", locator.StrategyExact},
		{"st larrys pub", "st_larrys", locator.StrategyNormalized},
		{"StLarrysPub", "st_larrys", locator.StrategyNormalized},
		{"main-lobby", "lobby", locator.StrategyNormalized},
		{"Food Court", "cafeteria", locator.StrategyExact},
		{"larry", "st_larrys", locator.StrategySubstring},
		{"caf", "cafeteria", locator.StrategySubstring},
		{"20", "hallway_b", locator.StrategySubstring},
		{"202", "hallway_b", locator.StrategyExact},
		{"larrys pub", "st_larrys", locator.StrategySubstring},
		{"east-stair", "stairs_east", locator.StrategySubstring},
		{"take me to the cafeteria", "cafeteria", locator.StrategyContained},
		{"I need room 202 please", "hallway_b", locator.StrategyContained},
		{"near the East Stairs by the main lobby", "stairs_east", locator.StrategyContained},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			res, err := l.Resolve(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.nodeID, res.NodeID)
			assert.Equal(t, tt.strategy, res.Strategy)
		})
	}
}

func TestResolve_SubstringPrefersShortestThenDefinitionOrder(t *testing.T) {
	def := graphtest.NewDefinitionBuilder().
		WithNode("entrance", "Entrance", location.TypeEntrance).
		WithNode("annex", "Chemistry Lab Annex", location.TypeRoom).
		WithNode("chem", "Chem Lab", location.TypeRoom).
		WithNode("north", "North Wing", location.TypeJunction).
		WithNode("south", "South Wing", location.TypeJunction).
		WithEdge("entrance", "annex").
		WithEdge("entrance", "chem").
		WithEdge("entrance", "north").
		WithEdge("entrance", "south").
		Build()
	l := locator.New(graphtest.MustLoad(t, def), nil, 0, nil)

	res, err := l.Resolve(context.Background(), "lab")
	require.NoError(t, err)
	assert.Equal(t, "chem", res.NodeID)

	res, err = l.Resolve(context.Background(), "wing")
	require.NoError(t, err)
	assert.Equal(t, "north", res.NodeID)
}

func TestResolve_ContainedNeedsFourCharacters(t *testing.T) {
	def := graphtest.NewDefinitionBuilder().
		WithNode("entrance", "Entrance", location.TypeEntrance).
		WithNode("annex", "Annex", location.TypeRoom).
		WithEdge("entrance", "annex").
		Build()
	def.Nodes[1].Rooms = []string{"12"}
	l := locator.New(graphtest.MustLoad(t, def), nil, 0, nil)

	_, err := l.Resolve(context.Background(), "12b")
	assert.True(t, shared.IsNotFound(err))

	res, err := l.Resolve(context.Background(), "room 12b")
	require.NoError(t, err)
	assert.Equal(t, "annex", res.NodeID)
	assert.Equal(t, locator.StrategyContained, res.Strategy)
}

func TestResolve_SampleBuilding(t *testing.T) {
	def, err := source.NewFile(filepath.Join("..", "..", "data", "navigation_data.json")).Load(context.Background())
	require.NoError(t, err)
	l := locator.New(graphtest.MustLoad(t, def), nil, 0, nil)

	tests := map[string]string{
		"larrys pub":             "st_larrys",
		"take me to the library": "library",
		"printers":               "library",
	}
	for query, want := range tests {
		res, err := l.Resolve(context.Background(), query)
		require.NoError(t, err, query)
		assert.Equal(t, want, res.NodeID, query)
	}
}

func TestResolve_EmptyQuery(t *testing.T) {
	resolver := new(MockTextResolver)
	l := locator.New(graphtest.MustLoad(t, graphtest.Scenario()), resolver, 0, nil)

	for _, q := range []string{"", "   ", "\t"} {
		_, err := l.Resolve(context.Background(), q)
		assert.True(t, shared.IsNotFound(err))
	}
	resolver.AssertNotCalled(t, "ResolveText", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolve_Semantic(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Scenario())
	names := []string{"Entrance", "Hall", "Library", "Room101"}

	t.Run("accepts existing name", func(t *testing.T) {
		resolver := new(MockTextResolver)
		resolver.On("ResolveText", mock.Anything, "somewhere quiet to read", names).
			Return("library", true, nil).Once()
		l := locator.New(g, resolver, time.Second, nil)

		res, err := l.Resolve(context.Background(), "somewhere quiet to read")
		require.NoError(t, err)
		assert.Equal(t, "library", res.NodeID)
		assert.Equal(t, locator.StrategySemantic, res.Strategy)
		resolver.AssertExpectations(t)
	})

	t.Run("rejects unknown name", func(t *testing.T) {
		resolver := new(MockTextResolver)
		resolver.On("ResolveText", mock.Anything, "gym", names).Return("Gymnasium", true, nil)
		l := locator.New(g, resolver, time.Second, nil)

		_, err := l.Resolve(context.Background(), "gym")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("no match", func(t *testing.T) {
		resolver := new(MockTextResolver)
		resolver.On("ResolveText", mock.Anything, "gym", names).Return("", false, nil)
		l := locator.New(g, resolver, time.Second, nil)

		_, err := l.Resolve(context.Background(), "gym")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("collaborator error", func(t *testing.T) {
		resolver := new(MockTextResolver)
		resolver.On("ResolveText", mock.Anything, "gym", names).Return("", false, errors.New("upstream 500"))
		l := locator.New(g, resolver, time.Second, nil)

		_, err := l.Resolve(context.Background(), "gym")
		assert.True(t, shared.IsNotFound(err))
	})

	t.Run("timeout", func(t *testing.T) {
		resolver := new(MockTextResolver)
		resolver.On("ResolveText", mock.Anything, "gym", names).
			Run(func(args mock.Arguments) {
				<-args.Get(0).(context.Context).Done()
			}).
			Return("", false, context.DeadlineExceeded)
		l := locator.New(g, resolver, 20*time.Millisecond, nil)

		start := time.Now()
		_, err := l.Resolve(context.Background(), "gym")
		assert.True(t, shared.IsNotFound(err))
		assert.Less(t, time.Since(start), 2*time.Second)
	})

	t.Run("local match skips collaborator", func(t *testing.T) {
		resolver := new(MockTextResolver)
		l := locator.New(g, resolver, time.Second, nil)

		res, err := l.Resolve(context.Background(), "Library")
		require.NoError(t, err)
		assert.Equal(t, "library", res.NodeID)
		resolver.AssertNotCalled(t, "ResolveText", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResolveLocal_NeverCallsCollaborator(t *testing.T) {
	resolver := new(MockTextResolver)
	l := locator.New(graphtest.MustLoad(t, graphtest.Scenario()), resolver, time.Second, nil)

	_, err := l.ResolveLocal("somewhere else")
	assert.True(t, shared.IsNotFound(err))
	assert.True(t, l.HasTextResolver())
	resolver.AssertNotCalled(t, "ResolveText", mock.Anything, mock.Anything, mock.Anything)
}

func TestDestinations(t *testing.T) {
	l := locator.New(graphtest.MustLoad(t, graphtest.Campus()), nil, 0, nil)

	got := l.Destinations()

	var rooms, places []string
	for _, d := range got {
		switch d.Kind {
		case locator.DestinationRoom:
			rooms = append(rooms, d.Value)
		case locator.DestinationLocation:
			places = append(places, d.Value)
		}
	}
	assert.Equal(t, []string{"101", "102", "103", "201", "202"}, rooms)
	assert.Equal(t, []string{"Front Entrance", "Main Lobby", "Cafeteria", "East Stairs", "Elevator", "St. Larry's Pub"}, places)

	for _, d := range got {
		if d.Value == "201" {
			assert.Equal(t, 2, d.Floor)
			assert.Equal(t, "Hallway B", d.Location)
			assert.Equal(t, "hallway_b", d.NodeID)
		}
	}
}
