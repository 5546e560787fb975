package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
	"wayfinder-backend/internal/graph/graphtest"
	"wayfinder-backend/internal/pathfinding"
	"wayfinder-backend/internal/render"
)

func TestRender_RoundTripKeepsOrder(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Campus())

	for _, a := range g.Nodes() {
		for _, b := range g.Nodes() {
			path, err := pathfinding.ShortestPath(g, a.ID, b.ID)
			require.NoError(t, err)

			steps, err := render.Render(g, path)
			require.NoError(t, err)
			assert.Equal(t, path, render.NodeIDs(steps))

			names := make([]string, len(path))
			for i, id := range path {
				n, _ := g.Node(id)
				names[i] = n.Name
			}
			assert.Equal(t, names, render.Names(steps))
		}
	}
}

func TestRender_Scenario(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Scenario())

	steps, err := render.Render(g, []string{"entrance", "hall", "room101"})
	require.NoError(t, err)
	require.Len(t, steps, 3)

	assert.Equal(t, render.PositionFirst, steps[0].Position)
	assert.Equal(t, render.PositionMiddle, steps[1].Position)
	assert.Equal(t, render.PositionLast, steps[2].Position)

	assert.Equal(t, "Room101", steps[2].Name)
	assert.Equal(t, "room101.jpg", steps[2].PhotoRef)
	assert.Equal(t, location.TypeRoom, steps[2].Type)

	for i, s := range steps {
		assert.Equal(t, i, s.Index)
		assert.Nil(t, s.Transition)
	}
	assert.Nil(t, steps[0].Arrival)
	require.NotNil(t, steps[2].Arrival)
	assert.Equal(t, "Room101", steps[2].Arrival.Name)
}

func TestRender_SingleStep(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Scenario())

	steps, err := render.Render(g, []string{"library"})
	require.NoError(t, err)
	require.Len(t, steps, 1)
	assert.Equal(t, render.PositionOnly, steps[0].Position)
	assert.NotNil(t, steps[0].Arrival)
}

func TestRender_FloorTransitions(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Campus())

	up, err := render.Render(g, []string{"lobby", "stairs_east", "hallway_b"})
	require.NoError(t, err)
	require.NotNil(t, up[1].Transition)
	assert.Equal(t, location.TypeStairs, up[1].Transition.Kind)
	assert.Equal(t, render.DirectionUp, up[1].Transition.Direction)
	assert.Equal(t, 1, up[1].Transition.FromFloor)
	assert.Equal(t, 2, up[1].Transition.ToFloor)

	down, err := render.Render(g, []string{"hallway_b", "elevator", "lobby"})
	require.NoError(t, err)
	require.NotNil(t, down[1].Transition)
	assert.Equal(t, render.DirectionDown, down[1].Transition.Direction)

	ending, err := render.Render(g, []string{"lobby", "elevator"})
	require.NoError(t, err)
	require.NotNil(t, ending[1].Transition)
	assert.Equal(t, render.DirectionLevel, ending[1].Transition.Direction)
	assert.NotNil(t, ending[1].Arrival)

	assert.Nil(t, up[0].Transition)
	assert.Nil(t, up[2].Transition)
}

func TestRender_UnknownNode(t *testing.T) {
	g := graphtest.MustLoad(t, graphtest.Scenario())

	steps, err := render.Render(g, []string{"entrance", "ghost"})
	assert.Nil(t, steps)
	assert.True(t, shared.IsNotFound(err))
}

func TestRenderer_PhotoURL(t *testing.T) {
	tests := []struct {
		base string
		ref  string
		want string
	}{
		{"", "lobby.jpg", "lobby.jpg"},
		{"https://cdn.example.com/photos/", "lobby.jpg", "https://cdn.example.com/photos/lobby.jpg"},
		{"/api/photos", "/lobby.jpg", "/api/photos/lobby.jpg"},
		{"/api/photos", "https://elsewhere/x.jpg", "https://elsewhere/x.jpg"},
		{"/api/photos", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.base+"|"+tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, render.New(tt.base).PhotoURL(tt.ref))
		})
	}
}
