package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"wayfinder-backend/internal/application/services"
	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/domain/shared"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/render"
	"wayfinder-backend/internal/session"
)

type mockService struct{ mock.Mock }

func (m *mockService) Navigate(ctx context.Context, req services.NavigateRequest) (*services.Route, error) {
	args := m.Called(ctx, req)
	route, _ := args.Get(0).(*services.Route)
	return route, args.Error(1)
}

func (m *mockService) Recover(ctx context.Context, req services.RecoverRequest) (*services.Recovery, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*services.Recovery)
	return rec, args.Error(1)
}

func (m *mockService) RecoverFromPhoto(ctx context.Context, req services.PhotoRecoverRequest) (*services.Recovery, error) {
	args := m.Called(ctx, req)
	rec, _ := args.Get(0).(*services.Recovery)
	return rec, args.Error(1)
}

func (m *mockService) Search(ctx context.Context, req services.SearchRequest) (*services.SearchResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*services.SearchResult)
	return res, args.Error(1)
}

func (m *mockService) Destinations() []locator.Destination {
	args := m.Called()
	list, _ := args.Get(0).([]locator.Destination)
	return list
}

func (m *mockService) CreateSession() session.Session {
	return m.Called().Get(0).(session.Session)
}

func (m *mockService) GetSession(id string) (session.Session, error) {
	args := m.Called(id)
	return args.Get(0).(session.Session), args.Error(1)
}

func (m *mockService) DeleteSession(id string) { m.Called(id) }

func (m *mockService) Health() services.Health {
	return m.Called().Get(0).(services.Health)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, svc NavigationService, method, path string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	h := NewNavigationHandler(svc, 1<<20, zap.NewNop())

	r := chi.NewRouter()
	r.Post("/navigate", h.Navigate)
	r.Get("/destinations", h.Destinations)
	r.Post("/recover", h.Recover)
	r.Post("/recover/photo", h.RecoverFromPhoto)
	r.Post("/search", h.Search)
	r.Get("/health", h.Health)
	r.Post("/sessions", h.CreateSession)
	r.Get("/sessions/{id}", h.GetSession)
	r.Delete("/sessions/{id}", h.DeleteSession)

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func jsonBody(v interface{}) *bytes.Buffer {
	b, _ := json.Marshal(v)
	return bytes.NewBuffer(b)
}

func sampleRoute() *services.Route {
	lobby := location.Node{ID: "lobby", Name: "Main Lobby", Type: location.TypeLandmark, Floor: 1}
	cafe := location.Node{ID: "cafeteria", Name: "Cafeteria", Type: location.TypeLandmark, Floor: 1}
	return &services.Route{
		SessionID:   "s-1",
		Start:       lobby,
		Destination: cafe,
		DestMatch:   locator.StrategyExact,
		Path:        []string{"lobby", "cafeteria"},
		Steps: []render.Step{
			{Index: 0, NodeID: "lobby", Name: "Main Lobby", PhotoURL: "/photos/lobby.jpg", Position: render.PositionFirst},
			{Index: 1, NodeID: "cafeteria", Name: "Cafeteria", PhotoURL: "/photos/cafe.jpg", Position: render.PositionLast},
		},
	}
}

func TestNavigate(t *testing.T) {
	svc := &mockService{}
	svc.On("Navigate", mock.Anything, services.NavigateRequest{Start: "lobby", Destination: "Cafeteria", UseAI: true}).
		Return(sampleRoute(), nil)

	rec, env := serve(t, svc, http.MethodPost, "/navigate",
		jsonBody(map[string]string{"start_location": " lobby ", "destination": "Cafeteria"}), "application/json")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var data struct {
		Path   []string `json:"path"`
		Photos []string `json:"photos"`
		Match  string   `json:"destination_matched_via"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, []string{"lobby", "cafeteria"}, data.Path)
	assert.Equal(t, []string{"/photos/lobby.jpg", "/photos/cafe.jpg"}, data.Photos)
	assert.Equal(t, "exact", data.Match)
	svc.AssertExpectations(t)
}

func TestNavigate_UseAIFlag(t *testing.T) {
	svc := &mockService{}
	svc.On("Navigate", mock.Anything, mock.MatchedBy(func(req services.NavigateRequest) bool {
		return !req.UseAI
	})).Return(sampleRoute(), nil)

	rec, _ := serve(t, svc, http.MethodPost, "/navigate",
		jsonBody(map[string]interface{}{"destination": "Cafeteria", "use_ai": false}), "application/json")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestNavigate_Rejected(t *testing.T) {
	tests := []struct {
		name     string
		body     *bytes.Buffer
		wantCode string
	}{
		{"empty body", &bytes.Buffer{}, "INVALID_INPUT"},
		{"not json", bytes.NewBufferString("destination=cafe"), "INVALID_INPUT"},
		{"missing destination", jsonBody(map[string]string{"start_location": "lobby"}), "VALIDATION_FAILED"},
		{"blank destination", jsonBody(map[string]string{"destination": "   "}), "VALIDATION_FAILED"},
		{"bad session id", jsonBody(map[string]string{"destination": "cafe", "session_id": "abc"}), "VALIDATION_FAILED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			rec, env := serve(t, svc, http.MethodPost, "/navigate", tt.body, "application/json")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantCode, env.Error.Code)
			svc.AssertNotCalled(t, "Navigate", mock.Anything, mock.Anything)
		})
	}
}

func TestNavigate_ServiceErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unknown location", shared.NewLocationNotFound("moon base"), http.StatusNotFound, "LOCATION_NOT_FOUND"},
		{"no path", shared.NewNoPath("lobby", "island"), http.StatusUnprocessableEntity, "NO_PATH"},
		{"expired session", shared.NewSessionNotFound("s-9"), http.StatusNotFound, "SESSION_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{}
			svc.On("Navigate", mock.Anything, mock.Anything).Return(nil, tt.err)

			rec, env := serve(t, svc, http.MethodPost, "/navigate",
				jsonBody(map[string]string{"destination": "somewhere"}), "application/json")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestDestinations(t *testing.T) {
	svc := &mockService{}
	svc.On("Destinations").Return([]locator.Destination{
		{Kind: locator.DestinationRoom, Value: "101", Location: "Hallway A", NodeID: "hallway_a", Floor: 1},
	})

	rec, env := serve(t, svc, http.MethodGet, "/destinations", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		Destinations []locator.Destination `json:"destinations"`
		Count        int                   `json:"count"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 1, data.Count)
	assert.Equal(t, "101", data.Destinations[0].Value)
}

func TestRecover(t *testing.T) {
	svc := &mockService{}
	svc.On("Recover", mock.Anything, services.RecoverRequest{Landmark: "pub", UseAI: true}).Return(&services.Recovery{
		Session:  session.Session{ID: "s-1", AnchorNodeID: "st_larrys"},
		Landmark: location.Node{ID: "st_larrys", Name: "St. Larry's Pub", Floor: 2},
		Strategy: locator.StrategySubstring,
	}, nil)

	rec, env := serve(t, svc, http.MethodPost, "/recover", jsonBody(map[string]string{"landmark": "pub"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var data struct {
		NewStart struct {
			ID string `json:"id"`
		} `json:"new_start"`
		MatchedVia string `json:"matched_via"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "st_larrys", data.NewStart.ID)
	assert.Equal(t, "substring", data.MatchedVia)
}

func TestRecover_UnknownLandmark(t *testing.T) {
	svc := &mockService{}
	svc.On("Recover", mock.Anything, mock.Anything).Return(nil, shared.NewUnknownLandmark("spaceship"))

	rec, env := serve(t, svc, http.MethodPost, "/recover", jsonBody(map[string]string{"landmark": "spaceship"}), "application/json")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "UNKNOWN_LANDMARK", env.Error.Code)
}

func photoForm(t *testing.T, contentType string, data []byte, sessionID string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if sessionID != "" {
		require.NoError(t, w.WriteField("session_id", sessionID))
	}
	if data != nil {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="photo"; filename="here.jpg"`)
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestRecoverFromPhoto(t *testing.T) {
	svc := &mockService{}
	svc.On("RecoverFromPhoto", mock.Anything, services.PhotoRecoverRequest{
		SessionID: "s-1",
		Image:     []byte("jpeg-bytes"),
		MimeType:  "image/jpeg",
	}).Return(&services.Recovery{
		Session:  session.Session{ID: "s-1"},
		Landmark: location.Node{ID: "lobby", Name: "Main Lobby"},
		Strategy: "photo",
	}, nil)

	body, ct := photoForm(t, "image/jpeg", []byte("jpeg-bytes"), "s-1")
	rec, env := serve(t, svc, http.MethodPost, "/recover/photo", body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	svc.AssertExpectations(t)
}

func TestRecoverFromPhoto_MimeFromFilename(t *testing.T) {
	svc := &mockService{}
	svc.On("RecoverFromPhoto", mock.Anything, mock.MatchedBy(func(req services.PhotoRecoverRequest) bool {
		return req.MimeType == "image/jpeg"
	})).Return(&services.Recovery{Landmark: location.Node{ID: "lobby"}}, nil)

	body, ct := photoForm(t, "application/octet-stream", []byte("jpeg-bytes"), "")
	rec, _ := serve(t, svc, http.MethodPost, "/recover/photo", body, ct)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRecoverFromPhoto_Rejected(t *testing.T) {
	t.Run("missing photo", func(t *testing.T) {
		body, ct := photoForm(t, "", nil, "s-1")
		rec, env := serve(t, &mockService{}, http.MethodPost, "/recover/photo", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_INPUT", env.Error.Code)
	})

	t.Run("not multipart", func(t *testing.T) {
		rec, _ := serve(t, &mockService{}, http.MethodPost, "/recover/photo", jsonBody(map[string]string{}), "application/json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty photo", func(t *testing.T) {
		body, ct := photoForm(t, "image/png", []byte{}, "")
		rec, _ := serve(t, &mockService{}, http.MethodPost, "/recover/photo", body, ct)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestSearch(t *testing.T) {
	svc := &mockService{}
	svc.On("Search", mock.Anything, services.SearchRequest{Query: "room 101", UseAI: true}).Return(&services.SearchResult{
		Query: "room 101", NodeID: "hallway_a", Name: "Hallway A", Strategy: locator.StrategyNormalized,
	}, nil)

	rec, env := serve(t, svc, http.MethodPost, "/search", jsonBody(map[string]string{"query": "room 101"}), "application/json")
	require.Equal(t, http.StatusOK, rec.Code)

	var data services.SearchResult
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "hallway_a", data.NodeID)
}

func TestSessions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := session.Session{ID: "s-1", AnchorNodeID: "front_entrance", CreatedAt: now, UpdatedAt: now}

	svc := &mockService{}
	svc.On("CreateSession").Return(sess)
	svc.On("GetSession", "s-1").Return(sess, nil)
	svc.On("GetSession", "gone").Return(session.Session{}, shared.NewSessionNotFound("gone"))
	svc.On("DeleteSession", "s-1").Return()

	rec, env := serve(t, svc, http.MethodPost, "/sessions", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "/api/sessions/s-1", rec.Header().Get("Location"))
	assert.Contains(t, string(env.Data), `"anchor_node_id":"front_entrance"`)

	rec, _ = serve(t, svc, http.MethodGet, "/sessions/s-1", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = serve(t, svc, http.MethodGet, "/sessions/gone", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", env.Error.Code)

	rec, _ = serve(t, svc, http.MethodDelete, "/sessions/s-1", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
}

func TestHealth(t *testing.T) {
	svc := &mockService{}
	svc.On("Health").Return(services.Health{Status: "ok", Nodes: 8, Entrance: "front_entrance"})

	rec, env := serve(t, svc, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var data services.Health
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, 8, data.Nodes)
}
