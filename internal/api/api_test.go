package api_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/seabattle/internal/api/apierr"
	"github.com/mcoot/seabattle/internal/api/response"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/services/room"
)

// testServer wraps the full application handler
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	app := factory.NewTestApp()
	t.Cleanup(func() { _ = app.Close() })

	return &testServer{
		handler: app.Handler(),
		app:     app,
	}
}

func (ts *testServer) request(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

// addWinner creates a player and records wins for them
func (ts *testServer) addWinner(t *testing.T, name string, wins int) {
	t.Helper()

	ctx := context.Background()
	player, _, err := ts.app.AuthService.Authenticate(ctx, name, "pw-"+name)
	require.NoError(t, err)
	for range wins {
		require.NoError(t, ts.app.Leaderboard.RecordWin(ctx, player.ID))
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) apierr.APIError {
	t.Helper()

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)
	ts.app.Registry.CreateRoom()

	rr := ts.request(http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "no-store", rr.Header().Get("Cache-Control"))

	var resp response.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 1, resp.Rooms)
	assert.Equal(t, 0, resp.Games)
	assert.Equal(t, 0, resp.Connections)
}

func TestWinnersEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/winners")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestWinnersRanked(t *testing.T) {
	ts := newTestServer(t)
	ts.addWinner(t, "alice", 1)
	ts.addWinner(t, "bob", 3)
	ts.addWinner(t, "carol", 2)

	rr := ts.request(http.MethodGet, "/api/v1/winners")
	require.Equal(t, http.StatusOK, rr.Code)

	var standings []response.Standing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	require.Len(t, standings, 3)
	assert.Equal(t, response.Standing{Rank: 1, Name: "bob", Wins: 3}, standings[0])
	assert.Equal(t, response.Standing{Rank: 2, Name: "carol", Wins: 2}, standings[1])
	assert.Equal(t, response.Standing{Rank: 3, Name: "alice", Wins: 1}, standings[2])
}

func TestWinnersLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.addWinner(t, "alice", 1)
	ts.addWinner(t, "bob", 2)

	rr := ts.request(http.MethodGet, "/api/v1/winners?limit=1")
	require.Equal(t, http.StatusOK, rr.Code)

	var standings []response.Standing
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &standings))
	require.Len(t, standings, 1)
	assert.Equal(t, "bob", standings[0].Name)
}

func TestWinnersInvalidLimit(t *testing.T) {
	ts := newTestServer(t)

	for _, limit := range []string{"0", "-1", "abc", "101"} {
		rr := ts.request(http.MethodGet, "/api/v1/winners?limit="+limit)
		assert.Equal(t, http.StatusBadRequest, rr.Code, limit)
		assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code, limit)
	}
}

func TestListRooms(t *testing.T) {
	ts := newTestServer(t)
	first := ts.app.Registry.CreateRoom()
	second := ts.app.Registry.CreateRoom()
	_, err := ts.app.Registry.JoinRoom(second.ID, room.Occupant{PlayerID: 1, Name: "alice"}, nil)
	require.NoError(t, err)

	rr := ts.request(http.MethodGet, "/api/v1/rooms")
	require.Equal(t, http.StatusOK, rr.Code)

	var rooms []response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rooms))
	require.Len(t, rooms, 2)
	assert.Equal(t, int(first.ID), rooms[0].ID)
	assert.Empty(t, rooms[0].Users)
	assert.Equal(t, int(second.ID), rooms[1].ID)
	assert.Equal(t, []response.RoomUser{{Name: "alice", Index: 1}}, rooms[1].Users)
}

func TestGetRoom(t *testing.T) {
	ts := newTestServer(t)
	created := ts.app.Registry.CreateRoom()

	rr := ts.request(http.MethodGet, fmt.Sprintf("/api/v1/rooms/%d", created.ID))
	require.Equal(t, http.StatusOK, rr.Code)

	var got response.Room
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, int(created.ID), got.ID)
}

func TestGetRoomNotFound(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/42")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "RoomNotFound", decodeError(t, rr).Code)
}

func TestGetRoomInvalidID(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/rooms/abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, decodeError(t, rr).Code)
}

func TestUnknownRoute(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodeNotFound, decodeError(t, rr).Code)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/ws")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
