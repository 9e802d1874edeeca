package e2e_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/seabattle/internal/api"
	"github.com/mcoot/seabattle/internal/factory"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/testutil"
)

// cliRunner manages CLI binary execution
type cliRunner struct {
	binaryPath string
	serverURL  string
}

func newCLIRunner(t *testing.T, serverURL string) *cliRunner {
	t.Helper()

	// Find project root (where go.mod is)
	projectRoot := findProjectRoot(t)

	// Build the CLI binary
	binaryPath := filepath.Join(t.TempDir(), "seabattle-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/seabattle")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))

	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	return r.runWithInput("", args...)
}

func (r *cliRunner) runWithInput(input string, args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	cmd.Stdin = strings.NewReader(input)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// testServer manages a real HTTP server for e2e tests
type testServer struct {
	addr     string
	wsURL    string
	shutdown func()
}

func startTestServer(t *testing.T) *testServer {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	app, err := factory.New(factory.Config{Logger: logger})
	require.NoError(t, err)

	server := api.NewServer(app.Handler(), api.DefaultServerConfig(), logger)

	// Start server
	go func() {
		if err := server.Serve(listener); err != nil {
			t.Logf("server error: %v", err)
		}
	}()

	// Wait for server to be ready
	serverURL := "http://" + listener.Addr().String()
	waitForServer(t, serverURL+"/api/v1/health")

	return &testServer{
		addr:  serverURL,
		wsURL: "ws://" + listener.Addr().String() + "/ws",
		shutdown: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
			_ = app.Close()
		},
	}
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// wsPlayer is a raw protocol client
type wsPlayer struct {
	t    *testing.T
	conn *websocket.Conn
	id   int
}

func dialPlayer(t *testing.T, wsURL string) *wsPlayer {
	t.Helper()

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &wsPlayer{t: t, conn: conn}
}

func (p *wsPlayer) send(msgType string, payload any) {
	p.t.Helper()

	p.id++
	frame, err := protocol.Encode(msgType, p.id, payload)
	require.NoError(p.t, err)
	require.NoError(p.t, p.conn.WriteMessage(websocket.TextMessage, frame))
}

// next reads until a message of the given type arrives and decodes its data
func (p *wsPlayer) next(msgType string, v any) {
	p.t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for {
		require.NoError(p.t, p.conn.SetReadDeadline(deadline))
		_, raw, err := p.conn.ReadMessage()
		require.NoError(p.t, err, "waiting for %s", msgType)

		var env protocol.Envelope
		require.NoError(p.t, json.Unmarshal(raw, &env))
		if env.Type == protocol.TypeError {
			p.t.Fatalf("server error while waiting for %s: %s", msgType, env.Data)
		}
		if env.Type != msgType {
			continue
		}
		if v != nil {
			require.NoError(p.t, json.Unmarshal([]byte(env.Data), v))
		}
		return
	}
}

func (p *wsPlayer) register(name string) {
	p.t.Helper()

	p.send(protocol.TypeRegister, map[string]string{"name": name, "password": name + "-pw"})
	var reg protocol.RegPayload
	p.next(protocol.TypeRegister, &reg)
	require.False(p.t, reg.Error, reg.ErrorText)
}

func standardShips() []protocol.ShipPayload {
	fleet := testutil.StandardFleet()
	ships := make([]protocol.ShipPayload, len(fleet))
	for i, s := range fleet {
		ships[i] = protocol.ShipPayload{
			Position:  s.Position,
			Direction: s.Direction,
			Length:    s.Length,
			Type:      string(s.Type),
		}
	}
	return ships
}

// Tests

func TestWebSocket_FullGame(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	alice := dialPlayer(t, ts.wsURL)
	bob := dialPlayer(t, ts.wsURL)
	alice.register("alice")
	bob.register("bob")

	// Open a room and seat both players
	alice.send(protocol.TypeCreateRoom, nil)
	var rooms []protocol.RoomPayload
	for len(rooms) == 0 {
		alice.next(protocol.TypeUpdateRoom, &rooms)
	}
	roomID := rooms[0].RoomID

	// Alice must be seated before bob joins so she holds seat 1
	alice.send(protocol.TypeJoinRoom, map[string]int{"indexRoom": roomID})
	for len(rooms) == 0 || len(rooms[0].RoomUsers) == 0 {
		alice.next(protocol.TypeUpdateRoom, &rooms)
	}
	require.Equal(t, "alice", rooms[0].RoomUsers[0].Name)
	bob.send(protocol.TypeJoinRoom, map[string]int{"indexRoom": roomID})

	var aliceGame, bobGame protocol.CreateGamePayload
	alice.next(protocol.TypeCreateGame, &aliceGame)
	bob.next(protocol.TypeCreateGame, &bobGame)
	require.Equal(t, aliceGame.IDGame, bobGame.IDGame)
	assert.Equal(t, 1, aliceGame.IDPlayer)
	assert.Equal(t, 2, bobGame.IDPlayer)

	// Both fleets in starts the game
	for _, p := range []struct {
		player *wsPlayer
		seat   int
	}{{alice, aliceGame.IDPlayer}, {bob, bobGame.IDPlayer}} {
		p.player.send(protocol.TypeAddShips, map[string]any{
			"gameId":      aliceGame.IDGame,
			"ships":       standardShips(),
			"indexPlayer": p.seat,
		})
	}

	var started protocol.StartGamePayload
	alice.next(protocol.TypeStartGame, &started)
	assert.Len(t, started.Ships, 5)
	assert.Equal(t, 1, started.CurrentPlayerIndex)

	// Alice sinks every ship; each hit keeps her turn
	cells := testutil.StandardFleetCells()
	for i, cell := range cells {
		alice.send(protocol.TypeAttack, map[string]any{
			"gameId":      aliceGame.IDGame,
			"x":           cell.X,
			"y":           cell.Y,
			"indexPlayer": aliceGame.IDPlayer,
		})
		var attack protocol.AttackPayload
		alice.next(protocol.TypeAttack, &attack)
		assert.Equal(t, cell, attack.Position)
		assert.NotEqual(t, "miss", attack.Status)
		if i < len(cells)-1 {
			var turn protocol.TurnPayload
			alice.next(protocol.TypeTurn, &turn)
			assert.Equal(t, 1, turn.CurrentPlayer)
		}
	}

	var finish protocol.FinishPayload
	bob.next(protocol.TypeFinish, &finish)
	assert.Equal(t, 1, finish.WinPlayer)

	var winners []protocol.WinnerPayload
	bob.next(protocol.TypeUpdateWinners, &winners)
	require.Len(t, winners, 2)
	assert.Equal(t, protocol.WinnerPayload{Name: "alice", Wins: 1}, winners[0])
	assert.Equal(t, protocol.WinnerPayload{Name: "bob", Wins: 0}, winners[1])

	// The leaderboard is also served over the JSON API
	resp, err := http.Get(ts.addr + "/api/v1/winners")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"name":"alice"`)
}

func TestCLI_HealthCheck(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestCLI_RoomsAndWinners(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.run("winners")
	require.NoError(t, err, "output: %s", output)
	var standings []map[string]any
	require.NoError(t, json.Unmarshal([]byte(output), &standings))
	assert.Empty(t, standings)

	// A registered connection opens a room
	alice := dialPlayer(t, ts.wsURL)
	alice.register("alice")
	alice.send(protocol.TypeCreateRoom, nil)
	var rooms []protocol.RoomPayload
	for len(rooms) == 0 {
		alice.next(protocol.TypeUpdateRoom, &rooms)
	}

	output, err = cli.run("rooms")
	require.NoError(t, err, "output: %s", output)
	var listed []struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, rooms[0].RoomID, listed[0].ID)

	output, err = cli.run("rooms", "get", "9999")
	assert.Error(t, err)
	assert.Contains(t, output, "RoomNotFound")
}

func TestCLI_PlaySolo(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	script := strings.Join([]string{"solo", "ships", "wait start_game", "quit"}, "\n") + "\n"
	output, err := cli.runWithInput(script, "play", "--name", "carol", "--password", "pw")
	require.NoError(t, err, "output: %s", output)

	// Every received event is printed as a JSON object
	dec := json.NewDecoder(strings.NewReader(output))
	var types []string
	for {
		var event struct {
			Type string `json:"type"`
		}
		if err := dec.Decode(&event); err != nil {
			break
		}
		types = append(types, event.Type)
	}
	assert.Contains(t, types, protocol.TypeRegister)
	assert.Contains(t, types, protocol.TypeCreateGame)
	assert.Contains(t, types, protocol.TypeStartGame)
}

func TestCLI_PlayRequiresCredentials(t *testing.T) {
	ts := startTestServer(t)
	defer ts.shutdown()

	cli := newCLIRunner(t, ts.addr)

	output, err := cli.runWithInput("quit\n", "play")
	assert.Error(t, err)
	assert.Contains(t, output, "--name and --password are required")
}
