package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/seabattle/internal/dependencies/random"
	"github.com/mcoot/seabattle/internal/protocol"
	"github.com/mcoot/seabattle/internal/services/bot"
)

// ErrSessionClosed is returned once the server connection has gone away
var ErrSessionClosed = errors.New("connection closed")

// Session is an interactive game connection
type Session struct {
	conn    *websocket.Conn
	out     *Output
	timeout time.Duration

	writeMu sync.Mutex
	nextID  int

	mu      sync.Mutex
	outMu   sync.Mutex
	gameID  string
	seat    int
	pending map[string][]protocol.Envelope
	changed chan struct{}

	done chan struct{}
}

// NewSession starts reading server messages from conn
func NewSession(conn *websocket.Conn, out *Output, timeout time.Duration) *Session {
	s := &Session{
		conn:    conn,
		out:     out,
		timeout: timeout,
		pending: make(map[string][]protocol.Envelope),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// Close closes the connection and waits for the reader to stop
func (s *Session) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	s.writeMu.Unlock()
	err := s.conn.Close()
	<-s.done
	return err
}

// Register logs in, creating the player on first use
func (s *Session) Register(name, password string) error {
	if err := s.send(protocol.TypeRegister, struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}{name, password}); err != nil {
		return err
	}

	env, err := s.await(protocol.TypeRegister)
	if err != nil {
		return err
	}
	var reg protocol.RegPayload
	if err := json.Unmarshal([]byte(env.Data), &reg); err != nil {
		return fmt.Errorf("invalid reg reply: %w", err)
	}
	if reg.Error {
		return fmt.Errorf("registration failed: %s", reg.ErrorText)
	}
	return nil
}

// Run executes commands read line by line from in until quit or EOF
func (s *Session) Run(in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := s.Exec(fields[0], fields[1:]); err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return err
			}
			s.print(func() { s.out.PrintError(err) })
		}
	}
	return scanner.Err()
}

// Exec runs a single play command
func (s *Session) Exec(name string, args []string) error {
	switch name {
	case "help":
		s.print(func() { s.out.PrintMessage(playHelp) })
		return nil
	case "create":
		return s.send(protocol.TypeCreateRoom, nil)
	case "join":
		if len(args) != 1 {
			return errors.New("usage: join <room>")
		}
		roomID, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid room id: %s", args[0])
		}
		return s.send(protocol.TypeJoinRoom, struct {
			IndexRoom int `json:"indexRoom"`
		}{roomID})
	case "solo":
		return s.send(protocol.TypeSinglePlay, nil)
	case "ships":
		return s.placeShips()
	case "attack":
		if len(args) != 2 {
			return errors.New("usage: attack <x> <y>")
		}
		x, errX := strconv.Atoi(args[0])
		y, errY := strconv.Atoi(args[1])
		if errX != nil || errY != nil {
			return errors.New("coordinates must be integers")
		}
		gameID, seat := s.current()
		return s.send(protocol.TypeAttack, struct {
			GameID      string `json:"gameId"`
			X           int    `json:"x"`
			Y           int    `json:"y"`
			IndexPlayer int    `json:"indexPlayer"`
		}{gameID, x, y, seat})
	case "random":
		gameID, seat := s.current()
		return s.send(protocol.TypeRandomAttack, struct {
			GameID      string `json:"gameId"`
			IndexPlayer int    `json:"indexPlayer"`
		}{gameID, seat})
	case "wait":
		if len(args) != 1 {
			return errors.New("usage: wait <message type>")
		}
		_, err := s.await(args[0])
		return err
	default:
		return fmt.Errorf("unknown command %q, try help", name)
	}
}

// placeShips submits a random fleet, waiting for a game if none is known yet
func (s *Session) placeShips() error {
	if gameID, _ := s.current(); gameID == "" {
		if _, err := s.await(protocol.TypeCreateGame); err != nil {
			return err
		}
	}

	fleet := bot.NewRandomStrategy(random.New()).PlaceFleet()
	ships := make([]protocol.ShipPayload, len(fleet))
	for i, ship := range fleet {
		ships[i] = protocol.ShipPayload{
			Position:  ship.Position,
			Direction: ship.Direction,
			Length:    ship.Length,
			Type:      string(ship.Type),
		}
	}

	gameID, seat := s.current()
	return s.send(protocol.TypeAddShips, struct {
		GameID      string                 `json:"gameId"`
		Ships       []protocol.ShipPayload `json:"ships"`
		IndexPlayer int                    `json:"indexPlayer"`
	}{gameID, ships, seat})
}

func (s *Session) current() (string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gameID, s.seat
}

func (s *Session) send(msgType string, payload any) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}

	s.nextID++
	frame, err := protocol.Encode(msgType, s.nextID, payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", msgType, err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", msgType, err)
	}
	return nil
}

// await consumes the oldest unclaimed message of the given type
func (s *Session) await(msgType string) (protocol.Envelope, error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		s.mu.Lock()
		if queue := s.pending[msgType]; len(queue) > 0 {
			env := queue[0]
			s.pending[msgType] = queue[1:]
			s.mu.Unlock()
			return env, nil
		}
		changed := s.changed
		s.mu.Unlock()

		select {
		case <-changed:
		case <-s.done:
			return protocol.Envelope{}, ErrSessionClosed
		case <-timer.C:
			return protocol.Envelope{}, fmt.Errorf("timed out waiting for %s", msgType)
		}
	}
}

func (s *Session) readLoop() {
	defer close(s.done)

	for {
		_, raw, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var env protocol.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			continue
		}
		s.track(env)

		data := json.RawMessage(env.Data)
		if !json.Valid(data) {
			data = json.RawMessage("null")
		}
		s.print(func() { s.out.Print(GameEvent{Type: env.Type, ID: env.ID, Data: data}) })
	}
}

// track records game identity and queues the message for await
func (s *Session) track(env protocol.Envelope) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch env.Type {
	case protocol.TypeCreateGame:
		var created protocol.CreateGamePayload
		if err := json.Unmarshal([]byte(env.Data), &created); err == nil {
			s.gameID = created.IDGame
			s.seat = created.IDPlayer
		}
	case protocol.TypeFinish:
		s.gameID = ""
		s.seat = 0
	}

	s.pending[env.Type] = append(s.pending[env.Type], env)
	close(s.changed)
	s.changed = make(chan struct{})
}

func (s *Session) print(fn func()) {
	s.outMu.Lock()
	defer s.outMu.Unlock()
	fn()
}

const playHelp = `Commands:
  create            open a new room
  join <room>       join a room; the game starts when it is full
  solo              play against the bot
  ships             place a random fleet in the current game
  attack <x> <y>    fire at a cell
  random            fire at a random untried cell
  wait <type>       block until a message of that type arrives
  quit              disconnect`
