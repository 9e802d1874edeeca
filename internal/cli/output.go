package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	if w == nil {
		w = os.Stdout
	}
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(os.Stderr, string(data))
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case HealthResult:
		o.printHealthResult(v)
	case Leaderboard:
		o.printLeaderboard(v)
	case RoomList:
		o.printRoomList(v)
	case Room:
		o.printRoom(v)
	case GameEvent:
		o.printGameEvent(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// HealthResult response type
type HealthResult struct {
	Status        string `json:"status"`
	Connections   int    `json:"connections"`
	OnlinePlayers int    `json:"online_players"`
	Rooms         int    `json:"rooms"`
	Games         int    `json:"games"`
}

// Standing response type
type Standing struct {
	Rank int    `json:"rank"`
	Name string `json:"name"`
	Wins int    `json:"wins"`
}

// Leaderboard is a ranked list of standings
type Leaderboard []Standing

// RoomUser response type
type RoomUser struct {
	Name  string `json:"name"`
	Index int    `json:"index"`
}

// Room response type
type Room struct {
	ID    int        `json:"id"`
	Users []RoomUser `json:"users"`
}

// RoomList is the set of rooms waiting for players
type RoomList []Room

// GameEvent is a server message received during play
type GameEvent struct {
	Type string          `json:"type"`
	ID   int             `json:"id"`
	Data json.RawMessage `json:"data"`
}

func (o *Output) printHealthResult(h HealthResult) {
	_, _ = fmt.Fprintf(o.w, "Status: %s\n", h.Status)
	_, _ = fmt.Fprintf(o.w, "Connections: %d\n", h.Connections)
	_, _ = fmt.Fprintf(o.w, "Online players: %d\n", h.OnlinePlayers)
	_, _ = fmt.Fprintf(o.w, "Rooms: %d\n", h.Rooms)
	_, _ = fmt.Fprintf(o.w, "Games: %d\n", h.Games)
}

func (o *Output) printLeaderboard(l Leaderboard) {
	if len(l) == 0 {
		_, _ = fmt.Fprintln(o.w, "No winners yet")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "RANK\tNAME\tWINS")
	for _, s := range l {
		_, _ = fmt.Fprintf(tw, "%d\t%s\t%d\n", s.Rank, s.Name, s.Wins)
	}
	_ = tw.Flush()
}

func (o *Output) printRoomList(rooms RoomList) {
	if len(rooms) == 0 {
		_, _ = fmt.Fprintln(o.w, "No open rooms")
		return
	}
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "ROOM\tPLAYERS")
	for _, r := range rooms {
		_, _ = fmt.Fprintf(tw, "%d\t%s\n", r.ID, userNames(r.Users))
	}
	_ = tw.Flush()
}

func (o *Output) printRoom(r Room) {
	_, _ = fmt.Fprintf(o.w, "Room: %d\n", r.ID)
	_, _ = fmt.Fprintf(o.w, "Players (%d):\n", len(r.Users))
	for _, u := range r.Users {
		_, _ = fmt.Fprintf(o.w, "  - %s (#%d)\n", u.Name, u.Index)
	}
}

func (o *Output) printGameEvent(e GameEvent) {
	_, _ = fmt.Fprintf(o.w, "<< %s %s\n", e.Type, string(e.Data))
}

func userNames(users []RoomUser) string {
	if len(users) == 0 {
		return "(empty)"
	}
	names := make([]string, len(users))
	for i, u := range users {
		names[i] = u.Name
	}
	return strings.Join(names, ", ")
}
