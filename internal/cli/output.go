package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/pterm/pterm"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
		return
	}
	switch v := data.(type) {
	case *models.Player:
		o.printPlayers([]*models.Player{v})
	case []*models.Player:
		o.printPlayers(v)
	case []models.RoundRecord:
		o.printRounds(v)
	case LoginResult:
		fmt.Fprintf(o.w, "Logged in as %s (id %d)\n", v.Player.Username, v.Player.ID)
		if v.Token != "" {
			fmt.Fprintf(o.w, "Session token: %s\n", v.Token)
		}
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		o.printJSON(map[string]string{"message": msg})
		return
	}
	fmt.Fprintln(o.w, msg)
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printPlayers(ps []*models.Player) {
	if len(ps) == 0 {
		fmt.Fprintln(o.w, "No players.")
		return
	}
	data := pterm.TableData{{"ID", "Username", "Name", "Born", "Points", "Admin"}}
	for _, p := range ps {
		data = append(data, []string{
			strconv.Itoa(p.ID),
			p.Username,
			p.FirstName + " " + p.LastName,
			p.DateOfBirth.Format(models.DateLayout),
			strconv.Itoa(p.Points),
			strconv.FormatBool(p.IsAdmin),
		})
	}
	o.renderTable(data)
}

func (o *Output) printRounds(rounds []models.RoundRecord) {
	if len(rounds) == 0 {
		fmt.Fprintln(o.w, "No rounds recorded.")
		return
	}
	data := pterm.TableData{{"Game", "Round", "Bettor", "Wager", "Winners", "Deltas"}}
	for _, r := range rounds {
		data = append(data, []string{
			r.GameID.String(),
			strconv.Itoa(r.RoundIndex),
			strconv.Itoa(r.BettorID),
			strconv.Itoa(r.Wager),
			fmt.Sprint(r.Winners),
			fmt.Sprint(r.Deltas),
		})
	}
	o.renderTable(data)
}

func (o *Output) renderTable(data pterm.TableData) {
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		o.printJSON(data)
		return
	}
	fmt.Fprintln(o.w, s)
}
