// Package display renders table state for a human: hands after a deal and the
// winners of a round.
package display

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jason-s-yu/topcard/internal/logging"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
)

// Terminal draws hands and winners as pterm boxes.
type Terminal struct {
	out io.Writer
}

// NewTerminal writes to out, or stdout when out is nil.
func NewTerminal(out io.Writer) *Terminal {
	if out == nil {
		out = os.Stdout
	}
	return &Terminal{out: out}
}

// ShowHands renders one box per player, side by side in roster order.
func (t *Terminal) ShowHands(players []*models.Player) {
	if len(players) == 0 {
		fmt.Fprintln(t.out, "no players at the table")
		return
	}

	var panels []pterm.Panel
	for _, p := range players {
		pbox := pterm.DefaultBox.WithHorizontalPadding(2).WithTopPadding(1).WithBottomPadding(1)
		body := fmt.Sprintf("%s\nValue: %d\nPoints: %d", handString(p.Hand().Cards()), p.HandValue(), p.Points)
		panels = append(panels, pterm.Panel{Data: pbox.WithTitle(p.Username).WithTitleTopLeft().Sprint(body)})
	}

	out, err := pterm.DefaultPanel.WithPanels([][]pterm.Panel{panels}).Srender()
	if err != nil {
		// fall back to plain lines
		for _, p := range players {
			fmt.Fprintf(t.out, "%s: %s (value %d)\n", p.Username, handString(p.Hand().Cards()), p.HandValue())
		}
		return
	}
	fmt.Fprintln(t.out, out)
}

// DisplayWinners renders a showdown box naming every winner.
func (t *Terminal) DisplayWinners(winners []*models.Player) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	var b strings.Builder
	if len(winners) == 0 {
		b.WriteString("No winner")
	}
	for _, w := range winners {
		b.WriteString(pterm.Sprintfln("%s wins with %d (%s)", pterm.LightCyan(w.Username), w.HandValue(), handString(w.Hand().Cards())))
	}
	fmt.Fprintln(t.out, pbox.WithTitle(pterm.LightGreen("|SHOWDOWN|")).WithTitleTopCenter().Sprint(strings.TrimRight(b.String(), "\n")))
}

func handString(cards []models.Card) string {
	if len(cards) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = cardString(c)
	}
	return strings.Join(parts, " - ")
}

func cardString(c models.Card) string {
	var suit string
	switch c.Suit {
	case models.Clubs:
		suit = pterm.Black("♣")
	case models.Diamonds:
		suit = pterm.LightRed("♦")
	case models.Hearts:
		suit = pterm.LightRed("♥")
	case models.Spades:
		suit = pterm.Black("♠")
	}
	return c.Rank.String() + suit
}

// Log reports hands and winners as structured log entries instead of drawing
// them.
type Log struct {
	logger *logrus.Logger
}

func NewLog(logger *logrus.Logger) *Log {
	return &Log{logger: logging.OrDiscard(logger)}
}

func (l *Log) ShowHands(players []*models.Player) {
	for _, p := range players {
		l.logger.WithFields(logrus.Fields{
			"player": p.Username,
			"cards":  p.Hand().Cards(),
			"value":  p.HandValue(),
		}).Info("hand")
	}
}

func (l *Log) DisplayWinners(winners []*models.Player) {
	names := make([]string, len(winners))
	for i, w := range winners {
		names[i] = w.Username
	}
	l.logger.WithField("winners", names).Info("round won")
}
