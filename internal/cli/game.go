package cli

import (
	"encoding/json"
	"fmt"

	"github.com/jason-s-yu/topcard/internal/auth"
	"github.com/jason-s-yu/topcard/internal/deck"
	"github.com/jason-s-yu/topcard/internal/display"
	"github.com/jason-s-yu/topcard/internal/game"
	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	var (
		usernames []string
		bet       int
		rounds    int
		rulesJSON string
		noSave    bool
		logOnly   bool
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Deal and settle betting rounds between registered players",
		Long: `Seats the named players in order (the first is the bettor), deals a hand
to each, settles the wager and shows the winners. Balances are saved afterwards
unless --no-save is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(usernames) == 0 {
				return fmt.Errorf("--players is required")
			}
			if rounds < 1 {
				return fmt.Errorf("%w: --rounds must be at least 1", models.ErrValidation)
			}
			ctx := commandContext(cmd)

			var rules game.TableRules
			if rulesJSON != "" {
				var m map[string]interface{}
				if err := json.Unmarshal([]byte(rulesJSON), &m); err != nil {
					return fmt.Errorf("%w: --rules must be a JSON object: %w", models.ErrValidation, err)
				}
				var err error
				if rules, err = game.ParseRules(m, rules); err != nil {
					return fmt.Errorf("%w: %w", models.ErrValidation, err)
				}
			}

			roster := make([]*models.Player, 0, len(usernames))
			for _, name := range usernames {
				p, ok, err := application.Players.GetByUsername(ctx, name)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s", models.ErrPlayerNotFound, name)
				}
				roster = append(roster, p)
			}

			var presenter game.Presenter = display.NewTerminal(cmd.OutOrStdout())
			if logOnly {
				presenter = display.NewLog(application.Logger)
			}

			e := application.NewEngine(roster, presenter, rules)
			for range rounds {
				e.StartGame()
				e.ShowHands()
				if _, err := e.ExecuteBettingRound(ctx, bet); err != nil {
					return err
				}
				e.DisplayWinners(e.DetermineWinner())
			}

			if !noSave {
				if err := e.UpdateProfiles(ctx); err != nil {
					return err
				}
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).Print(e.Players())
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&usernames, "players", nil, "Comma-separated usernames, bettor first (required)")
	cmd.Flags().IntVar(&bet, "bet", 10, "Points wagered by the bettor each round")
	cmd.Flags().IntVar(&rounds, "rounds", 1, "Number of rounds to play")
	cmd.Flags().StringVar(&rulesJSON, "rules", "", `Table rules as JSON, e.g. {"handSize":5,"maxBet":100}`)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Do not persist balances")
	cmd.Flags().BoolVar(&logOnly, "log-display", false, "Report hands through the logger instead of drawing them")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently settled rounds",
		RunE: func(cmd *cobra.Command, args []string) error {
			if application.History == nil {
				return fmt.Errorf("round history requires REDIS_ADDR")
			}
			ctx := commandContext(cmd)
			rounds, err := application.History.RecentRounds(ctx, n)
			if err != nil {
				return err
			}
			out := NewOutput(cmd.OutOrStdout(), opts.Output)
			out.Print(rounds)
			if opts.Output != "json" && len(rounds) > 0 {
				total, err := application.History.Len(ctx)
				if err != nil {
					return err
				}
				out.PrintMessage(fmt.Sprintf("Showing %d of %d recorded rounds.", len(rounds), total))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 10, "Number of rounds")
	return cmd
}

func newDeckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Deck utilities",
	}
	cmd.AddCommand(newDeckDrawCmd())
	return cmd
}

func newDeckDrawCmd() *cobra.Command {
	var n int

	cmd := &cobra.Command{
		Use:         "draw",
		Short:       "Shuffle a fresh deck and draw cards from it",
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if n < 0 || n > deck.Size {
				return fmt.Errorf("%w: can draw between 0 and %d cards", models.ErrValidation, deck.Size)
			}
			svc := deck.NewService(nil, nil)
			svc.CreateShuffledDeck()

			cards := make([]models.Card, 0, n)
			for range n {
				c, ok := svc.DrawCard()
				if !ok {
					break
				}
				cards = append(cards, c)
			}

			out := NewOutput(cmd.OutOrStdout(), opts.Output)
			result := map[string]any{
				"cards":     cards,
				"value":     svc.HandValue(cards),
				"remaining": svc.RemainingCount(),
			}
			if opts.Output == "json" {
				out.Print(result)
				return nil
			}
			for _, c := range cards {
				out.PrintMessage(c.String())
			}
			out.PrintMessage(fmt.Sprintf("Value: %d, %d cards left", result["value"], result["remaining"]))
			return nil
		},
	}

	cmd.Flags().IntVarP(&n, "count", "n", 3, "Number of cards to draw")
	return cmd
}

func newKeygenCmd() *cobra.Command {
	var privatePath, publicPath string

	cmd := &cobra.Command{
		Use:         "keygen",
		Short:       "Write a session signing key pair",
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.WriteKeyPair(privatePath, publicPath); err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).PrintMessage(
				fmt.Sprintf("Wrote %s and %s. Set TOPCARD_JWT_PRIVATE_KEY and TOPCARD_JWT_PUBLIC_KEY to use them.", privatePath, publicPath))
			return nil
		},
	}

	cmd.Flags().StringVar(&privatePath, "private", "jwt_ed25519.key", "Private key path")
	cmd.Flags().StringVar(&publicPath, "public", "jwt_ed25519.pub", "Public key path")
	return cmd
}
