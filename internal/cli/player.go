package cli

import (
	"fmt"
	"strconv"

	"github.com/jason-s-yu/topcard/internal/models"
	"github.com/spf13/cobra"
)

// LoginResult is printed by "player login".
type LoginResult struct {
	Player *models.Player `json:"player"`
	Token  string         `json:"token,omitempty"`
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "player",
		Short: "Player directory commands",
	}

	cmd.AddCommand(newPlayerAddCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerListCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerUpdateCmd())
	cmd.AddCommand(newPlayerPointsCmd())
	cmd.AddCommand(newPlayerAdminCmd())
	cmd.AddCommand(newPlayerLoginCmd())
	cmd.AddCommand(newPlayerWhoamiCmd())
	cmd.AddCommand(newPlayerResetCmd())

	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: player id must be a positive integer, got %q", models.ErrValidation, s)
	}
	return id, nil
}

func newPlayerAddCmd() *cobra.Command {
	var username, password, first, last, dob string
	var admin bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a new player",
		RunE: func(cmd *cobra.Command, args []string) error {
			born, err := models.ParseDateOfBirth(dob)
			if err != nil {
				return err
			}
			p := models.NewPlayer(username, password, first, last, born)

			svc := application.Players
			if !svc.IsEligible(p) {
				return fmt.Errorf("%w: players must be at least %d years old", models.ErrValidation, models.EligibleAge)
			}
			ctx := commandContext(cmd)
			if err := svc.AddPlayer(ctx, p); err != nil {
				return err
			}
			if admin {
				if err := svc.MakeAdmin(ctx, p.ID); err != nil {
					return err
				}
				p.IsAdmin = true
			}

			NewOutput(cmd.OutOrStdout(), opts.Output).Print(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	cmd.Flags().StringVar(&first, "first", "", "First name (required)")
	cmd.Flags().StringVar(&last, "last", "", "Last name (required)")
	cmd.Flags().StringVar(&dob, "dob", "", "Date of birth, YYYY-MM-DD (required)")
	cmd.Flags().BoolVar(&admin, "admin", false, "Grant admin rights")
	for _, f := range []string{"username", "password", "first", "last", "dob"} {
		_ = cmd.MarkFlagRequired(f)
	}

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show one player by id or username",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			var (
				p   *models.Player
				ok  bool
				err error
			)
			switch {
			case len(args) == 1:
				id, perr := parseID(args[0])
				if perr != nil {
					return perr
				}
				p, ok, err = application.Players.GetByID(ctx, id)
			case username != "":
				p, ok, err = application.Players.GetByUsername(ctx, username)
			default:
				return fmt.Errorf("an id argument or --username is required")
			}
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrPlayerNotFound
			}

			NewOutput(cmd.OutOrStdout(), opts.Output).Print(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Look up by username")
	return cmd
}

func newPlayerListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every player",
		RunE: func(cmd *cobra.Command, args []string) error {
			ps, err := application.Players.GetAllPlayers(commandContext(cmd))
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).Print(ps)
			return nil
		},
	}
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Delete a player",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := application.Players.RemovePlayer(commandContext(cmd), id); err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).PrintMessage(fmt.Sprintf("Player %d removed.", id))
			return nil
		},
	}
}

func newPlayerUpdateCmd() *cobra.Command {
	var username, password, first, last, dob string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a player's profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)
			svc := application.Players

			p, ok, err := svc.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrPlayerNotFound
			}

			flags := cmd.Flags()
			if flags.Changed("first") {
				p.FirstName = first
			}
			if flags.Changed("last") {
				p.LastName = last
			}
			if flags.Changed("dob") {
				born, err := models.ParseDateOfBirth(dob)
				if err != nil {
					return err
				}
				p.DateOfBirth = born
			}

			if flags.Changed("username") || flags.Changed("password") {
				if flags.Changed("username") {
					p.Username = username
				}
				if flags.Changed("password") {
					p.Credential = password
				}
				err = svc.UpdateProfile(ctx, p)
			} else {
				err = svc.UpdateProfileFields(ctx, id, p.FirstName, p.LastName, p.DateOfBirth)
			}
			if err != nil {
				return err
			}

			NewOutput(cmd.OutOrStdout(), opts.Output).Print(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "New username")
	cmd.Flags().StringVar(&password, "password", "", "New password")
	cmd.Flags().StringVar(&first, "first", "", "New first name")
	cmd.Flags().StringVar(&last, "last", "", "New last name")
	cmd.Flags().StringVar(&dob, "dob", "", "New date of birth, YYYY-MM-DD")
	return cmd
}

func newPlayerPointsCmd() *cobra.Command {
	var delta int

	cmd := &cobra.Command{
		Use:   "points <id>",
		Short: "Show or adjust a player's points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			var balance int
			if cmd.Flags().Changed("add") {
				balance, err = application.Players.ChangePoints(ctx, id, delta)
			} else {
				balance, err = application.Players.RetrievePoints(ctx, id)
			}
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), opts.Output)
			if opts.Output == "json" {
				out.Print(map[string]int{"id": id, "points": balance})
			} else {
				out.PrintMessage(fmt.Sprintf("Player %d has %d points.", id, balance))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&delta, "add", 0, "Points to add (negative to deduct)")
	return cmd
}

func newPlayerAdminCmd() *cobra.Command {
	var grant bool

	cmd := &cobra.Command{
		Use:   "admin <id>",
		Short: "Check or grant admin rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ctx := commandContext(cmd)

			if grant {
				if err := application.Players.MakeAdmin(ctx, id); err != nil {
					return err
				}
			}
			isAdmin, err := application.Players.IsAdmin(ctx, id)
			if err != nil {
				return err
			}

			out := NewOutput(cmd.OutOrStdout(), opts.Output)
			if opts.Output == "json" {
				out.Print(map[string]any{"id": id, "admin": isAdmin})
			} else {
				out.PrintMessage(fmt.Sprintf("Player %d admin: %t", id, isAdmin))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&grant, "grant", false, "Grant admin rights")
	return cmd
}

func newPlayerLoginCmd() *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Check a username and password and issue a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, token, err := application.Players.Login(commandContext(cmd), username, password)
			if err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).Print(LoginResult{Player: p, Token: token})
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Username (required)")
	cmd.Flags().StringVar(&password, "password", "", "Password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newPlayerWhoamiCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the player a session token belongs to",
		Long: `Validates a session token from "player login". Tokens only verify across
runs when TOPCARD_JWT_PRIVATE_KEY and TOPCARD_JWT_PUBLIC_KEY point at a key
pair created with "topcard keygen".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := application.Players.Authenticate(token)
			if err != nil {
				return err
			}
			p, ok, err := application.Players.GetByID(commandContext(cmd), id)
			if err != nil {
				return err
			}
			if !ok {
				return models.ErrPlayerNotFound
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).Print(p)
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Session token (required)")
	_ = cmd.MarkFlagRequired("token")
	return cmd
}

func newPlayerResetCmd() *cobra.Command {
	var confirm bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every player",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("refusing to delete every player without --yes")
			}
			if err := application.Players.Reset(commandContext(cmd)); err != nil {
				return err
			}
			NewOutput(cmd.OutOrStdout(), opts.Output).PrintMessage("All players deleted.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm deletion")
	return cmd
}
