package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roackb2/snowdream/internal/app/wiring"
	"github.com/roackb2/snowdream/internal/pkg/agents/roles"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
	"github.com/roackb2/snowdream/internal/pkg/pubsub"
)

type runOptions struct {
	idea      string
	maxRounds int
	analyst   string
	designer  string
	focus     string
}

func newRunCmd(a *app) *cobra.Command {
	opts := runOptions{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start or resume the team in the project directory",
		Long: "Start the team on --idea. When the project holds an interrupted run, the checkpointed " +
			"role resumes first; --idea may then be omitted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.idea, "idea", "i", "", "the requirement that kicks the team off")
	cmd.Flags().IntVar(&opts.maxRounds, "max-rounds", -1, "round cap, zero for none (overrides project.max_rounds)")
	cmd.Flags().StringVar(&opts.analyst, "analyst", "Lily", "analyst role name")
	cmd.Flags().StringVar(&opts.designer, "designer", "Stephen", "designer role name, empty to run without one")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "what the designer reviews the requirements for")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, opts runOptions) error {
	cfg := a.cfg
	store, release, err := wiring.OpenStore(ctx, cfg, cfg.Project.Path)
	if err != nil {
		return err
	}
	defer release()

	gen, err := a.newGenerator(cfg)
	if err != nil {
		return err
	}

	var ps pubsub.PubSub
	if cfg.Kafka.Address != "" {
		ps = wiring.NewPubSub(cfg)
		defer ps.Close()
	}

	personas := []roles.Persona{roles.Analyst(opts.analyst)}
	if opts.designer != "" {
		personas = append(personas, roles.Designer(opts.designer, opts.focus))
	}
	maxRounds := cfg.Project.MaxRounds
	if opts.maxRounds >= 0 {
		maxRounds = opts.maxRounds
	}

	team, err := control_plane.NewTeam(ctx, control_plane.TeamConfig{
		ProjectPath: cfg.Project.Path,
		MaxRounds:   maxRounds,
		Topic:       cfg.Kafka.Topic,
	}, personas, control_plane.TeamDeps{
		Store:     store,
		Generator: gen,
		Prompter:  wiring.NewPrompter(cfg, cmd.InOrStdin(), cmd.OutOrStdout()),
		Renderer:  wiring.NewRenderer(cfg, cfg.Project.Path),
		PubSub:    ps,
	})
	if err != nil {
		return err
	}
	if opts.idea == "" && team.Resumer() == "" {
		return fmt.Errorf("nothing to resume in %s, pass --idea to start", cfg.Project.Path)
	}

	summary, err := team.Run(ctx, opts.idea)
	if err != nil {
		slog.Error("CLI: run failed, rerun to resume", "run_id", summary.RunID, "error", err)
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "run %s stopped (%s) after %d rounds and %d turns\n", summary.RunID, summary.Reason, summary.Rounds, summary.Turns)
	return nil
}
