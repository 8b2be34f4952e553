package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roackb2/snowdream/config"
	"github.com/roackb2/snowdream/internal/app/wiring"
	"github.com/roackb2/snowdream/internal/pkg/agents/providers"
	"github.com/roackb2/snowdream/internal/pkg/logging"
)

var Version = "dev"

type app struct {
	env       string
	configDir string
	project   string

	cfg       config.Configuration
	logCloser io.Closer
	logOutput io.Writer

	newGenerator func(config.Configuration) (providers.Generator, error)
}

func newApp() *app {
	return &app{newGenerator: wiring.NewGenerator, logOutput: os.Stderr}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "snowdream",
		Short:         "Run a resumable analyst and designer team on a project directory.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if a.logCloser != nil {
				return a.logCloser.Close()
			}
			return nil
		},
	}
	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")
	root.PersistentFlags().StringVarP(&a.env, "env", "e", "dev", "config profile, read from <config-dir>/<env>.yaml")
	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "config", "directory holding config profiles")
	root.PersistentFlags().StringVarP(&a.project, "project", "p", "", "project directory (overrides project.path)")

	root.AddCommand(newRunCmd(a), newStateCmd(a), newMemoryCmd(a), newVersionCmd())
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.env, a.configDir)
	if err != nil {
		return err
	}
	if a.project != "" {
		cfg.Project.Path = a.project
	}
	a.cfg = cfg
	a.logCloser = logging.Setup(cfg.Log, a.logOutput)
	slog.Debug("CLI: configured", "env", a.env, "project", cfg.Project.Path, "backend", cfg.Checkpoint.Backend)
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
