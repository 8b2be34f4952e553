package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/roackb2/snowdream/internal/app/wiring"
	"github.com/roackb2/snowdream/internal/pkg/control_plane"
)

func newStateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Print the checkpoint and the roles with persisted memory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, release, err := a.view(cmd)
			if err != nil {
				return err
			}
			defer release()
			cp, err := view.Checkpoint(cmd.Context())
			if err != nil {
				return err
			}
			entries, err := view.Roles()
			if err != nil {
				return err
			}
			return printJSON(cmd, map[string]any{"checkpoint": cp, "roles": entries})
		},
	}
}

func newMemoryCmd(a *app) *cobra.Command {
	var role string
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Print the persisted memory of one role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			view, release, err := a.view(cmd)
			if err != nil {
				return err
			}
			defer release()
			msgs, err := view.Memory(role)
			if err != nil {
				return err
			}
			return printJSON(cmd, msgs)
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "", "role name")
	_ = cmd.MarkFlagRequired("role")
	return cmd
}

func (a *app) view(cmd *cobra.Command) (*control_plane.ProjectView, func(), error) {
	store, release, err := wiring.OpenStore(cmd.Context(), a.cfg, a.cfg.Project.Path)
	if err != nil {
		return nil, nil, err
	}
	return control_plane.NewProjectView(a.cfg.Project.Path, store, nil), release, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
