package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	relflow "github.com/albertocavalcante/go-relflow"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/state"
)

// stepFunc runs one workflow step against a loaded reactor.
type stepFunc func(f *relflow.Flow, r *project.Reactor, st *state.State) (*relflow.Step, error)

// run executes a step for real and persists the state when the step
// changes it.
func (a *app) run(cmd *cobra.Command, name string, persist bool, step stepFunc) error {
	f, r, err := a.open(false)
	if err != nil {
		return err
	}
	st, err := a.readState()
	if err != nil {
		return err
	}
	s, err := step(f, r, st)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if persist {
		if err := a.writeState(st); err != nil {
			return err
		}
	}
	printStep(cmd.OutOrStdout(), name, s)
	return nil
}

func printStep(w io.Writer, name string, s *relflow.Step) {
	fmt.Fprintf(w, "%s: %s\n", name, s.Label)
	for _, rep := range s.Reports {
		if rep.Modified {
			fmt.Fprintf(w, "  updated %s\n", rep.Module)
		}
	}
	if !s.Modified() {
		fmt.Fprintln(w, "  no descriptor changed")
	}
}

func (a *app) releaseStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release-start",
		Short: "Move snapshot versions to the release branch snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "release-start", false, releaseStart)
		},
	}
}

func (a *app) releaseFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "release-finish [label]",
		Short: "Move the release branch snapshot to release versions",
		Long: `Move the release branch snapshot to release versions and record them as the
last released versions. The label defaults to the root module's version
without the branch snapshot suffix.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "release-finish", true, releaseFinish(firstArg(args)))
		},
	}
}

func (a *app) hotfixStartCmd() *cobra.Command {
	var developPath string
	cmd := &cobra.Command{
		Use:   "hotfix-start",
		Short: "Move release versions to the next hotfix snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "hotfix-start", true, hotfixStart(developPath))
		},
	}
	cmd.Flags().StringVar(&developPath, "develop", "", "checkout of the development branch whose versions are restored after the hotfix")
	return cmd
}

func (a *app) hotfixFinishCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hotfix-finish [label]",
		Short: "Move the hotfix snapshot to the hotfix release",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, "hotfix-finish", true, hotfixFinish(firstArg(args)))
		},
	}
}

func (a *app) developCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "develop",
		Short: "Move modules to their next development version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "develop", false, develop)
		},
	}
}

func (a *app) restoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the versions recorded before the last hotfix",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, "restore", true, restore)
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "check {snapshot|release}",
		Short:     "Check that the project has a snapshot or only release versions",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"snapshot", "release"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, r, err := a.open(true)
			if err != nil {
				return err
			}
			if args[0] == "snapshot" {
				err = f.CheckForSnapshot(r)
			} else {
				err = f.CheckForRelease(r)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s check passed for %d modules\n", args[0], r.Len())
			return nil
		},
	}
}

func releaseStart(f *relflow.Flow, r *project.Reactor, _ *state.State) (*relflow.Step, error) {
	return f.ReleaseStart(r)
}

func releaseFinish(label string) stepFunc {
	return func(f *relflow.Flow, r *project.Reactor, st *state.State) (*relflow.Step, error) {
		return f.ReleaseFinish(r, label, st)
	}
}

func hotfixStart(developPath string) stepFunc {
	return func(f *relflow.Flow, r *project.Reactor, st *state.State) (*relflow.Step, error) {
		if developPath != "" {
			dev, err := project.Load(developPath)
			if err != nil {
				return nil, fmt.Errorf("failed to load development project: %w", err)
			}
			f.RecordPreHotfix(dev, st)
		}
		return f.HotfixStart(r, st)
	}
}

func hotfixFinish(label string) stepFunc {
	return func(f *relflow.Flow, r *project.Reactor, st *state.State) (*relflow.Step, error) {
		return f.HotfixFinish(r, label, st)
	}
}

func develop(f *relflow.Flow, r *project.Reactor, _ *state.State) (*relflow.Step, error) {
	return f.Develop(r)
}

func restore(f *relflow.Flow, r *project.Reactor, st *state.State) (*relflow.Step, error) {
	return f.Restore(r, st)
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
