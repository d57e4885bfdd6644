package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/albertocavalcante/go-relflow/graph"
)

func (a *app) planCmd() *cobra.Command {
	var format, label, developPath string
	cmd := &cobra.Command{
		Use:   "plan <step>",
		Short: "Show the version changes of a step without writing anything",
		Long: `Run a step in dry-run mode and print the module tree with every version
transition. Neither descriptors nor the state file are written.

Steps: release-start, release-finish, hotfix-start, hotfix-finish, develop, restore.`,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"release-start", "release-finish", "hotfix-start", "hotfix-finish", "develop", "restore"},
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := map[string]stepFunc{
				"release-start":  releaseStart,
				"release-finish": releaseFinish(label),
				"hotfix-start":   hotfixStart(developPath),
				"hotfix-finish":  hotfixFinish(label),
				"develop":        develop,
				"restore":        restore,
			}

			f, r, err := a.open(true)
			if err != nil {
				return err
			}
			st, err := a.readState()
			if err != nil {
				return err
			}

			g := graph.Build(r)
			s, err := steps[args[0]](f, r, st)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			g.SetTargets(s.Versions)

			out := cmd.OutOrStdout()
			switch format {
			case "text":
				fmt.Fprint(out, g.ToText("Plan for "+args[0]+" "+s.Label))
			case "json":
				data, err := g.ToJSON()
				if err != nil {
					return err
				}
				fmt.Fprintln(out, string(data))
			case "dot":
				fmt.Fprint(out, g.ToDOT())
			default:
				return fmt.Errorf("unknown format %q (want text, json or dot)", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or dot")
	cmd.Flags().StringVar(&label, "label", "", "label for the finish steps")
	cmd.Flags().StringVar(&developPath, "develop", "", "development branch checkout for hotfix-start")
	return cmd
}
