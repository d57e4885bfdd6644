package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	relflow "github.com/albertocavalcante/go-relflow"
	"github.com/albertocavalcante/go-relflow/config"
	"github.com/albertocavalcante/go-relflow/project"
	"github.com/albertocavalcante/go-relflow/rewrite"
	"github.com/albertocavalcante/go-relflow/state"
	"github.com/albertocavalcante/go-relflow/versionmap"
)

// app carries the settings shared by all subcommands of one invocation.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        config.Config
	logger     *slog.Logger
}

// boundFlags are the persistent flags mirrored into viper keys.
var boundFlags = []string{
	"project",
	"state-file",
	"suffix",
	"tag-format",
	"consistent",
	"update-dependencies",
	"allow-snapshots",
	"staged",
	"verbose",
	"release-version",
	"development-version",
	"hotfix-version",
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "relflow",
		Short: "Rewrite module versions for git-flow releases",
		Long: `relflow computes the versions every module of a project should carry for a
release, hotfix or development step and rewrites the module descriptors
(pom.xml or MODULE.bazel) accordingly.

Branch handling is left to git: run relflow on the branch the step applies to.

Examples:
  relflow release-start          Move develop snapshots to the release branch snapshot
  relflow release-finish         Move the release branch to release versions
  relflow plan release-start     Show the version changes without writing anything`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}

	f := root.PersistentFlags()
	f.StringVar(&a.configFile, "config", "", "config file (default .relflow.yaml in the project directory)")
	f.StringP("project", "p", ".", "project directory or descriptor")
	f.String("state-file", "", "state file (default <project>/"+state.DefaultFileName+")")
	f.String("suffix", relflow.DefaultSuffix, "release branch snapshot suffix")
	f.String("tag-format", rewrite.DefaultTagFormat, "scm tag format")
	f.Bool("consistent", false, "give every module the root module's version")
	f.Bool("update-dependencies", true, "rewrite dependency and plugin versions of reactor modules")
	f.Bool("allow-snapshots", false, "allow snapshot release versions")
	f.Bool("staged", false, "write descriptors only after every module was rewritten")
	f.BoolP("verbose", "v", false, "log every descriptor change")
	f.String("release-version", "", "release version for every module")
	f.String("development-version", "", "development version for every module")
	f.String("hotfix-version", "", "hotfix version for every module")

	for _, name := range boundFlags {
		_ = a.v.BindPFlag(strings.ReplaceAll(name, "-", "_"), f.Lookup(name))
	}

	root.AddCommand(
		a.releaseStartCmd(),
		a.releaseFinishCmd(),
		a.hotfixStartCmd(),
		a.hotfixFinishCmd(),
		a.developCmd(),
		a.restoreCmd(),
		a.checkCmd(),
		a.planCmd(),
	)
	return root
}

// load reads configuration and sets up logging before any subcommand runs.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	projectPath, _ := cmd.Flags().GetString("project")
	if err := config.Init(a.v, a.configFile, projectDir(projectPath), "."); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}
	a.logger = slog.New(log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "relflow",
	}))
	return nil
}

// open loads the project and creates a Flow from the configuration.
func (a *app) open(dryRun bool) (*relflow.Flow, *project.Reactor, error) {
	resolver := versionmap.DefaultResolver{
		DefaultReleaseVersion:     a.cfg.ReleaseVersion,
		DefaultDevelopmentVersion: a.cfg.DevelopmentVersion,
		DefaultHotfixVersion:      a.cfg.HotfixVersion,
		AllowSnapshots:            a.cfg.AllowSnapshots,
	}
	return relflow.Open(a.cfg.Project,
		relflow.WithResolver(resolver),
		relflow.WithConsistent(a.cfg.Consistent),
		relflow.WithUpdateDependencies(a.cfg.UpdateDependencies),
		relflow.WithSuffix(a.cfg.Suffix),
		relflow.WithTagFormat(a.cfg.TagFormat),
		relflow.WithStaging(a.cfg.Staged),
		relflow.WithDryRun(dryRun),
		relflow.WithLogger(a.logger),
	)
}

func (a *app) statePath() string {
	if a.cfg.StateFile != "" {
		return a.cfg.StateFile
	}
	return state.DefaultPath(projectDir(a.cfg.Project))
}

func (a *app) readState() (*state.State, error) {
	st, err := state.ReadFile(a.statePath())
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}
	return st, nil
}

func (a *app) writeState(st *state.State) error {
	if err := st.WriteFile(a.statePath()); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	return nil
}

// projectDir returns the directory of a project path that may name a
// descriptor file.
func projectDir(path string) string {
	info, err := os.Stat(path)
	if err == nil && !info.IsDir() {
		return filepath.Dir(path)
	}
	return path
}
