package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vanpelt/prbranch/internal/config"
	"github.com/vanpelt/prbranch/internal/logger"
	"github.com/vanpelt/prbranch/internal/reconcile"
	"github.com/vanpelt/prbranch/internal/vcsdriver"
	"github.com/vanpelt/prbranch/internal/vcsdriver/executor"
)

var (
	reconcileMessage  string
	reconcileBase     string
	reconcileBranch   string
	reconcileSignoff  bool
	reconcileRepoPath string
	reconcilePush     bool
	reconcileConfig   string
	reconcileDebug    bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Create or update a pull-request branch from the current checkout",
	Long: `reconcile stages any uncommitted changes, rebuilds the target branch on
the current base, and decides whether to create, update, or leave alone
the named pull-request branch.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileMessage, "message", "m", "", "commit message for the staged change (required)")
	reconcileCmd.Flags().StringVarP(&reconcileBase, "base", "b", "", "base branch to build on; empty means the current branch (legacy mode)")
	reconcileCmd.Flags().StringVar(&reconcileBranch, "branch", "", "pull-request branch to create or update (required)")
	reconcileCmd.Flags().BoolVar(&reconcileSignoff, "signoff", false, "append a Signed-off-by trailer to the staged commit")
	reconcileCmd.Flags().StringVar(&reconcileRepoPath, "repo", "", "repository path (defaults to the current directory)")
	reconcileCmd.Flags().BoolVar(&reconcilePush, "push", false, "force-push the resulting branch when the outcome is not none")
	reconcileCmd.Flags().StringVar(&reconcileConfig, "config", "", "path to a prbranch config.toml (defaults to ~/.prbranch/config.toml)")
	reconcileCmd.Flags().BoolVar(&reconcileDebug, "debug", false, "enable debug logging")

	_ = reconcileCmd.MarkFlagRequired("message")
	_ = reconcileCmd.MarkFlagRequired("branch")

	rootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	runID := uuid.New().String()
	start := time.Now()

	level := logger.LevelInfo
	if reconcileDebug || logger.GetLogLevelFromEnv(false) == logger.LevelDebug {
		level = logger.LevelDebug
	}
	logger.Configure(level, false)
	log := logger.WithField("run_id", runID)

	repoPath := reconcileRepoPath
	if repoPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		repoPath = wd
	}

	path := reconcileConfig
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.LoadReconcileConfig(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if reconcileSignoff {
		cfg.Signoff = true
	}

	driverConfig := vcsdriver.Config{
		AuthorName:     cfg.AuthorName,
		AuthorEmail:    cfg.AuthorEmail,
		CommitterName:  cfg.CommitterName,
		CommitterEmail: cfg.CommitterEmail,
		DefaultRemote:  cfg.DefaultRemote,
	}

	driver := vcsdriver.NewDriver(repoPath, executor.NewGitExecutor(), driverConfig)
	engine := reconcile.NewReconciler(driver, driverConfig, cfg.TempBranchSuffix)

	if state, err := driver.WorkingTreeState(); err == nil {
		log.Debug().
			Str("branch", state.Branch).
			Int("unstaged", len(state.UnstagedFiles)).
			Int("untracked", len(state.UntrackedFiles)).
			Bool("dirty", state.IsDirty).
			Msg("working tree snapshot")
	}

	outcome, err := engine.CreateOrUpdateBranch(reconcile.ReconcileRequest{
		CommitMessage: reconcileMessage,
		BaseName:      reconcileBase,
		BranchName:    reconcileBranch,
		Signoff:       cfg.Signoff,
	})
	if err != nil {
		log.Error().Err(err).Str("branch", reconcileBranch).Msg("reconcile failed")
		return err
	}

	if reconcilePush && outcome.Action != reconcile.ActionNone {
		if err := driver.Push(driverConfig.Remote(), reconcileBranch, true); err != nil {
			log.Error().Err(err).Msg("force-push failed")
			return fmt.Errorf("force-pushing %s: %w", reconcileBranch, err)
		}
	}

	log.Info().
		Str("action", string(outcome.Action)).
		Bool("has_diff_with_base", outcome.HasDiffWithBase).
		Msg("reconcile finished")

	printOutcome(cmd, reconcileBranch, outcome, start)
	return nil
}

func printOutcome(cmd *cobra.Command, branch string, outcome reconcile.ReconcileOutcome, start time.Time) {
	label := fmt.Sprintf("%s  branch=%s  hasDiffWithBase=%v  started %s",
		outcome.Action, branch, outcome.HasDiffWithBase, humanize.Time(start))

	out := cmd.OutOrStdout()
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprintln(out, styleForAction(outcome.Action).Render(label))
		return
	}
	fmt.Fprintln(out, label)
}

func styleForAction(action reconcile.Action) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	switch action {
	case reconcile.ActionCreated:
		return base.Foreground(lipgloss.Color("42"))
	case reconcile.ActionUpdated:
		return base.Foreground(lipgloss.Color("214"))
	default:
		return base.Foreground(lipgloss.Color("245"))
	}
}
