package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Promptonauts/conveyor/pkg/logging"
	"github.com/Promptonauts/conveyor/pkg/models"
	"github.com/Promptonauts/conveyor/pkg/runner"
	"github.com/Promptonauts/conveyor/pkg/store"
	"github.com/Promptonauts/conveyor/pkg/trigger"
	"github.com/Promptonauts/conveyor/pkg/workflow"
)

var (
	runEvent   string
	runBranch  string
	runWorkdir string
	runDBPath  string
)

var runCmd = &cobra.Command{
	Use:   "run <workflow-file>",
	Short: "Execute a workflow file locally for a synthetic event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := workflow.Load(args[0])
		if err != nil {
			return err
		}

		ev := models.Event{Kind: models.EventKind(runEvent), Branch: runBranch}
		if ev.Kind != models.EventPush && ev.Kind != models.EventPullRequest {
			return fmt.Errorf("unknown event kind %q", runEvent)
		}
		if ev.Branch == "" {
			// Default to the workflow's own filter so a plain `conveyor run`
			// exercises the declared trigger.
			switch {
			case ev.Kind == models.EventPush && wf.On.Push != nil:
				ev.Branch = wf.On.Push.Branch
			case ev.Kind == models.EventPullRequest && wf.On.PullRequest != nil:
				ev.Branch = wf.On.PullRequest.Branch
			}
		}
		if !trigger.Matches(wf.On, ev) {
			fmt.Printf("event %s on branch %q does not match workflow triggers, no run started\n", ev.Kind, ev.Branch)
			return nil
		}

		logger, err := logging.New(debug)
		if err != nil {
			return err
		}
		defer logger.Sync()

		st, err := store.NewSQLiteStore(runDBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			return err
		}

		rn := runner.New(st, runner.NewExecutor(runWorkdir), logger, nil)
		rec, err := rn.Run(cmd.Context(), wf, ev)
		if err != nil {
			return err
		}

		for _, step := range rec.Steps {
			fmt.Printf("[%s] %d %s\n", step.Status, step.Index, step.Name)
		}
		if rec.State != models.RunPassed {
			return fmt.Errorf("run %s: %s", rec.ID, rec.Error)
		}
		fmt.Printf("run %s passed (%d steps)\n", rec.ID, rec.TotalSteps)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runEvent, "event", "push", "event kind (push or pull_request)")
	runCmd.Flags().StringVar(&runBranch, "branch", "", "event branch (defaults to the workflow's filter)")
	runCmd.Flags().StringVar(&runWorkdir, "workdir", ".", "working directory for steps")
	runCmd.Flags().StringVar(&runDBPath, "db", "conveyor.db", "path to the run database")
}
