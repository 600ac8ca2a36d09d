package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Promptonauts/conveyor/pkg/workflow"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow-file>",
	Short: "Parse and validate a workflow file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wf, err := workflow.Load(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("workflow %s is valid: %d runtimes, %d steps\n", wf.Name, len(wf.Runtimes), len(wf.Steps))
		return nil
	},
}
