// Package generate runs the work-order generator and the backlog check from
// the command line.
package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cmms/internal/application/preventive/dto"
	"cmms/internal/application/preventive/usecases"
	"cmms/internal/infrastructure/database"
	"cmms/internal/interfaces/bootstrap"
)

var (
	env      string
	planCode string
	asJSON   bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate preventive work orders",
		Long:  `Generate all due preventive work orders, or only those of one plan with --plan.`,
		RunE:  runGenerate,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&planCode, "plan", "p", "", "Only generate for the plan with this code")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func NewPendingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "Show plans with occurrences that have no work order",
		RunE:  runPending,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full result as JSON")

	return cmd
}

func initComponents(ctx context.Context) (*bootstrap.Preventive, func(), error) {
	cfg, log, err := bootstrap.InitRuntime(env)
	if err != nil {
		return nil, nil, err
	}

	redisClient, err := bootstrap.NewRedisClient(ctx, cfg, log)
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}

	components, err := bootstrap.NewPreventive(cfg, database.Get(), redisClient, log)
	if err != nil {
		_ = database.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
		_ = database.Close()
	}
	return components, cleanup, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, cleanup, err := initComponents(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	var result *dto.GenerationResult
	if planCode != "" {
		result, err = components.GenerateForPlan.Execute(ctx, usecases.GenerateForPlanCommand{PlanCode: planCode, Trigger: dto.TriggerCLI})
	} else {
		result, err = components.GenerateAll.Execute(ctx, usecases.GenerateAllCommand{Trigger: dto.TriggerCLI})
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		if err := writeJSON(out, result); err != nil {
			return err
		}
	} else {
		printResult(out, result)
	}

	if result.Failed() {
		return errors.New("generation run failed: " + result.Error)
	}
	return nil
}

func runPending(cmd *cobra.Command, args []string) error {
	components, cleanup, err := initComponents(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := components.CheckPending.Execute(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		return writeJSON(out, result)
	}
	printPending(out, result)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printResult(w io.Writer, r *dto.GenerationResult) {
	fmt.Fprintf(w, "Run %s (%s): %s\n", r.RunID, r.Trigger, r.State)
	if r.Plan != nil {
		fmt.Fprintf(w, "  Plan:     %s %s (%s)\n", r.Plan.Code, r.Plan.Description, r.Plan.RecurrenceLabel)
	}
	fmt.Fprintf(w, "  Plans:    %d considered, %d processed\n", r.PlansConsidered, r.PlansProcessed)
	fmt.Fprintf(w, "  Created:  %d\n", r.CreatedCount)
	fmt.Fprintf(w, "  Skipped:  %d\n", r.SkippedCount)
	fmt.Fprintf(w, "  Errors:   %d\n", r.ErrorCount)
	fmt.Fprintf(w, "  Duration: %s\n", r.Duration())

	for _, item := range r.CreatedItems {
		fmt.Fprintf(w, "  + #%d %s\n", item.WorkOrderID, item.Description)
	}
	for _, entry := range r.OperationLog {
		if entry.Level != dto.LogInfo {
			fmt.Fprintf(w, "  %s\n", entry)
		}
	}
	if r.Error != "" {
		fmt.Fprintf(w, "  Failure:  %s\n", r.Error)
	}
}

func printPending(w io.Writer, r *dto.PendingOccurrencesResult) {
	fmt.Fprintf(w, "Pending occurrences as of %s: %d\n", r.AsOf, r.TotalPending)
	for _, p := range r.Plans {
		more := ""
		if p.Truncated {
			more = "+"
		}
		fmt.Fprintf(w, "  %-20s %3d%s  oldest %s  %s (%s)\n",
			p.PlanCode, p.Pending, more, p.OldestPending, p.Description, p.RecurrenceLabel)
	}
	for _, e := range r.Errors {
		fmt.Fprintf(w, "  ! %s\n", e)
	}
}
