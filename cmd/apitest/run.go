package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"github.com/spf13/cobra"

	"github.com/songquanpeng/apitest/apitest"
	"github.com/songquanpeng/apitest/common"
	"github.com/songquanpeng/apitest/common/config"
	"github.com/songquanpeng/apitest/common/logger"
	"github.com/songquanpeng/apitest/relay"
	"github.com/songquanpeng/apitest/relay/meta"
)

const (
	formatText  = "text"
	formatTable = "table"
	formatJSON  = "json"
)

type runOptions struct {
	planPath       string
	format         string
	concurrency    int
	provider       string
	requestTimeout time.Duration
	planTimeout    time.Duration
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [instruction]",
		Short: "Plan, execute and report an API test",
		Long: `Run drafts a test plan from the instruction, executes it and prints the report.
With --plan the instruction is optional and the plan file is executed as-is.

Example usage:
  apitest run "GET https://api.example.com/health should return 200"
  apitest run --plan ./plans/users.yaml --format table`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTest(ctx, cmd.OutOrStdout(), opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVar(&opts.planPath, "plan", "", "YAML or JSON plan file to execute instead of drafting one")
	cmd.Flags().StringVarP(&opts.format, "format", "o", formatText, "report format: text, table or json")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", config.Concurrency, "endpoints executed at once")
	cmd.Flags().StringVar(&opts.provider, "provider", "", "completion provider: openai, aws or none (default LLM_PROVIDER)")
	cmd.Flags().DurationVar(&opts.requestTimeout, "timeout", apitest.RequestTimeout, "timeout of one endpoint request")
	cmd.Flags().DurationVar(&opts.planTimeout, "plan-timeout", config.LLMTimeout, "timeout of the plan-drafting completion")
	return cmd
}

func (o *runOptions) validate(prompt string) error {
	switch o.format {
	case formatText, formatTable, formatJSON:
	default:
		return errors.Errorf("unknown format %q", o.format)
	}
	if o.planPath == "" && strings.TrimSpace(prompt) == "" {
		return errors.New("an instruction or --plan is required")
	}
	return nil
}

func (o *runOptions) newAgent() *apitest.Agent {
	agentOpts := []apitest.AgentOption{
		apitest.WithPlanTimeout(o.planTimeout),
		apitest.WithExecutorOptions(
			apitest.WithConcurrency(o.concurrency),
			apitest.WithRequestTimeout(o.requestTimeout),
		),
	}
	if o.planPath != "" {
		return apitest.NewAgent(nil, agentOpts...)
	}

	m := meta.FromConfig(o.provider)
	completer, err := relay.GetCompleter(m)
	if err != nil {
		logger.Logger.Warn("completion provider unavailable, parsing the instruction directly",
			zap.String("provider", m.Provider),
			zap.Error(err))
		completer = nil
	}
	return apitest.NewAgent(completer, agentOpts...)
}

func runTest(ctx context.Context, out io.Writer, opts *runOptions, prompt string) error {
	if err := opts.validate(prompt); err != nil {
		return err
	}
	agent := opts.newAgent()

	var (
		run *apitest.Run
		err error
	)
	if opts.planPath != "" {
		plan, loadErr := apitest.LoadPlanFile(common.ExpandPath(opts.planPath))
		if loadErr != nil {
			return errors.Wrap(loadErr, "load plan file")
		}
		run, err = agent.RunPlan(ctx, plan)
	} else {
		run, err = agent.Run(ctx, prompt)
	}
	if err != nil {
		fmt.Fprintln(out, apitest.FailurePrefix+err.Error())
		return errTestsFailed
	}

	if err := writeReport(out, opts.format, run); err != nil {
		return errors.Wrap(err, "write report")
	}
	if !run.Passed() {
		return errTestsFailed
	}
	return nil
}

func writeReport(out io.Writer, format string, run *apitest.Run) error {
	switch format {
	case formatTable:
		apitest.RenderTable(out, run.Results)
		return nil
	case formatJSON:
		return apitest.RenderJSON(out, run.Results)
	default:
		_, err := fmt.Fprintln(out, apitest.BuildReport(run.Results))
		return err
	}
}
