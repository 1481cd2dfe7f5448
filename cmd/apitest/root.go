package main

import (
	"fmt"
	"os"

	"github.com/Laisky/errors/v2"
	glog "github.com/Laisky/go-utils/v5/log"
	"github.com/spf13/cobra"

	"github.com/songquanpeng/apitest/common/logger"
)

const (
	// ExitCodeSuccess means every endpoint passed.
	ExitCodeSuccess = 0
	// ExitCodeFailure means planning failed, an endpoint failed or the command was misused.
	ExitCodeFailure = 1
)

// errTestsFailed is returned after the report was printed and at least one endpoint failed.
var errTestsFailed = errors.New("one or more endpoints failed")

var debugLogging bool

// rootCmd is the entry point when apitest is called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apitest",
		Short: "Test HTTP APIs from natural language instructions",
		Long: `apitest turns an instruction such as "GET https://api.example.com/health should
return 200" into a test plan, executes every endpoint against the live API and prints
a pass/fail report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := glog.LevelWarn
			if debugLogging {
				level = glog.LevelDebug
			}
			_ = logger.Logger.ChangeLevel(level)
		},
	}
	cmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "enable debug logging")
	cmd.AddCommand(newRunCmd(), newVersionCmd())
	return cmd
}

// SetVersion sets the version reported by --version and the version command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute runs the root command and exits non-zero on any failure.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apitest version %s\n" .Version}}`)
	os.Exit(execute(rootCmd))
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitCodeSuccess
	}
	if !errors.Is(err, errTestsFailed) {
		fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
	}
	return ExitCodeFailure
}
