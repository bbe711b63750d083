package main

import (
	"context"
	"errors"
	goflag "flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"k8s.io/klog/v2"

	"github.com/standardbeagle/nsis-process/process"
)

const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// exitStatus ends the command with a status and no further message.
type exitStatus int

func (e exitStatus) Error() string {
	return "exit status " + strconv.Itoa(int(e))
}

// app carries what the commands operate on.
type app struct {
	finder  *process.Finder
	version string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer

	cfgFile   string
	config    *viper.Viper
	klogFlags *goflag.FlagSet
}

// run executes the command line and returns the process exit status.
func run(ctx context.Context, args []string, a *app) int {
	root := newRootCmd(a)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var status exitStatus
	if errors.As(err, &status) {
		return int(status)
	}
	fmt.Fprintf(a.stderr, "Error: %v\n", err)
	return exitUsage
}

func newRootCmd(a *app) *cobra.Command {
	a.config = viper.New()
	a.config.SetEnvPrefix("NSISPROC")
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()

	root := &cobra.Command{
		Use:           "nsisproc",
		Short:         "Find and kill processes by executable name",
		Version:       a.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
	}
	root.SetIn(a.stdin)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml, json or toml)")
	flags.IntP("verbosity", "v", 0, "log level for V logs")
	flags.Bool("current-user", false, "only consider processes owned by the current user")
	_ = a.config.BindPFlags(flags)

	// klog flags other than -v are reachable under their own names.
	a.klogFlags = goflag.NewFlagSet("klog", goflag.ContinueOnError)
	klog.InitFlags(a.klogFlags)
	a.klogFlags.VisitAll(func(f *goflag.Flag) {
		if f.Name == "v" {
			return
		}
		flags.AddFlag(pflag.PFlagFromGoFlag(f))
	})

	root.AddCommand(
		newFindCmd(a),
		newKillCmd(a),
		newCallCmd(a),
		newServeCmd(a),
		newVersionCmd(a),
	)
	return root
}

// initConfig reads the optional config file and applies the log level.
func (a *app) initConfig() error {
	if a.cfgFile != "" {
		a.config.SetConfigFile(a.cfgFile)
		if err := a.config.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", a.cfgFile, err)
		}
	}

	return a.klogFlags.Set("v", strconv.Itoa(a.config.GetInt("verbosity")))
}

func (a *app) options() process.Options {
	return process.Options{CurrentUser: a.config.GetBool("current-user")}
}

func statusOf(r process.Result) error {
	if r == process.Success {
		return nil
	}
	return exitStatus(r.Code())
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), a.version)
		},
	}
}
