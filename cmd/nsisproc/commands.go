package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/standardbeagle/nsis-process/plugin"
	"github.com/standardbeagle/nsis-process/server"
)

func newFindCmd(a *app) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "find NAME",
		Short: "Report whether a process with the given executable name is running",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, opts := args[0], a.options()
			if !list {
				return statusOf(a.finder.Find(name, opts))
			}

			pids := a.finder.Select(name, opts)
			for _, pid := range pids {
				fmt.Fprintln(cmd.OutOrStdout(), pid)
			}
			if len(pids) == 0 {
				return exitStatus(exitFail)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "print the matching pids")
	return cmd
}

func newKillCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "kill NAME",
		Short: "Terminate every process with the given executable name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return statusOf(a.finder.Kill(args[0], a.options()))
		},
	}
}

func newCallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "call FUNCTION [VALUE...]",
		Short: "Push values onto a stack and invoke an exported function",
		Long: `Push each VALUE in order, call FUNCTION and print the value it leaves
on top of the stack. Exported functions: ` + fmt.Sprint(plugin.Exports(a.finder).Names()),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack := plugin.NewStack(args[1:]...)
			if err := plugin.Exports(a.finder).Call(args[0], stack); err != nil {
				return err
			}

			code, err := stack.PopInt()
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			if code != exitOK {
				return exitStatus(exitFail)
			}
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the text protocol on stdin and stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv := server.New(plugin.Exports(a.finder), server.Config{Version: a.version})
			err := srv.Serve(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil && cmd.Context().Err() == nil {
				klog.Errorf("serve: %v", err)
				return exitStatus(exitFail)
			}
			return nil
		},
	}
}
