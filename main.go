// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// cli-wrapper sits between a build and a compiler or linker. It rewrites the
// command line according to -clw- directives mixed into the arguments and
// then runs, or only prints, the resulting command.
//
//	cli-wrapper gcc -o app main.o -lfoo -clw-static-link-compiler=-lfoo
//
// runs
//
//	gcc -o app main.o -Wl,-Bstatic -Wl,-lfoo
//
// Directives can also come from CLW_OPT_* environment variables and from a
// <wrapper>-clw-config.yaml or <wrapper>-clw-config.txt file next to the
// binary. The exit code is the child's; 4 if the child died from a signal and
// 1 if the wrapper itself failed.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

// Version can be set via a linker flag, like DefaultCommand.
var Version = "dev"

func main() {
	env, err := newProcessEnv()
	if err != nil {
		printWrapperError(os.Stderr, err)
		os.Exit(internalErrorExitCode)
	}
	os.Exit(execute(env, newProcessCommand()))
}

func execute(env env, inputCmd *command) int {
	exitCode := internalErrorExitCode
	args := inputCmd.args
	// cobra hands these to its hidden completion command. Everything
	// after "--" stays with the root command.
	shielded := len(args) > 0 && (args[0] == cobra.ShellCompRequestCmd || args[0] == cobra.ShellCompNoDescRequestCmd)
	if shielded {
		args = append([]string{"--"}, args...)
	}
	rootCmd := &cobra.Command{
		Use:     "cli-wrapper <command> [args...] [-clw-<directive>...]",
		Short:   "Rewrite and run compiler and linker command lines",
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		// Every argument belongs to the wrapped command.
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		CompletionOptions:  cobra.CompletionOptions{DisableDefaultCmd: true},
		RunE: func(cmd *cobra.Command, args []string) error {
			if shielded {
				args = args[1:]
			}
			cfg, err := getRealConfig(env, inputCmd.path)
			if err != nil {
				return err
			}
			if cfg.command == "" {
				// Only without a configured command, as these would
				// otherwise be arguments for it.
				if len(args) == 0 {
					return newConfigErrorf("no command given\n%s", strings.TrimRight(cmd.UsageString(), "\n"))
				}
				switch args[0] {
				case "-h", "--help":
					exitCode = 0
					return cmd.Help()
				case "-v", "--version":
					exitCode = 0
					fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", cmd.Name(), cmd.Version)
					return nil
				}
			}
			// Note: callWrapper may exec the command, in which case we
			// never get back here.
			exitCode = callWrapper(env, cfg, &command{path: inputCmd.path, args: args})
			return nil
		},
	}
	rootCmd.SetOut(env.stdout())
	rootCmd.SetErr(env.stderr())
	// A nil slice would make cobra read os.Args.
	rootCmd.SetArgs(append([]string{}, args...))
	if err := rootCmd.Execute(); err != nil {
		printWrapperError(env.stderr(), err)
		return internalErrorExitCode
	}
	return exitCode
}
