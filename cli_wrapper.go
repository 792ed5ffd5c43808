// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

func callWrapper(env env, cfg *config, inputCmd *command) int {
	exitCode, err := callWrapperInternal(env, cfg, inputCmd)
	if err != nil {
		printWrapperError(env.stderr(), err)
		return internalErrorExitCode
	}
	return exitCode
}

func callWrapperInternal(env env, cfg *config, inputCmd *command) (exitCode int, err error) {
	argv, err := wrappedArgs(cfg, inputCmd)
	if err != nil {
		return 0, err
	}
	tokens, err := expandResponseFiles(env, argv)
	if err != nil {
		return 0, err
	}
	builder, err := newCommandBuilder(cfg, tokens)
	if err != nil {
		return 0, err
	}
	logFile := firstNonEmpty(builder.directives.scalar(logFileDirective), cfg.logFile)
	logger, closeLogger, err := newLogger(env, logFile, cfg.logLevel)
	if err != nil {
		return 0, err
	}
	defer closeLogger()
	defer func() {
		// Without a log file the error is already printed to stderr.
		if err != nil && logFile != "" {
			logger.Error("wrapper failed", zap.Error(err))
		}
	}()
	logger.Debug("parsed command line",
		zap.Strings("argv", argv),
		zap.Int("expanded", len(tokens)),
		zap.Int("directives", builder.directives.count()))

	calcWrappedCommand(builder)
	plan, err := newExecutionPlan(env, cfg, builder)
	if err != nil {
		return 0, err
	}
	return runPlan(env, logger, plan)
}

// Fixed order, whatever order the directives came in.
func calcWrappedCommand(builder *commandBuilder) {
	processRemoveFlags(builder)
	processReplaceFlags(builder)
	processMoveFlags(builder)
	processLinkFlags(builder)
}

// A configured command takes every argument; otherwise the first
// argument is the command.
func wrappedArgs(cfg *config, inputCmd *command) ([]string, error) {
	if cfg.command != "" {
		return append([]string{cfg.command}, inputCmd.args...), nil
	}
	if len(inputCmd.args) == 0 {
		return nil, newConfigErrorf("no command given")
	}
	return inputCmd.args, nil
}

func printWrapperError(writer io.Writer, err error) {
	if isUserError(err) {
		fmt.Fprintf(writer, "cli-wrapper: %s\n", err)
	} else {
		fmt.Fprintf(writer, "cli-wrapper: internal error: %s\n", err)
	}
}
