// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type executionPlan struct {
	cmd *command
	// Redirect targets, absolute. Both may name the same file.
	stdoutPath string
	stderrPath string

	justPrint   bool
	beforePrint bool
	// Replace the wrapper process instead of waiting for a child.
	useExec bool
	// Move the arguments into a response file above this length. 0 disables.
	responseFileThreshold int
}

// The work dir only applies to the child; the wrapper itself never changes
// directory. Relative redirect targets are resolved against the child's
// directory, so the order of -clw-work-dir and the redirects doesn't matter.
func newExecutionPlan(env env, cfg *config, builder *commandBuilder) (*executionPlan, error) {
	cmd, err := builder.build()
	if err != nil {
		return nil, err
	}
	set := builder.directives
	if workDir := firstNonEmpty(set.scalar(workDirDirective), cfg.workDir); workDir != "" {
		cmd.dir = resolvePath(env.getwd(), workDir)
	}
	baseDir := cmd.dir
	if baseDir == "" {
		baseDir = env.getwd()
	}
	plan := &executionPlan{
		cmd:                   cmd,
		justPrint:             cfg.justPrint || set.flag(justPrintDirective),
		beforePrint:           cfg.beforePrint || set.flag(beforePrintDirective),
		useExec:               cfg.useExec,
		responseFileThreshold: cfg.responseFileThreshold,
	}
	if path := firstNonEmpty(set.scalar(redirectStdoutDirective), cfg.redirectStdout); path != "" {
		plan.stdoutPath = resolvePath(baseDir, path)
	}
	if path := firstNonEmpty(set.scalar(redirectStderrDirective), cfg.redirectStderr); path != "" {
		plan.stderrPath = resolvePath(baseDir, path)
	}
	return plan, nil
}

func runPlan(env env, logger *zap.Logger, plan *executionPlan) (exitCode int, err error) {
	if plan.justPrint || plan.beforePrint {
		printPlan(env.stderr(), plan)
	}
	if plan.justPrint {
		logger.Debug("just printing, not running", zap.String("command", plan.cmd.path))
		return 0, nil
	}
	cmd := plan.cmd
	if cmd.dir != "" {
		if info, err := os.Stat(cmd.dir); err != nil {
			return 0, newFileError(cmd.dir, err)
		} else if !info.IsDir() {
			return 0, newFileErrorf(cmd.dir, "not a directory")
		}
	}

	useResponseFile := plan.responseFileThreshold > 0 && commandLineLength(cmd) > plan.responseFileThreshold
	if useResponseFile {
		rspCmd, cleanup, err := moveArgsToResponseFile(cmd)
		if err != nil {
			return 0, err
		}
		defer cleanup()
		logger.Info("arguments moved to response file",
			zap.Int("args", len(cmd.args)),
			zap.String("response_file", rspCmd.args[0]))
		cmd = rspCmd
	}

	if plan.useExec && canReplaceProcess && !useResponseFile && plan.stdoutPath == "" && plan.stderrPath == "" {
		logger.Info("replacing process", zap.String("command", cmd.path), zap.Strings("args", cmd.args))
		_ = logger.Sync()
		// Note: We return an exit code only if the underlying env is not
		// really doing an exec.
		return wrapSubprocessError(cmd, env.exec(cmd))
	}

	stdout, stderr, closeRedirects, err := openRedirects(env, plan)
	if err != nil {
		return 0, err
	}
	defer closeRedirects()

	logger.Info("running command",
		zap.String("command", cmd.path),
		zap.Strings("args", cmd.args),
		zap.String("dir", cmd.dir))
	exitCode, err = wrapSubprocessError(cmd, env.run(cmd, env.stdin(), stdout, stderr))
	if err != nil {
		return 0, err
	}
	logger.Info("command finished", zap.Int("exit_code", exitCode))
	return exitCode, nil
}

// Redirects are opened for appending. If stdout and stderr name the same
// file they share one handle, and so one write position.
func openRedirects(env env, plan *executionPlan) (stdout io.Writer, stderr io.Writer, closer func(), err error) {
	stdout, stderr = env.stdout(), env.stderr()
	var files []*os.File
	closer = func() {
		for _, f := range files {
			f.Close()
		}
	}
	if plan.stdoutPath != "" {
		f, err := openRedirectFile(plan.stdoutPath)
		if err != nil {
			return nil, nil, nil, err
		}
		files = append(files, f)
		stdout = f
	}
	if plan.stderrPath != "" {
		if plan.stderrPath == plan.stdoutPath {
			stderr = stdout
		} else {
			f, err := openRedirectFile(plan.stderrPath)
			if err != nil {
				closer()
				return nil, nil, nil, err
			}
			files = append(files, f)
			stderr = f
		}
	}
	return stdout, stderr, closer, nil
}

func openRedirectFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, newFileError(path, err)
	}
	return f, nil
}

func wrapSubprocessError(cmd *command, err error) (exitCode int, _ error) {
	if exitCode, ok := getExitCode(err); ok {
		return exitCode, nil
	}
	return 0, newSpawnError(cmd.path, err)
}

func commandLineLength(cmd *command) int {
	n := len(cmd.path)
	for _, arg := range cmd.args {
		n += len(arg) + 1
	}
	return n
}

// Writes the arguments to a fresh response file in the temp dir. The
// returned cleanup removes it.
func moveArgsToResponseFile(cmd *command) (*command, func(), error) {
	path := filepath.Join(os.TempDir(), "clw-"+uuid.NewString()+".rsp")
	if err := writeResponseFile(path, cmd.args); err != nil {
		return nil, nil, err
	}
	rspCmd := &command{
		path: cmd.path,
		args: []string{responseFilePrefix + path},
		dir:  cmd.dir,
	}
	return rspCmd, func() { os.Remove(path) }, nil
}

func resolvePath(baseDir string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(baseDir, path)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
