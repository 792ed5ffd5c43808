// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
)

const (
	// Exit code for failures of the wrapper itself.
	internalErrorExitCode = 1
	// Exit code reported when the child was terminated by a signal.
	signalExitCode = 4
)

// configError is a malformed directive or configuration value.
type configError struct {
	err string
}

var _ error = configError{}

func (err configError) Error() string {
	return err.err
}

func newConfigErrorf(format string, v ...interface{}) configError {
	return configError{err: fmt.Sprintf(format, v...)}
}

// fileError is a response file, redirect target or log file that could
// not be used.
type fileError struct {
	path  string
	cause error
}

var _ error = fileError{}

func (err fileError) Error() string {
	if err.cause == nil {
		return err.path
	}
	return fmt.Sprintf("%s: %s", err.path, err.cause)
}

func (err fileError) Unwrap() error {
	return err.cause
}

// The path is only named once: a *fs.PathError cause is reduced to its
// underlying error.
func newFileError(path string, cause error) fileError {
	var pathErr *fs.PathError
	if errors.As(cause, &pathErr) {
		cause = pathErr.Err
	}
	return fileError{path: path, cause: cause}
}

func newFileErrorf(path string, format string, v ...interface{}) fileError {
	return fileError{path: path, cause: fmt.Errorf(format, v...)}
}

// spawnError means the child could not be started at all.
type spawnError struct {
	path  string
	cause error
}

var _ error = spawnError{}

func (err spawnError) Error() string {
	return fmt.Sprintf("failed to execute %s: %s", err.path, err.cause)
}

func (err spawnError) Unwrap() error {
	return err.cause
}

func newSpawnError(path string, cause error) spawnError {
	return spawnError{path: path, cause: cause}
}

func isUserError(err error) bool {
	var cfgErr configError
	var fileErr fileError
	var spawnErr spawnError
	return errors.As(err, &cfgErr) || errors.As(err, &fileErr) || errors.As(err, &spawnErr)
}

func wrapErrorwithSourceLocf(err error, format string, v ...interface{}) error {
	return newErrorwithSourceLocfInternal(2, "%s: %s", fmt.Sprintf(format, v...), err.Error())
}

// Based on the implementation of log.Output
func newErrorwithSourceLocfInternal(skip int, format string, v ...interface{}) error {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		file = "???"
		line = 0
	}
	if lastSlash := strings.LastIndex(file, "/"); lastSlash >= 0 {
		file = file[lastSlash+1:]
	}

	return fmt.Errorf("%s:%d: %s", file, line, fmt.Sprintf(format, v...))
}

// getExitCode maps the result of running a child to the wrapper's exit
// code. ok is false if err is not about the child's exit status.
func getExitCode(err error) (exitCode int, ok bool) {
	if err == nil {
		return 0, true
	}
	var exiterr *exec.ExitError
	if errors.As(err, &exiterr) {
		if status, ok := exiterr.Sys().(syscall.WaitStatus); ok {
			if status.Signaled() {
				return signalExitCode, true
			}
			return status.ExitStatus(), true
		}
		return exiterr.ExitCode(), true
	}
	return 0, false
}
