// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"io"
	"os"
)

// Everything the wrapper needs from its process. The child inherits the
// wrapper's environment unchanged.
type env interface {
	getenv(key string) string
	getwd() string
	stdin() io.Reader
	stdout() io.Writer
	stderr() io.Writer
	// Starts the command and waits for it.
	run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error
	// Becomes the command. Only returns on failure.
	exec(cmd *command) error
}

type processEnv struct {
	wd string
}

func newProcessEnv() (env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, wrapErrorwithSourceLocf(err, "failed to read working directory")
	}
	return &processEnv{wd: wd}, nil
}

var _ env = (*processEnv)(nil)

func (env *processEnv) getenv(key string) string { return os.Getenv(key) }
func (env *processEnv) getwd() string            { return env.wd }
func (env *processEnv) stdin() io.Reader         { return os.Stdin }
func (env *processEnv) stdout() io.Writer        { return os.Stdout }
func (env *processEnv) stderr() io.Writer        { return os.Stderr }

func (env *processEnv) run(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
	execCmd := newExecCmd(env, cmd)
	execCmd.Stdin = stdin
	execCmd.Stdout = stdout
	execCmd.Stderr = stderr
	return execCmd.Run()
}
