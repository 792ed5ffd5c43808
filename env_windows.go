// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build windows

package main

import (
	"os"
)

const canReplaceProcess = false

// Windows has no exec; run the command and leave with its exit code.
func (env *processEnv) exec(cmd *command) error {
	err := env.run(cmd, env.stdin(), env.stdout(), env.stderr())
	exitCode, ok := getExitCode(err)
	if !ok {
		return err
	}
	os.Exit(exitCode)
	return nil
}
