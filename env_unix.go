// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

//go:build !windows

package main

import (
	"os"
	"syscall"
)

const canReplaceProcess = true

func (env *processEnv) exec(cmd *command) (err error) {
	execCmd := newExecCmd(env, cmd)
	if execCmd.Err != nil {
		return execCmd.Err
	}
	if cmd.dir != "" {
		oldwd, wdErr := os.Getwd()
		if wdErr != nil {
			return wrapErrorwithSourceLocf(wdErr, "failed to read working directory")
		}
		if chdirErr := os.Chdir(cmd.dir); chdirErr != nil {
			return chdirErr
		}
		// Only runs if the exec below fails.
		defer func() {
			if chdirErr := os.Chdir(oldwd); chdirErr != nil && err == nil {
				err = wrapErrorwithSourceLocf(chdirErr, "failed to restore working directory")
			}
		}()
	}
	return syscall.Exec(execCmd.Path, execCmd.Args, os.Environ())
}
