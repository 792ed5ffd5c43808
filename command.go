// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

type command struct {
	path string
	args []string
	// Directory the command runs in. Empty means the wrapper's working directory.
	dir string
}

func newProcessCommand() *command {
	return &command{
		path: os.Args[0],
		args: os.Args[1:],
	}
}

// Env stays nil so the child inherits the environment.
func newExecCmd(env env, cmd *command) *exec.Cmd {
	execCmd := exec.Command(cmd.path, cmd.args...)
	execCmd.Dir = cmd.dir
	if execCmd.Dir == "" {
		execCmd.Dir = env.getwd()
	}
	return execCmd
}

// Returns the absolute path of the running wrapper. Bare names are looked up
// in PATH the same way the shell found them.
func getAbsWrapperPath(env env, wrapperPath string) (string, error) {
	if !strings.ContainsAny(wrapperPath, `/\`) {
		found, err := exec.LookPath(wrapperPath)
		if err != nil {
			// argv[0] doesn't have to name the binary.
			if found, err = os.Executable(); err != nil {
				return "", wrapErrorwithSourceLocf(err, "failed to find wrapper %s", wrapperPath)
			}
		}
		wrapperPath = found
	}
	if !filepath.IsAbs(wrapperPath) {
		wrapperPath = filepath.Join(env.getwd(), wrapperPath)
	}
	return filepath.Clean(wrapperPath), nil
}

type commandBuilder struct {
	// Element 0 is the command itself.
	args       []builderArg
	directives *directiveSet
}

type builderArg struct {
	value string
	// A -clw- token that matched no directive. Rules never touch it.
	unrecognized bool
	// Produced by a replace rule, so later replace rules skip it.
	replaced bool
	// Appended by a link rule.
	linkDirective bool
}

// Arguments that rules are allowed to rewrite.
func (arg builderArg) rewritable() bool {
	return !arg.unrecognized
}

func (builder *commandBuilder) addPostUserArgs(args ...builderArg) {
	builder.args = append(builder.args, args...)
}

// Allows to map and filter arguments. Filters when the callback returns false.
func (builder *commandBuilder) transformArgs(transform func(arg builderArg) (builderArg, bool)) {
	// See https://github.com/golang/go/wiki/SliceTricks
	newArgs := builder.args[:0]
	for _, arg := range builder.args {
		if newArg, keep := transform(arg); keep {
			newArgs = append(newArgs, newArg)
		}
	}
	builder.args = newArgs
}

func (builder *commandBuilder) values() []string {
	values := make([]string, len(builder.args))
	for i, arg := range builder.args {
		values[i] = arg.value
	}
	return values
}

// build splits the rewritten list into the command and its arguments.
// The command override, if any, replaces element 0.
func (builder *commandBuilder) build() (*command, error) {
	values := builder.values()
	if override := builder.directives.scalar(commandDirective); override != "" {
		if len(values) == 0 {
			values = []string{override}
		} else {
			values[0] = override
		}
	}
	if len(values) == 0 || values[0] == "" {
		return nil, newConfigErrorf("no command to run")
	}
	return &command{
		path: values[0],
		args: values[1:],
	}, nil
}
