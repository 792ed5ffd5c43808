// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"strings"
)

// Prints the plan as a POSIX shell command line, e.g.
//
//	cd '/src' && 'gcc' '-c' 'main.c' >> 'build.log' 2>&1
func printPlan(w io.Writer, plan *executionPlan) {
	cmd := plan.cmd
	if cmd.dir != "" {
		fmt.Fprintf(w, "cd %s && ", shellQuote(cmd.dir))
	}
	io.WriteString(w, shellQuote(cmd.path))
	for _, arg := range cmd.args {
		io.WriteString(w, " "+shellQuote(arg))
	}
	if plan.stdoutPath != "" {
		fmt.Fprintf(w, " >> %s", shellQuote(plan.stdoutPath))
	}
	if plan.stderrPath != "" {
		if plan.stderrPath == plan.stdoutPath {
			io.WriteString(w, " 2>&1")
		} else {
			fmt.Fprintf(w, " 2>> %s", shellQuote(plan.stderrPath))
		}
	}
	io.WriteString(w, "\n")
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
