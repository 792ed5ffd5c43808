// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRedirectStdoutAppends(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.writeFile("out.log", "old\n")
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			fmt.Fprint(stdout, "new\n")
			fmt.Fprint(stderr, "diag\n")
			return nil
		}
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-redirect-stdout=out.log")))
		if got := ctx.readFile("out.log"); got != "old\nnew\n" {
			t.Errorf("unexpected log content %q", got)
		}
		if got := ctx.stderrString(); got != "diag\n" {
			t.Errorf("expected stderr to stay on the wrapper's stderr. Got %q", got)
		}
	})
}

func TestRedirectStderrCreatesFile(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			fmt.Fprint(stderr, "warning\n")
			return nil
		}
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-redirect-stderr=err.log")))
		if got := ctx.readFile("err.log"); got != "warning\n" {
			t.Errorf("unexpected log content %q", got)
		}
	})
}

func TestRedirectBothToSameFileSharesHandle(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			if stdout != stderr {
				t.Errorf("expected stdout and stderr to share one writer")
			}
			fmt.Fprint(stdout, "a")
			fmt.Fprint(stderr, "b")
			fmt.Fprint(stdout, "c")
			return nil
		}
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc",
			"-clw-redirect-stdout=build.log", "-clw-redirect-stderr=build.log")))
		if got := ctx.readFile("build.log"); got != "abc" {
			t.Errorf("unexpected log content %q", got)
		}
	})
}

func TestRedirectFromConfig(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cfg.redirectStdout = "cfg.log"
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			fmt.Fprint(stdout, "x")
			return nil
		}
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-redirect-stdout=arg.log")))
		if got := ctx.readFile("arg.log"); got != "x" {
			t.Errorf("expected the directive to win over the config. Got %q", got)
		}
		if _, err := os.Stat(filepath.Join(ctx.tempDir, "cfg.log")); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected cfg.log not to be created. Got %v", err)
		}
	})
}

func TestRedirectToMissingDirFails(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		stderr := ctx.mustFail(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-redirect-stdout=no/such/dir/out.log")))
		if len(ctx.cmds) != 0 {
			t.Errorf("expected no command to run")
		}
		if !strings.HasPrefix(stderr, "cli-wrapper: "+filepath.Join(ctx.tempDir, "no/such/dir/out.log")) {
			t.Errorf("unexpected error %q", stderr)
		}
	})
}

func TestWorkDirIsScopedToChild(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.writeFile("sub/.keep", "")
		cmd := ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-work-dir=sub", mainCc)))
		if want := filepath.Join(ctx.tempDir, "sub"); cmd.dir != want {
			t.Errorf("expected dir %s. Got %s", want, cmd.dir)
		}
		if wd, err := os.Getwd(); err != nil || wd == cmd.dir {
			t.Errorf("expected the wrapper's directory to stay unchanged. Got %s, %v", wd, err)
		}
	})
}

func TestWorkDirBeforeAndAfterRedirect(t *testing.T) {
	for _, order := range [][]string{
		{"-clw-work-dir=sub", "-clw-redirect-stdout=out.log"},
		{"-clw-redirect-stdout=out.log", "-clw-work-dir=sub"},
	} {
		order := order
		t.Run(strings.Join(order, " "), func(t *testing.T) {
			withTestContext(t, func(ctx *testContext) {
				ctx.writeFile("sub/.keep", "")
				ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
					fmt.Fprint(stdout, "ok")
					return nil
				}
				ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd(append([]string{"gcc"}, order...)...)))
				if got := ctx.readFile("sub/out.log"); got != "ok" {
					t.Errorf("unexpected log content %q", got)
				}
			})
		})
	}
}

func TestAbsoluteRedirectIgnoresWorkDir(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.writeFile("sub/.keep", "")
		logPath := filepath.Join(ctx.tempDir, "top.log")
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-work-dir=sub", "-clw-redirect-stderr="+logPath)))
		if _, err := os.Stat(logPath); err != nil {
			t.Errorf("expected %s to exist: %v", logPath, err)
		}
	})
}

func TestMissingWorkDirFails(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		stderr := ctx.mustFail(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-work-dir=missing")))
		if len(ctx.cmds) != 0 {
			t.Errorf("expected no command to run")
		}
		if !strings.Contains(stderr, filepath.Join(ctx.tempDir, "missing")) {
			t.Errorf("expected the directory in the error. Got %q", stderr)
		}
	})
}

func TestWorkDirMustBeDirectory(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.writeFile("file", "")
		stderr := ctx.mustFail(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-clw-work-dir=file")))
		if !strings.Contains(stderr, "not a directory") {
			t.Errorf("unexpected error %q", stderr)
		}
	})
}

func TestSpawnErrorIsReported(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			return errors.New("no such file")
		}
		stderr := ctx.mustFail(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", mainCc)))
		if stderr != "cli-wrapper: failed to execute gcc: no such file\n" {
			t.Errorf("unexpected error %q", stderr)
		}
	})
}

func TestStdinIsForwarded(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.stdinBuffer.WriteString("int main() {}")
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			content, err := io.ReadAll(stdin)
			if err != nil {
				return err
			}
			_, err = stdout.Write(content)
			return err
		}
		ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-x", "c", "-")))
		if got := ctx.stdoutString(); got != "int main() {}" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestLongCommandLineUsesResponseFile(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cfg.responseFileThreshold = 16
		args := []string{"-c", mainCc, "-o", "main out.o", "-DQUOTE=\"x\""}
		var rspPath string
		ctx.cmdMock = func(cmd *command, stdin io.Reader, stdout io.Writer, stderr io.Writer) error {
			if len(cmd.args) != 1 || !strings.HasPrefix(cmd.args[0], "@") {
				return fmt.Errorf("expected a single response file argument. Got %s", cmd.args)
			}
			rspPath = cmd.args[0][1:]
			content, err := os.ReadFile(rspPath)
			if err != nil {
				return err
			}
			if diff := cmp.Diff(args, parseResponseFile(string(content))); diff != "" {
				t.Errorf("response file mismatch (-want +got):\n%s", diff)
			}
			return nil
		}
		cmd := ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd(append([]string{"gcc"}, args...)...)))
		if err := verifyPath(cmd, "gcc"); err != nil {
			t.Error(err)
		}
		if _, err := os.Stat(rspPath); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("expected the response file to be removed. Got %v", err)
		}
	})
}

func TestShortCommandLineKeepsArgs(t *testing.T) {
	withTestContext(t, func(ctx *testContext) {
		ctx.cfg.responseFileThreshold = 1000
		cmd := ctx.must(callWrapper(ctx, ctx.cfg, ctx.wrapperCmd("gcc", "-c", mainCc)))
		if diff := cmp.Diff([]string{"-c", mainCc}, cmd.args); diff != "" {
			t.Errorf("args mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestCommandLineLength(t *testing.T) {
	cmd := &command{path: "gcc", args: []string{"-c", mainCc}}
	if got, want := commandLineLength(cmd), len("gcc -c main.cc"); got != want {
		t.Errorf("commandLineLength() = %d; want %d", got, want)
	}
}
