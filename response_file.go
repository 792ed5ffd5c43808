// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	responseFilePrefix   = "@"
	maxResponseFileDepth = 16
)

// Inlines every @file argument, recursively. Any file that can't be read,
// that refers back to a file being expanded or that nests too deep aborts
// the whole expansion.
func expandResponseFiles(env env, args []string) ([]string, error) {
	return expandResponseFilesInternal(env, args, nil)
}

func expandResponseFilesInternal(env env, args []string, stack []string) ([]string, error) {
	expanded := make([]string, 0, len(args))
	for _, arg := range args {
		path, ok := responseFilePath(arg)
		if !ok {
			expanded = append(expanded, arg)
			continue
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(env.getwd(), path)
		}
		path = filepath.Clean(path)
		for _, parent := range stack {
			if parent == path {
				return nil, newFileErrorf(path, "response file includes itself")
			}
		}
		if len(stack) >= maxResponseFileDepth {
			return nil, newFileErrorf(path, "response files nested deeper than %d", maxResponseFileDepth)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, newFileError(path, err)
		}
		nested, err := expandResponseFilesInternal(env, parseResponseFile(string(content)), append(stack, path))
		if err != nil {
			return nil, err
		}
		expanded = append(expanded, nested...)
	}
	return expanded, nil
}

func responseFilePath(arg string) (string, bool) {
	path, ok := strings.CutPrefix(arg, responseFilePrefix)
	if !ok || path == "" {
		return "", false
	}
	return path, true
}

// Splits response file content the way GNU tools do: whitespace separates
// arguments, single and double quotes group, a backslash escapes the next
// character. CR is plain whitespace outside quotes and kept inside them.
func parseResponseFile(content string) []string {
	var args []string
	var current strings.Builder
	// Distinguishes "" from no argument at all.
	inArg := false
	var quote rune
	escaped := false
	for _, c := range content {
		switch {
		case escaped:
			current.WriteRune(c)
			escaped = false
		case c == '\\':
			escaped = true
			inArg = true
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				current.WriteRune(c)
			}
		case c == '"' || c == '\'':
			quote = c
			inArg = true
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
			if inArg {
				args = append(args, current.String())
				current.Reset()
				inArg = false
			}
		default:
			current.WriteRune(c)
			inArg = true
		}
	}
	if escaped {
		current.WriteRune('\\')
	}
	if inArg {
		args = append(args, current.String())
	}
	return args
}

// Inverse of parseResponseFile.
func escapeResponseFileArg(arg string) string {
	if arg == "" {
		return `""`
	}
	var b strings.Builder
	needsQuotes := false
	for _, c := range arg {
		switch c {
		case ' ', '\t', '\n', '\r', '\v', '\f', '\'':
			needsQuotes = true
			b.WriteRune(c)
		case '"', '\\':
			b.WriteRune('\\')
			b.WriteRune(c)
		default:
			b.WriteRune(c)
		}
	}
	if needsQuotes {
		return `"` + b.String() + `"`
	}
	return b.String()
}

func writeResponseFile(path string, args []string) error {
	escaped := make([]string, len(args))
	for i, arg := range args {
		escaped[i] = escapeResponseFileArg(arg)
	}
	if err := os.WriteFile(path, []byte(strings.Join(escaped, " ")), 0644); err != nil {
		return newFileError(path, err)
	}
	return nil
}
