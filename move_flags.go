// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"strings"
)

// Moves arguments to the front (right after the command) or to the back.
// Typically used to fix up the position of libraries on a link line.
// All front moves run before all back moves.
func processMoveFlags(builder *commandBuilder) {
	moves := builder.directives.moves
	for _, d := range moves {
		if isMoveFront(d.kind) {
			moveArgs(builder, d, true)
		}
	}
	for _, d := range moves {
		if !isMoveFront(d.kind) {
			moveArgs(builder, d, false)
		}
	}
}

func isMoveFront(kind directiveKind) bool {
	switch kind {
	case moveFrontDirective, moveFrontBeforeDirective, moveFrontAfterDirective:
		return true
	}
	return false
}

func moveArgs(builder *commandBuilder, d directive, toFront bool) {
	if len(builder.args) < 2 {
		return
	}
	// The command never moves.
	args := builder.args[1:]
	var moved, kept []builderArg
	for i, arg := range args {
		if shouldMoveArg(args, i, d) {
			moved = append(moved, arg)
		} else {
			kept = append(kept, arg)
		}
	}
	if len(moved) == 0 {
		return
	}
	newArgs := make([]builderArg, 0, len(builder.args))
	newArgs = append(newArgs, builder.args[0])
	if toFront {
		newArgs = append(append(newArgs, moved...), kept...)
	} else {
		newArgs = append(append(newArgs, kept...), moved...)
	}
	builder.args = newArgs
}

// Matching is by suffix. The before/after variants additionally require the
// preceding/following argument to end with the context.
func shouldMoveArg(args []builderArg, i int, d directive) bool {
	arg := args[i]
	if !arg.rewritable() || !strings.HasSuffix(arg.value, d.value) {
		return false
	}
	switch d.kind {
	case moveFrontBeforeDirective, moveBackBeforeDirective:
		return i > 0 && strings.HasSuffix(args[i-1].value, d.context)
	case moveFrontAfterDirective, moveBackAfterDirective:
		return i+1 < len(args) && strings.HasSuffix(args[i+1].value, d.context)
	}
	return true
}
