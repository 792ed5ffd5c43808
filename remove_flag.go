// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

func processRemoveFlags(builder *commandBuilder) {
	removals := builder.directives.list(removeDirective)
	if len(removals) == 0 {
		return
	}
	remove := make(map[string]bool, len(removals))
	for _, d := range removals {
		remove[d.value] = true
	}
	builder.transformArgs(func(arg builderArg) (builderArg, bool) {
		return arg, !arg.rewritable() || !remove[arg.value]
	})
}
