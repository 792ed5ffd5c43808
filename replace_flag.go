// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

// Each rule scans the list once. Values written by a rule are never matched
// again, so "a->b" followed by "b->c" turns "a" into "b", not "c".
func processReplaceFlags(builder *commandBuilder) {
	for _, rule := range builder.directives.list(replaceDirective) {
		before, after := rule.value, rule.context
		builder.transformArgs(func(arg builderArg) (builderArg, bool) {
			if arg.rewritable() && !arg.replaced && arg.value == before {
				return builderArg{value: after, replaced: true}, true
			}
			return arg, true
		})
	}
}
