// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

type linkStyle struct {
	staticToggle  string
	dynamicToggle string
	// Prepended to the library so the compiler driver forwards it.
	libPrefix string
}

var (
	// For compiler drivers that forward to the linker.
	compilerLinkStyle = linkStyle{
		staticToggle:  "-Wl,-Bstatic",
		dynamicToggle: "-Wl,-Bdynamic",
		libPrefix:     "-Wl,",
	}
	// For a directly invoked linker.
	linkerLinkStyle = linkStyle{
		staticToggle:  "-Bstatic",
		dynamicToggle: "-Bdynamic",
	}
)

// -Bstatic/-Bdynamic are positional and stateful in GNU linkers. Each
// library therefore gets exactly one mode switch, at the very end: every
// occurrence of it is removed first and the toggle plus the library are
// appended. This happens even if the library was not on the command line.
func processLinkFlags(builder *commandBuilder) {
	links := builder.directives.links
	for _, d := range links {
		switch d.kind {
		case staticLinkCompilerDirective:
			setLinkMode(builder, compilerLinkStyle, true, d.value)
		case dynamicLinkCompilerDirective:
			setLinkMode(builder, compilerLinkStyle, false, d.value)
		}
	}
	for _, d := range links {
		switch d.kind {
		case staticLinkDirective:
			setLinkMode(builder, linkerLinkStyle, true, d.value)
		case dynamicLinkDirective:
			setLinkMode(builder, linkerLinkStyle, false, d.value)
		}
	}
}

func setLinkMode(builder *commandBuilder, style linkStyle, static bool, lib string) {
	linkedLib := style.libPrefix + lib
	newArgs := make([]builderArg, 0, len(builder.args)+2)
	for _, arg := range builder.args {
		if arg.linkDirective && arg.value == linkedLib {
			// Appended by an earlier directive for the same library: drop
			// its toggle too, so only the last mode remains.
			if n := len(newArgs); n > 0 && newArgs[n-1].linkDirective && style.isToggle(newArgs[n-1].value) {
				newArgs = newArgs[:n-1]
			}
			continue
		}
		if arg.rewritable() && !arg.linkDirective && arg.value == lib {
			continue
		}
		newArgs = append(newArgs, arg)
	}
	toggle := style.dynamicToggle
	if static {
		toggle = style.staticToggle
	}
	builder.args = newArgs
	builder.addPostUserArgs(
		builderArg{value: toggle, linkDirective: true},
		builderArg{value: linkedLib, linkDirective: true})
}

func (style linkStyle) isToggle(value string) bool {
	return value == style.staticToggle || value == style.dynamicToggle
}
