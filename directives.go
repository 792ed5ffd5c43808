// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"strings"
)

const directivePrefix = "-clw-"

type directiveKind int32

const (
	justPrintDirective directiveKind = iota
	beforePrintDirective
	workDirDirective
	redirectStdoutDirective
	redirectStderrDirective
	logFileDirective
	commandDirective
	staticLinkCompilerDirective
	dynamicLinkCompilerDirective
	staticLinkDirective
	dynamicLinkDirective
	removeDirective
	replaceDirective
	moveFrontDirective
	moveFrontBeforeDirective
	moveFrontAfterDirective
	moveBackDirective
	moveBackBeforeDirective
	moveBackAfterDirective
)

type directive struct {
	kind directiveKind
	// The library, path, argument or match suffix.
	value string
	// Replacement for replace rules, neighbour suffix for move rules.
	context string
}

type directiveSyntax int32

const (
	// -clw-<key>
	flagSyntax directiveSyntax = iota
	// -clw-<key>=<value>
	valueSyntax
	// -clw-<key>-<context>=<value>
	contextSyntax
)

var directiveGrammar = []struct {
	key    string
	kind   directiveKind
	syntax directiveSyntax
}{
	{"just-print", justPrintDirective, flagSyntax},
	{"before-print", beforePrintDirective, flagSyntax},
	{"work-dir", workDirDirective, valueSyntax},
	{"redirect-stdout", redirectStdoutDirective, valueSyntax},
	{"redirect-stderr", redirectStderrDirective, valueSyntax},
	{"log-file", logFileDirective, valueSyntax},
	{"command", commandDirective, valueSyntax},
	{"static-link-compiler", staticLinkCompilerDirective, valueSyntax},
	{"dynamic-link-compiler", dynamicLinkCompilerDirective, valueSyntax},
	{"static-link", staticLinkDirective, valueSyntax},
	{"dynamic-link", dynamicLinkDirective, valueSyntax},
	{"remove", removeDirective, valueSyntax},
	{"replace", replaceDirective, contextSyntax},
	{"move-front", moveFrontDirective, valueSyntax},
	{"move-front-before", moveFrontBeforeDirective, contextSyntax},
	{"move-front-after", moveFrontAfterDirective, contextSyntax},
	{"move-back", moveBackDirective, valueSyntax},
	{"move-back-before", moveBackBeforeDirective, contextSyntax},
	{"move-back-after", moveBackAfterDirective, contextSyntax},
}

// Parses a single token. matched is false if the token is not a known
// directive, which includes tokens without the prefix.
func parseDirective(token string) (d directive, matched bool, err error) {
	key := strings.TrimPrefix(token, directivePrefix)
	if len(key) == len(token) {
		return directive{}, false, nil
	}
	for _, g := range directiveGrammar {
		switch g.syntax {
		case flagSyntax:
			if key == g.key {
				return directive{kind: g.kind}, true, nil
			}
		case valueSyntax:
			value, ok := strings.CutPrefix(key, g.key+"=")
			if !ok {
				continue
			}
			if value == "" {
				return directive{}, true, newConfigErrorf("missing value in %s", token)
			}
			return directive{kind: g.kind, value: value}, true, nil
		case contextSyntax:
			rest, ok := strings.CutPrefix(key, g.key+"-")
			if !ok {
				continue
			}
			context, value, ok := strings.Cut(rest, "=")
			if !ok {
				// No value at all: not this grammar.
				continue
			}
			if context == "" || value == "" {
				return directive{}, true, newConfigErrorf("malformed directive %s", token)
			}
			if g.kind == replaceDirective {
				// -clw-replace-<before>=<after>
				return directive{kind: g.kind, value: context, context: value}, true, nil
			}
			// -clw-move-*-<context>=<value>
			return directive{kind: g.kind, value: value, context: context}, true, nil
		}
	}
	return directive{}, false, nil
}

// directiveSet maps every directive kind to the values seen, in order.
type directiveSet struct {
	byKind map[directiveKind][]directive
	// Declaration order across link kinds and across move kinds.
	links []directive
	moves []directive
}

func newDirectiveSet() *directiveSet {
	return &directiveSet{byKind: map[directiveKind][]directive{}}
}

func (set *directiveSet) add(d directive) {
	set.byKind[d.kind] = append(set.byKind[d.kind], d)
	switch d.kind {
	case staticLinkCompilerDirective, dynamicLinkCompilerDirective, staticLinkDirective, dynamicLinkDirective:
		set.links = append(set.links, d)
	case moveFrontDirective, moveFrontBeforeDirective, moveFrontAfterDirective,
		moveBackDirective, moveBackBeforeDirective, moveBackAfterDirective:
		set.moves = append(set.moves, d)
	}
}

func (set *directiveSet) flag(kind directiveKind) bool {
	return len(set.byKind[kind]) > 0
}

// Last write wins.
func (set *directiveSet) scalar(kind directiveKind) string {
	list := set.byKind[kind]
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1].value
}

func (set *directiveSet) list(kind directiveKind) []directive {
	return set.byKind[kind]
}

func (set *directiveSet) count() int {
	n := 0
	for _, list := range set.byKind {
		n += len(list)
	}
	return n
}

// Splits tokens into directives and pass-through arguments. Unrecognized
// -clw- tokens stay in place, tagged so that rules leave them alone.
func parseDirectives(set *directiveSet, tokens []string) ([]builderArg, error) {
	args := make([]builderArg, 0, len(tokens))
	for _, token := range tokens {
		d, matched, err := parseDirective(token)
		if err != nil {
			return nil, err
		}
		if matched {
			set.add(d)
			continue
		}
		args = append(args, builderArg{
			value:        token,
			unrecognized: strings.HasPrefix(token, directivePrefix),
		})
	}
	return args, nil
}

// Creates the builder for the expanded command line. Directives from the
// config file are parsed first so the command line can override them.
func newCommandBuilder(cfg *config, tokens []string) (*commandBuilder, error) {
	set := newDirectiveSet()
	cfgArgs, err := parseDirectives(set, cfg.directives)
	if err != nil {
		return nil, err
	}
	args, err := parseDirectives(set, tokens)
	if err != nil {
		return nil, err
	}
	if len(cfgArgs) > 0 && len(args) > 0 {
		args = append(args[:1], append(cfgArgs, args[1:]...)...)
	} else if len(cfgArgs) > 0 {
		args = cfgArgs
	}
	return &commandBuilder{
		args:       args,
		directives: set,
	}, nil
}
