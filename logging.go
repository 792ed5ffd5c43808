// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Creates the diagnostic logger. With a log file, JSON lines are appended to
// it; otherwise the wrapper's stderr gets console output, warnings and up.
// A log file that can't be opened falls back to stderr with a warning.
// The child's output never goes through here.
func newLogger(env env, logFile string, level string) (logger *zap.Logger, closer func(), err error) {
	if strings.EqualFold(level, "off") {
		return zap.NewNop(), func() {}, nil
	}
	minLevel := zapcore.WarnLevel
	if logFile != "" {
		minLevel = zapcore.InfoLevel
	}
	if level != "" {
		if minLevel, err = zapcore.ParseLevel(level); err != nil {
			return nil, nil, newConfigErrorf("invalid log level %q", level)
		}
	}

	var core zapcore.Core
	closeSink := func() {}
	var openErr error
	if logFile != "" {
		if !filepath.IsAbs(logFile) {
			logFile = filepath.Join(env.getwd(), logFile)
		}
		sink, closeFile, err := zap.Open(logFile)
		if err == nil {
			closeSink = closeFile
			core = zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), sink, minLevel)
		} else {
			openErr = newFileError(logFile, err)
		}
	}
	if core == nil {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.TimeKey = ""
		core = zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(env.stderr()), minLevel)
	}
	logger = zap.New(core).Named("cli-wrapper")
	if openErr != nil {
		logger.Warn("log file unavailable, logging to stderr", zap.Error(openErr))
	}
	return logger, func() {
		_ = logger.Sync()
		closeSink()
	}, nil
}
