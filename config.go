// Copyright 2019 The Chromium OS Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package main

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type config struct {
	// Command to run. If set, every argument is forwarded to it.
	command     string
	justPrint   bool
	beforePrint bool
	// Defaults for the directives of the same name.
	workDir        string
	redirectStdout string
	redirectStderr string
	logFile        string
	logLevel       string
	// Replace the wrapper process with the command where possible.
	useExec bool
	// Command lines longer than this go through a response file. 0 disables.
	responseFileThreshold int
	// -clw- directives read from the config file, applied before the
	// command line.
	directives []string
}

// DefaultCommand can be set via a linker flag.
// E.g. go build -ldflags '-X main.DefaultCommand=/usr/bin/gcc-12'.
var DefaultCommand = ""

// The YAML config file next to the wrapper binary.
type fileConfig struct {
	Command               string   `yaml:"command"`
	JustPrint             *bool    `yaml:"just_print"`
	BeforePrint           *bool    `yaml:"before_print"`
	WorkDir               string   `yaml:"work_dir"`
	RedirectStdout        string   `yaml:"redirect_stdout"`
	RedirectStderr        string   `yaml:"redirect_stderr"`
	LogFile               string   `yaml:"log_file"`
	LogLevel              string   `yaml:"log_level"`
	Exec                  *bool    `yaml:"exec"`
	ResponseFileThreshold *int     `yaml:"response_file_threshold"`
	Directives            []string `yaml:"directives"`
}

// Returns the configuration for the wrapper at wrapperPath. Later sources
// win: linker flag, environment, config file.
func getRealConfig(env env, wrapperPath string) (*config, error) {
	cfg := &config{command: DefaultCommand}
	if err := applyEnvConfig(env, cfg); err != nil {
		return nil, err
	}
	absWrapperPath, err := getAbsWrapperPath(env, wrapperPath)
	if err != nil {
		return nil, err
	}
	base := strings.TrimSuffix(absWrapperPath, ".exe")
	if err := applyConfigFile(cfg, base); err != nil {
		return nil, err
	}
	if cfg.command == "" {
		// Replacement mode: the real tool was renamed to <name>-wrapper
		// and the wrapper took its place.
		cfg.command = findReplacedCommand(absWrapperPath)
	}
	return cfg, nil
}

func applyEnvConfig(env env, cfg *config) error {
	if v := env.getenv("CLW_OPT_COMMAND"); v != "" {
		cfg.command = v
	}
	cfg.justPrint = parseEnvBool(env.getenv("CLW_OPT_JUST_PRINT"))
	cfg.beforePrint = parseEnvBool(env.getenv("CLW_OPT_BEFORE_PRINT"))
	cfg.useExec = parseEnvBool(env.getenv("CLW_OPT_EXEC"))
	cfg.redirectStdout = env.getenv("CLW_OPT_REDIRECT_STDOUT")
	cfg.redirectStderr = env.getenv("CLW_OPT_REDIRECT_STDERR")
	cfg.logFile = env.getenv("CLW_LOG_FILE")
	cfg.logLevel = env.getenv("CLW_LOG_LEVEL")
	if v := env.getenv("CLW_OPT_RESPONSE_FILE_THRESHOLD"); v != "" {
		threshold, err := strconv.Atoi(v)
		if err != nil || threshold < 0 {
			return newConfigErrorf("invalid CLW_OPT_RESPONSE_FILE_THRESHOLD %q", v)
		}
		cfg.responseFileThreshold = threshold
	}
	return nil
}

func parseEnvBool(value string) bool {
	switch strings.ToLower(value) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Reads <base>-clw-config.yaml, or <base>-clw-config.txt if there is no YAML
// file. The text file holds one directive per line; other lines are ignored.
func applyConfigFile(cfg *config, base string) error {
	yamlPath := base + "-clw-config.yaml"
	content, err := os.ReadFile(yamlPath)
	if err == nil {
		return applyYAMLConfig(cfg, yamlPath, content)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return newFileError(yamlPath, err)
	}

	txtPath := base + "-clw-config.txt"
	content, err = os.ReadFile(txtPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return newFileError(txtPath, err)
	}
	for _, line := range strings.Split(strings.ReplaceAll(string(content), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, directivePrefix) {
			cfg.directives = append(cfg.directives, line)
		}
	}
	return nil
}

func applyYAMLConfig(cfg *config, path string, content []byte) error {
	var fileCfg fileConfig
	if err := yaml.Unmarshal(content, &fileCfg); err != nil {
		return newConfigErrorf("%s: %s", path, err)
	}
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setString(&cfg.command, fileCfg.Command)
	setBool(&cfg.justPrint, fileCfg.JustPrint)
	setBool(&cfg.beforePrint, fileCfg.BeforePrint)
	setString(&cfg.workDir, fileCfg.WorkDir)
	setString(&cfg.redirectStdout, fileCfg.RedirectStdout)
	setString(&cfg.redirectStderr, fileCfg.RedirectStderr)
	setString(&cfg.logFile, fileCfg.LogFile)
	setString(&cfg.logLevel, fileCfg.LogLevel)
	setBool(&cfg.useExec, fileCfg.Exec)
	if fileCfg.ResponseFileThreshold != nil {
		if *fileCfg.ResponseFileThreshold < 0 {
			return newConfigErrorf("%s: response_file_threshold must not be negative", path)
		}
		cfg.responseFileThreshold = *fileCfg.ResponseFileThreshold
	}
	for _, d := range fileCfg.Directives {
		if !strings.HasPrefix(d, directivePrefix) {
			return newConfigErrorf("%s: %q is not a %s directive", path, d, directivePrefix)
		}
		cfg.directives = append(cfg.directives, d)
	}
	return nil
}

func findReplacedCommand(absWrapperPath string) string {
	replaced := absWrapperPath + "-wrapper"
	if base, ok := strings.CutSuffix(absWrapperPath, ".exe"); ok {
		replaced = base + "-wrapper.exe"
	}
	if info, err := os.Stat(replaced); err == nil && !info.IsDir() {
		return replaced
	}
	return ""
}
