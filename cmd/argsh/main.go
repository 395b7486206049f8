// SPDX-License-Identifier: MPL-2.0

// Command argsh is the demo front end: it exposes a sample driver object
// through the adapter, turning its methods into a CLI and an interactive
// shell. Behavior is configured through flags, environment variables with
// the ARGSH prefix, and an optional config file.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/jonasehrlich/argparse-shell/pkg/argsh"
)

var version = "dev"

func main() {
	flags := pflag.NewFlagSet("argsh", pflag.ContinueOnError)
	verbose := flags.BoolP("verbose", "v", false, "enable verbose logging")
	sshListen := flags.String("ssh-listen", "", "serve the interactive shell over SSH on this address")
	flags.ParseErrorsWhitelist.UnknownFlags = true
	// The generated CLI owns argv; global flags are parsed leniently ahead
	// of dispatch and again by the root command.
	_ = flags.Parse(os.Args[1:])

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.WarnLevel)
	}

	storeNS, err := argsh.Scan(&Store{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	sh, err := argsh.New("argsh", NewDriver(),
		argsh.WithPrompt(cfg.Prompt),
		argsh.WithIntro(cfg.Intro),
		argsh.WithDescription("Demo shell exposing a sample driver object"),
		argsh.WithVersion(version),
		argsh.WithLogger(logger),
		argsh.WithGlobalFlags(flags),
		argsh.WithScan(argsh.WithNested("Store", storeNS)),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	if addr := firstNonEmpty(*sshListen, cfg.SSHListen); addr != "" {
		logger.Info("serving interactive shell over SSH", "address", addr)
		if err := sh.ServeSSH(context.Background(), addr, cfg.HostKeyPath); err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}
	sh.Main()
}

// appConfig is the demo's own configuration, resolved by viper from file and
// environment.
type appConfig struct {
	Prompt      string
	Intro       string
	SSHListen   string
	HostKeyPath string
}

func loadConfig() (appConfig, error) {
	v := viper.New()
	v.SetDefault("prompt", "argsh> ")
	v.SetDefault("intro", "")
	v.SetDefault("ssh_listen", "")
	v.SetDefault("host_key_path", defaultHostKeyPath())

	v.SetEnvPrefix("ARGSH")
	v.AutomaticEnv()

	v.SetConfigName("argsh")
	v.SetConfigType("yaml")
	if home, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(home + "/argsh")
	}
	v.AddConfigPath(".")

	cfg := appConfig{
		Prompt:      v.GetString("prompt"),
		Intro:       v.GetString("intro"),
		SSHListen:   v.GetString("ssh_listen"),
		HostKeyPath: v.GetString("host_key_path"),
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	cfg.Prompt = v.GetString("prompt")
	cfg.Intro = v.GetString("intro")
	cfg.SSHListen = v.GetString("ssh_listen")
	cfg.HostKeyPath = v.GetString("host_key_path")
	return cfg, nil
}

func defaultHostKeyPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".ssh/argsh_host_key"
	}
	return dir + "/argsh/host_key"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
