package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/term"

	"github.com/shindakun/campuslogin/internal/cli"
	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/logger"
)

func main() {
	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = "./config.yaml"
	}

	configPath := flag.String("config", defaultConfig, "path to the configuration file")
	verbose := flag.Bool("v", false, "log diagnostics to stderr")
	flag.Parse()

	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to load configuration:", err)
		os.Exit(1)
	}

	// User-facing messages are printed by the terminal front-end; the
	// log only carries diagnostics
	logCfg := cfg.Logging
	if !*verbose {
		logCfg.Level = "warn"
	}

	app := &cli.App{
		Config: cfg,
		Logger: logger.New(logCfg, os.Stderr),
		In:     os.Stdin,
		Out:    os.Stdout,
		ErrOut: os.Stderr,
	}

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		app.ReadSecret = func() (string, error) {
			b, err := term.ReadPassword(fd)
			return string(b), err
		}
	}

	flag.Usage = app.Usage

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := app.Run(ctx, flag.Args())
	stop()
	os.Exit(code)
}
