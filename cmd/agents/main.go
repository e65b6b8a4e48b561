package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/hovergrid/preflight/internal/agents"
	"github.com/hovergrid/preflight/pkg/config"
	pkgerrors "github.com/hovergrid/preflight/pkg/errors"
	"github.com/hovergrid/preflight/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "agents"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "validate", "command: validate|list")
	dir := flag.String("dir", "agents", "agent definitions directory")
	flag.Parse()

	if !knownCommand(*cmd) {
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(2)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "agents",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"cmd": *cmd, "dir": *dir})

	loader, err := agents.NewLoader()
	requireResource(ctx, logg, "agent loader", err)

	defs, err := loader.LoadDir(*dir)
	if err != nil {
		logg.Error(ctx, "agent definitions failed validation", err)
		fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
		os.Exit(1)
	}

	switch *cmd {
	case "validate":
		fmt.Printf("%d agent definition(s) valid\n", len(defs))

	case "list":
		for _, def := range defs {
			tools := "default"
			if len(def.Tools) > 0 {
				tools = strings.Join(def.Tools, ",")
			}
			fmt.Printf("%-24s model=%-12s color=%-8s tools=%s\n", def.Name, def.Model, def.Color, tools)
			fmt.Printf("    %s\n", def.Description)
		}
	}
}

func knownCommand(cmd string) bool {
	switch cmd {
	case "validate", "list":
		return true
	}
	return false
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	meta := pkgerrors.MetadataFor(pkgerrors.Classify(err))
	logg.Error(ctx, fmt.Sprintf("resource not working: %s (%s)", resource, meta.PublicMessage), err)
	os.Exit(meta.ExitCode)
}
