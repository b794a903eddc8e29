// Command columns lists a project's columns with their node IDs, so the
// board column identifiers can be copied into the notifier configuration.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/teamtools/boardnotify/internal/config"
	"github.com/teamtools/boardnotify/internal/github"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "columns:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yml", "path to the configuration file")
	project := flag.Int("project", 0, "project number to inspect")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *project == 0 {
		return fmt.Errorf("-project is required")
	}
	if cfg.GitHub.Organization == "" {
		return fmt.Errorf("github.organization must be set in the config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	gh := github.NewClient(cfg.GitHub.Token)
	columns, err := gh.ProjectColumns(ctx, cfg.GitHub.Organization, *project)
	if err != nil {
		return err
	}
	if len(columns) == 0 {
		fmt.Printf("no columns found for project %d\n", *project)
		return nil
	}

	fmt.Printf("Columns for project %d:\n", *project)
	for _, column := range columns {
		fmt.Printf("- %s (%s)\n", column.Name, column.ID)
	}
	return nil
}
