package main

import (
	"context"
	"fmt"
	"os"

	"task-planner/internal/cli"
	"task-planner/internal/config"
)

func main() {
	env := config.GetEnvironment()

	build := func(ctx context.Context, cfg *config.Config) (*cli.App, func(), error) {
		return cli.Bootstrap(ctx, cfg, env, os.Stdout, os.Stderr)
	}

	root := cli.NewRootCommand(config.NewLoader(), build)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
