package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/calvinmclean/spin360/config"
	"github.com/calvinmclean/spin360/controller"
)

const usage = `Usage: spin360 [flags] [command]

Commands:
  run              forward stdin to the rig and print its output (default)
  exec CMD...      send each firmware command and print the response
  dump             print every param and its stored value as YAML
  set NAME VALUE   store a new value for a param
  reset            store the default value of every param

Flags:
`

func main() {
	var catalogPath string
	flag.StringVar(&catalogPath, "catalog", "", "YAML catalog of params. Default is the built-in SPIN360 table")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("error loading config", "error", err)
		os.Exit(1)
	}
	if catalogPath != "" {
		cfg.CatalogPath = catalogPath
	}
	logger := config.SetupLogger(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	args := flag.Args()
	if len(args) == 0 {
		args = []string{"run"}
	}

	switch args[0] {
	case "run":
		err = runCLI(ctx, cfg, logger)
	case "exec":
		err = runExec(ctx, cfg, logger, args[1:])
	case "dump":
		err = withParams(cfg, func(p *paramStore) error { return p.Dump(os.Stdout) })
	case "set":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		err = withParams(cfg, func(p *paramStore) error { return p.Set(args[1], args[2]) })
	case "reset":
		err = withParams(cfg, func(p *paramStore) error { return p.Reset() })
	default:
		flag.Usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("command failed", "command", args[0], "error", err)
		os.Exit(1)
	}
}

func runCLI(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	c, err := controller.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Run(ctx, os.Stdin, os.Stdout)
}

func runExec(ctx context.Context, cfg *config.Config, logger *slog.Logger, cmds []string) error {
	c, err := controller.NewFromConfig(cfg, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	for _, cmd := range cmds {
		ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
		resp, err := c.Exec(ctx, cmd)
		cancel()
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		if resp != "" {
			fmt.Println(strings.TrimSpace(resp))
		}
	}
	return nil
}
