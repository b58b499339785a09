// Command laureate runs the exploratory analysis of the laureate record set:
// summaries go to stdout, charts to the output directory, logs to stderr.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/paveg/laureate/internal/analysis"
	"github.com/paveg/laureate/internal/config"
	"github.com/paveg/laureate/internal/logger"
	"github.com/paveg/laureate/internal/version"
)

// Exit codes.
const (
	exitOK = iota
	exitFatal
	exitRender
)

// Option defines command line options. Unset options keep the value from the
// config file, the environment or the defaults, in that order of precedence.
type Option struct {
	Data    string `short:"d" long:"data" description:"record file to analyse (default: datasets/nobel.csv)"`
	Out     string `short:"o" long:"out" description:"directory receiving the charts (default: figures)"`
	Config  string `short:"c" long:"config" description:"YAML or JSON config file"`
	Debug   bool   `long:"debug" description:"debug logging"`
	Version bool   `short:"v" long:"version" description:"display the version and exit"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opt, err := parseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && errors.Is(flagsErr.Type, flags.ErrHelp) {
			fmt.Fprintln(stdout, err)
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitFatal
	}

	if opt.Version {
		fmt.Fprint(stdout, version.Info().String())
		return exitOK
	}

	cfg, err := loadConfig(opt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitFatal
	}

	log := logger.New(logger.Options{Level: cfg.LogLevel, Writer: stderr})
	log.Debug("starting", slog.Any("build", version.Info()))

	res, err := analysis.New(cfg, stdout, log).Run()
	if res != nil {
		defer res.Release()
	}
	if err != nil {
		return exitFatal
	}
	if len(res.RenderErrors) > 0 {
		return exitRender
	}
	return exitOK
}

func parseArgs(args []string) (*Option, error) {
	opt := &Option{}
	parser := flags.NewParser(opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = "laureate"

	rest, err := parser.ParseArgs(args)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", rest)
	}
	return opt, nil
}

// loadConfig layers the config file, LAUREATE_* variables and flags over the defaults.
func loadConfig(opt *Option) (config.Config, error) {
	cfg := config.NewConfig()
	if opt.Config != "" {
		fileCfg, err := config.LoadFromFile(opt.Config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = fileCfg
	}
	cfg = config.ApplyEnv(cfg)

	if opt.Data != "" {
		cfg.DataPath = opt.Data
	}
	if opt.Out != "" {
		cfg.OutputDir = opt.Out
	}
	if opt.Debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
