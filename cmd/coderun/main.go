package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	runnerconfig "coderun/internal/runner/config"
	"coderun/internal/runner/language"
	"coderun/internal/runner/service"
	"coderun/internal/runner/workspace"
	appErr "coderun/pkg/errors"
	"coderun/pkg/utils/logger"
)

// cliConfig is the subset of the service config the CLI understands.
type cliConfig struct {
	runnerconfig.EngineConfig `yaml:",inline"`

	Logger logger.Config `yaml:"logger"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("coderun", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to config file (optional)")
	lang := fs.String("lang", "", "Language tag: "+supportedTags())
	file := fs.String("file", "", "Source file to run, - for stdin")
	input := fs.String("input", "", "Text passed to the program on stdin")
	inputFile := fs.String("input-file", "", "File passed to the program on stdin")
	pretty := fs.Bool("pretty", false, "Pretty print JSON result")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *lang == "" || *file == "" {
		fs.Usage()
		return 2
	}

	var cfg cliConfig
	if *configPath != "" {
		if err := runnerconfig.LoadYAML(*configPath, &cfg); err != nil {
			fmt.Fprintf(stderr, "load config failed: %v\n", err)
			return 1
		}
	}
	// Keep stdout clean for the JSON result.
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stderr"
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "warn"
	}
	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(stderr, "init logger failed: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	code, err := readSource(*file, stdin)
	if err != nil {
		fmt.Fprintf(stderr, "read source failed: %v\n", err)
		return 1
	}
	programInput := *input
	if *inputFile != "" {
		data, err := os.ReadFile(*inputFile)
		if err != nil {
			fmt.Fprintf(stderr, "read input failed: %v\n", err)
			return 1
		}
		programInput = string(data)
	}

	svc, err := runnerconfig.NewService(cfg.EngineConfig, nil)
	if err != nil {
		fmt.Fprintf(stderr, "init execution service failed: %v\n", err)
		return 1
	}

	result, err := svc.Execute(context.Background(), service.Request{
		Language: *lang,
		Code:     code,
		Input:    programInput,
	})
	if err != nil {
		fmt.Fprintf(stderr, "%s\n", appErr.GetError(err).Error())
		return 1
	}

	enc := json.NewEncoder(stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "write result failed: %v\n", err)
		return 1
	}
	if result.Status != service.StatusOK {
		return 3
	}
	return 0
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	return string(data), err
}

func supportedTags() string {
	registry, err := language.NewRegistry(workspace.Layout{}, nil)
	if err != nil {
		return ""
	}
	supported := registry.Supported()
	tags := make([]string, 0, len(supported))
	for _, id := range supported {
		tags = append(tags, string(id))
	}
	return strings.Join(tags, ", ")
}
