package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"resume-parser/internal/config"
	"resume-parser/internal/converter"
	"resume-parser/internal/llm"
	"resume-parser/internal/logging"
	"resume-parser/internal/resume"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s [-config path] [-markdown-only] <file>\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
	markdownOnly := flag.Bool("markdown-only", false, "print the converted Markdown without calling the LLM")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	os.Exit(run(*configPath, flag.Arg(0), *markdownOnly))
}

func run(configPath, path string, markdownOnly bool) int {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}

	// stdout carries the JSON result only
	cfg.Logging.Output = "stderr"
	for i := range cfg.Logging.Adapters {
		if cfg.Logging.Adapters[i].Type != "stdout" {
			continue
		}
		if cfg.Logging.Adapters[i].Options == nil {
			cfg.Logging.Adapters[i].Options = make(map[string]interface{})
		}
		cfg.Logging.Adapters[i].Options["stream"] = "stderr"
	}
	cfg.LLM.SkipHealthCheck = true

	if err := logging.InitializeLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logging: %v\n", err)
		return 1
	}
	defer logging.CloseLogging()

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conv := converter.NewService(cfg)
	filename := filepath.Base(path)

	if markdownOnly {
		markdown, err := conv.ConvertDocument(ctx, content, filename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "conversion failed: %v\n", err)
			return 1
		}
		return printJSON(map[string]string{"markdown": markdown})
	}

	llmManager := llm.NewManager(cfg)
	if err := llmManager.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start LLM provider: %v\n", err)
		return 1
	}
	defer llmManager.Stop()

	ctx, cancel := context.WithTimeout(ctx, cfg.Server.ParseTimeout)
	defer cancel()

	result, err := resume.NewService(cfg, conv, llmManager).ParseResume(ctx, content, filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resume parsing failed: %v\n", err)
		return 1
	}

	return printJSON(result.Resume)
}

func printJSON(v interface{}) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode result: %v\n", err)
		return 1
	}
	return 0
}
