// qpaper-extract runs the extraction pipeline over layout-engine output
// stored on disk and prints the questions as JSON. No database, no server;
// useful for tuning the heuristics against a corpus of papers.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/shikshalabs/qpaper/internal/common"
	"github.com/shikshalabs/qpaper/internal/llm"
	"github.com/shikshalabs/qpaper/internal/llm/openai"
	"github.com/shikshalabs/qpaper/internal/ocr"
	"github.com/shikshalabs/qpaper/internal/pipeline"
)

func main() {
	var (
		input    = flag.String("input", "", "path to a JSON file holding the shard array")
		strategy = flag.String("strategy", "HEURISTIC", "extraction strategy: HEURISTIC or AI_ASSISTED")
		pretty   = flag.Bool("pretty", true, "indent the JSON output")
	)
	flag.Parse()

	logger := common.NewLogger()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: qpaper-extract -input shards.json [-strategy HEURISTIC]")
		os.Exit(2)
	}

	strat, err := pipeline.ParseStrategy(*strategy)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	data, err := os.ReadFile(*input)
	if err != nil {
		logger.Error("failed to read input", "path", *input, "error", err)
		os.Exit(1)
	}

	shards, err := decodeShards(data)
	if err != nil {
		logger.Error("failed to decode input", "path", *input, "error", err)
		os.Exit(1)
	}

	var segmenter llm.PageSegmenter
	if strat == pipeline.StrategyAIAssisted {
		cfg := common.LoadConfig()
		if cfg.LLM.APIKey == "" {
			fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required for the AI_ASSISTED strategy")
			os.Exit(2)
		}
		segmenter = openai.NewClient(openai.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			Timeout:     cfg.LLM.Timeout,
		}, logger)
	}

	extractor := pipeline.NewExtractor(logger, segmenter)
	questions, err := extractor.Run(context.Background(), shards, strat)
	if err != nil {
		logger.Error("extraction failed", "error", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(questions); err != nil {
		logger.Error("failed to encode output", "error", err)
		os.Exit(1)
	}
}

// decodeShards accepts either a bare shard array or a single shard object.
func decodeShards(data []byte) ([]ocr.Shard, error) {
	var shards []ocr.Shard
	if err := json.Unmarshal(data, &shards); err == nil {
		return shards, nil
	}
	var single ocr.Shard
	if err := json.Unmarshal(data, &single); err != nil {
		return nil, err
	}
	return []ocr.Shard{single}, nil
}
