// Package commands implements the spantree CLI commands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spantree/spantree/internal/config"
	"github.com/spantree/spantree/internal/dataset"
	"github.com/spantree/spantree/pkg/spanstore"
)

// uint32Bits is the bit size passed to ParseUint for span positions.
const uint32Bits = 32

// rangeSeparator splits the low and high bounds of an --overlap argument.
const rangeSeparator = ":"

// loadCommandConfig loads the config and installs the logger.
func loadCommandConfig(configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	setupLogger(cfg)

	return cfg, nil
}

// setupLogger installs the process-wide slog logger per the config.
func setupLogger(cfg *config.Config) {
	level := parseLogLevel(cfg.Log.Level)

	var handler slog.Handler
	if cfg.Log.JSON {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}

	slog.SetDefault(slog.New(handler))
}

// parseLogLevel maps a config string to a slog level, defaulting to info.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadStore loads a dataset into a fresh store. The flag value wins over
// the configured dataset path.
func loadStore(cfg *config.Config, flagPath string) (*spanstore.Store, error) {
	path := flagPath
	if path == "" {
		path = cfg.Dataset
	}

	if path == "" {
		return nil, fmt.Errorf("no dataset given: pass --dataset or set it in the config")
	}

	spans, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}

	store := spanstore.New()
	for _, span := range spans {
		store.Add(span)
	}

	slog.Debug("dataset loaded", "path", path, "spans", store.Len())

	return store, nil
}

// parsePoint parses a span position.
func parsePoint(arg string) (uint32, error) {
	point, err := strconv.ParseUint(arg, 10, uint32Bits)
	if err != nil {
		return 0, fmt.Errorf("invalid point %q: %w", arg, err)
	}

	return uint32(point), nil
}

// parseRange parses a "low:high" overlap argument.
func parseRange(arg string) (uint32, uint32, error) {
	lowPart, highPart, found := strings.Cut(arg, rangeSeparator)
	if !found {
		return 0, 0, fmt.Errorf("invalid range %q: want low%shigh", arg, rangeSeparator)
	}

	low, err := parsePoint(lowPart)
	if err != nil {
		return 0, 0, err
	}

	high, err := parsePoint(highPart)
	if err != nil {
		return 0, 0, err
	}

	if high < low {
		return 0, 0, fmt.Errorf("invalid range %q: high before low", arg)
	}

	return low, high, nil
}
