// Command podium rates a roster of surnames and prints every surname that
// shares the top rating.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/ahrav/go-podium/infrastructure/partition"
	"github.com/ahrav/go-podium/infrastructure/scorers"
	"github.com/ahrav/go-podium/internal/application"
	"github.com/ahrav/go-podium/internal/domain"
	"github.com/ahrav/go-podium/internal/logging"
)

// roster is the built-in surname table.
var roster = []struct {
	name   string
	rating int64
}{
	{"Ivanov", 5},
	{"Petrov", 5},
	{"Sidorov", 3},
	{"Golubev", 7},
	{"Spiridonov", 1},
	{"Kukushkin", 7},
	{"Antonov", 3},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "podium: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("podium", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "Engine configuration file (YAML)")
		near       = fs.String("near", "", "Rate surnames by edit distance to this name instead of the roster rating")
		logLevel   = fs.String("log-level", "", "Override the configured log level")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	logger, err := logging.New(cfg.Logging, stderr)
	if err != nil {
		return err
	}

	eng, err := application.NewEngine(cfg, application.WithLogger(logger))
	if err != nil {
		return err
	}

	table := make(map[string]int64, len(roster))
	names := make([]string, 0, len(roster))
	for _, r := range roster {
		table[r.name] = r.rating
		names = append(names, r.name)
	}

	var scorer domain.FallibleScorer[string]
	if *near != "" {
		scorer, err = scorers.Similarity(*near, scorers.DefaultSimilarityConfig())
		if err != nil {
			return err
		}
	} else {
		scorer = scorers.Lookup(table)
	}

	winners, err := application.CollectWinnersFallible(ctx, eng, names, scorer)
	if err != nil {
		return err
	}
	logger.Info().
		Str("engine", eng.Name()).
		Int("candidates", len(names)).
		Strs("winners", winners).
		Msg("winners collected")

	for _, line := range formatWinners(winners, table) {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

// loadConfig reads path, or returns the built-in configuration when path is
// empty.
func loadConfig(path string) (application.EngineConfig, error) {
	if path != "" {
		return application.LoadConfigFile(path)
	}

	cfg := application.DefaultEngineConfig("podium")
	cfg.Partitioner = application.PartitionerConfig{
		Type:       partition.TypeChunked,
		Parameters: map[string]any{"partitions": 3},
	}
	cfg.Combine = application.ScheduleTree
	cfg.Logging.Level = "warn"
	cfg.Logging.Format = logging.FormatConsole
	return cfg, nil
}

// formatWinners renders Name=rating lines in collation order, so the
// output is stable although the reduction is unordered.
func formatWinners(winners []string, table map[string]int64) []string {
	lines := make([]string, 0, len(winners))
	for _, name := range winners {
		lines = append(lines, fmt.Sprintf("%s=%d", name, table[name]))
	}
	collate.New(language.Und).SortStrings(lines)
	return lines
}
