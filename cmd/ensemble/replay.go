package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/drakos74/coin-ensemble/infra/config"
	coin "github.com/drakos74/coin-ensemble/internal"
	"github.com/drakos74/coin-ensemble/internal/api"
	"github.com/drakos74/coin-ensemble/internal/metrics"
	"github.com/drakos74/coin-ensemble/internal/model"
	"github.com/drakos74/coin-ensemble/internal/notify"
	"github.com/drakos74/coin-ensemble/internal/storage"
	jsonstore "github.com/drakos74/coin-ensemble/internal/storage/file/json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const maxLine = 1024 * 1024

var (
	replayConfig  string
	replayInput   string
	replayDryRun  bool
	replayMetrics string
	replayOutput  string
	replayName    string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "replay market contexts through the engine",
	Long: `replay reads one market context json object per line and runs a decision cycle for each.

Example usage:
  ensemble replay --config infra/config/ensemble.yaml --input contexts.jsonl
  ensemble replay --input contexts.jsonl --dry-run
  ensemble replay --input contexts.jsonl --output decisions.jsonl`,
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVar(&replayConfig, "config", "", "path to the yaml config, defaults are used if empty")
	replayCmd.Flags().StringVar(&replayInput, "input", "", "path to the json-lines market contexts, '-' for stdin")
	replayCmd.Flags().BoolVar(&replayDryRun, "dry-run", false, "evaluate without updating histories or weights")
	replayCmd.Flags().StringVar(&replayMetrics, "metrics-addr", "", "address to expose prometheus metrics on")
	replayCmd.Flags().StringVar(&replayOutput, "output", "", "path to write the decisions to as json lines")
	replayCmd.Flags().StringVar(&replayName, "name", "ensemble", "engine name, the weights are stored under it")
	_ = replayCmd.MarkFlagRequired("input")
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if replayConfig != "" {
		c, err := config.Load(replayConfig)
		if err != nil {
			return err
		}
		cfg = c
	}
	if err := setupLogger(cfg.Log); err != nil {
		return err
	}

	if replayMetrics != "" {
		go func() {
			if err := metrics.Serve(replayMetrics); err != nil {
				log.Error().Err(err).Str("addr", replayMetrics).Msg("metrics server stopped")
			}
		}()
	}

	store, err := newStorage(cfg.Storage)
	if err != nil {
		return err
	}
	observer := notify.Log()
	if replayOutput != "" {
		out, err := os.Create(replayOutput)
		if err != nil {
			return fmt.Errorf("could not create output: %w", err)
		}
		defer out.Close()
		observer = notify.Chain(observer, notify.JSON(out))
	}

	engine, err := coin.NewEngine(cfg,
		coin.WithObserver(observer),
		coin.WithStorage(store),
		coin.WithName(replayName),
	)
	if err != nil {
		return err
	}

	in := os.Stdin
	if replayInput != "-" {
		f, err := os.Open(replayInput)
		if err != nil {
			return fmt.Errorf("could not open input: %w", err)
		}
		defer f.Close()
		in = f
	}

	summary, err := replay(in, engine, replayDryRun, observer)
	if err != nil {
		return err
	}
	log.Info().
		Int("contexts", summary.Contexts).
		Int("buy", summary.Actions[model.Buy]).
		Int("sell", summary.Actions[model.Sell]).
		Int("hold", summary.Actions[model.Hold]).
		Bool("dry-run", replayDryRun).
		Msg("replay finished")
	return nil
}

// newStorage picks the configured shard of the json file storage,
// or a void one if no directory is configured.
func newStorage(cfg config.Storage) (storage.Persistence, error) {
	shard := storage.VoidShard()
	if cfg.Dir != "" {
		shard = jsonstore.BlobShard(cfg.Dir, storage.WeightsLabel)
	}
	store, err := shard(cfg.Shard)
	if err != nil {
		return nil, fmt.Errorf("could not open storage: %w", err)
	}
	return store, nil
}

// Processor runs decision cycles.
type Processor interface {
	Process(mc model.MarketContext) model.Decision
	Evaluate(mc model.MarketContext) model.Decision
}

// Summary counts the replayed decisions.
type Summary struct {
	Contexts int
	Actions  map[model.Action]int
}

// replay decodes every line of the input and passes it to the processor.
// Malformed lines are logged and skipped.
// On a dry run the observer is called directly, as Evaluate does not notify.
func replay(r io.Reader, p Processor, dryRun bool, observer api.Observer) (Summary, error) {
	summary := Summary{Actions: make(map[model.Action]int)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLine)
	line := 0
	for scanner.Scan() {
		line++
		b := scanner.Bytes()
		if len(b) == 0 {
			continue
		}
		var mc model.MarketContext
		if err := json.Unmarshal(b, &mc); err != nil {
			log.Warn().Err(err).Int("line", line).Msg("skipping malformed context")
			continue
		}
		var decision model.Decision
		if dryRun {
			decision = p.Evaluate(mc)
			if err := observer(decision, nil); err != nil {
				log.Warn().Err(err).Str("decision", decision.ID).Msg("could not notify observer")
			}
		} else {
			decision = p.Process(mc)
		}
		summary.Contexts++
		summary.Actions[decision.Action]++
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("could not read input at line %d: %w", line, err)
	}
	return summary, nil
}
