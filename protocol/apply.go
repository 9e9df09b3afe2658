package protocol

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/datazip-inc/sieve/constants"
	"github.com/datazip-inc/sieve/filter"
	"github.com/datazip-inc/sieve/mapper"
	"github.com/datazip-inc/sieve/sink"
	"github.com/datazip-inc/sieve/source"
	"github.com/datazip-inc/sieve/types"
	"github.com/datazip-inc/sieve/utils"
	"github.com/datazip-inc/sieve/utils/logger"
)

var config *types.Config

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "stream the records of a source that match a filter",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "" {
			return fmt.Errorf("no config provided, use --config")
		}
		config = &types.Config{}
		return utils.UnmarshalFile(configPath, config, true)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		stats, err := runApply(ctx, config, applyOptions{
			Filter:        filterExpr,
			Output:        outputPath,
			EncryptionKey: encryptionKey,
			Unresolved:    unresolved,
			Concurrency:   viper.GetInt(constants.Concurrency),
		}, stdout)
		if err != nil {
			return err
		}

		logger.Infof("read %d records, %d matched", stats.Read, stats.Matched)
		if outputPath != "" && outputPath != "-" {
			return logger.Message(stdout, types.Message{Type: types.StatsMessage, Stats: stats})
		}
		return nil
	},
}

// applyOptions are command line overrides for the config file.
type applyOptions struct {
	Filter        string
	Output        string
	EncryptionKey string
	Unresolved    string
	Concurrency   int
}

// runApply compiles the filter before touching the source, so a malformed
// filter fails without reading anything.
func runApply(ctx context.Context, cfg *types.Config, opts applyOptions, w io.Writer) (*types.Stats, error) {
	filterCfg := cfg.Filter
	expr := utils.Ternary(opts.Filter != "", opts.Filter, filterCfg.Filter).(string)
	policy := utils.Ternary(opts.Unresolved != "", opts.Unresolved, filterCfg.Unresolved).(string)
	workers := utils.Ternary(opts.Concurrency > 0, opts.Concurrency, filterCfg.Concurrency).(int)

	match, err := filter.Build[types.Record](expr, mapper.NewRecordBinder(filterCfg),
		filter.WithUnresolvedPolicy(filter.UnresolvedPolicy(policy)))
	if err != nil {
		return nil, err
	}
	logger.Infof("applying filter %q to %s source", expr, cfg.Source.Type)

	keyring, err := utils.NewKeyring(ctx, opts.EncryptionKey)
	if err != nil {
		return nil, err
	}
	var decrypter source.Decrypter
	if keyring != nil {
		decrypter = keyring
	}

	src, err := source.NewSource(ctx, &cfg.Source, decrypter)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := src.Close(ctx); cerr != nil {
			logger.Warnf("failed to close %s source: %s", src.Type(), cerr)
		}
	}()

	out, err := sink.NewJSONL(opts.Output, w)
	if err != nil {
		return nil, err
	}

	write := out.Write
	if len(filterCfg.Select) > 0 {
		selected := make(map[string]struct{}, len(filterCfg.Select))
		for _, column := range filterCfg.Select {
			selected[column] = struct{}{}
		}
		write = func(record types.Record) error {
			return out.Write(types.CreateRecord(utils.SelectColumns(record.Data, selected)))
		}
	}

	stats := &types.Stats{}
	records := countReads(src.Records(ctx), &stats.Read)
	if workers > 0 {
		err = applyConcurrent(ctx, records, match, workers, write)
	} else {
		err = applyLazy(records, match, write)
	}

	err = utils.ErrExecSequential(
		func() error { return err },
		utils.ErrExecFormat("failed to close output: %s", out.Close),
	)
	if err != nil {
		return nil, err
	}

	stats.Matched = out.Written()
	return stats, nil
}

func applyLazy(records iter.Seq2[types.Record, error], match filter.Predicate[types.Record], write func(types.Record) error) error {
	for record, err := range filter.ApplySeq2(records, match) {
		if err != nil {
			return err
		}
		if err := write(record); err != nil {
			return err
		}
	}
	return nil
}

func applyConcurrent(ctx context.Context, records iter.Seq2[types.Record, error], match filter.Predicate[types.Record], workers int, write func(types.Record) error) error {
	var all []types.Record
	for record, err := range records {
		if err != nil {
			return err
		}
		all = append(all, record)
	}

	matched, err := filter.ApplyConcurrent(ctx, all, match, workers)
	if err != nil {
		return err
	}
	for _, record := range matched {
		if err := write(record); err != nil {
			return err
		}
	}
	return nil
}

func countReads(records iter.Seq2[types.Record, error], counter *int64) iter.Seq2[types.Record, error] {
	return func(yield func(types.Record, error) bool) {
		for record, err := range records {
			if err == nil {
				*counter++
			}
			if !yield(record, err) {
				return
			}
		}
	}
}
