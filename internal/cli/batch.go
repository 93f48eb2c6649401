package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aeromaint/docval/internal/classify"
	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/pipeline"
	"github.com/aeromaint/docval/internal/table"
)

var (
	batchOutput   string
	batchWorkers  int
	batchNoCache  bool
	batchCacheTTL time.Duration
	batchNoAudit  bool
	batchTimeout  time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.csv>",
	Short: "Classify every row of a work-package export",
	Long: `Batch classifies a CSV export row by row:
- Resolve the text/SEQ/header/description columns from the header row
- Classify rows in parallel with configurable worker count
- Write the input back out with a trailing Reason verdict column
- Print per-verdict counts

Example:
  docval batch export.csv
  docval batch export.csv --workers 8 --output export_checked.csv
  docval batch export.csv --rules-file rules.yaml --no-audit`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "annotated output path (default: <input>_checked.csv)")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().BoolVar(&batchNoCache, "no-cache", false, "disable the verdict memo cache")
	batchCmd.Flags().DurationVar(&batchCacheTTL, "cache-ttl", time.Hour, "verdict memo cache TTL")
	batchCmd.Flags().BoolVar(&batchNoAudit, "no-audit", false, "skip the action-step order audit")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch run")

	batchCmd.Flags().StringVar(&rulesSource, "rules", "", "rule source: builtin, file, or sqlite")
	batchCmd.Flags().StringVar(&rulesFile, "rules-file", "", "rules YAML path (implies --rules file)")
	batchCmd.Flags().StringVar(&rulesDSN, "db", "", "rules SQLite DSN (implies --rules sqlite)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	output := batchOutput
	if output == "" {
		output = defaultBatchOutput(input)
	}

	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg := model.DefaultConfig()
	logger, err := buildLogger(cfg.Log, verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	rulesCfg := rulesConfigFromFlags(cfg.Rules)
	provider, err := providerFromConfig(rulesCfg, logger)
	if err != nil {
		return err
	}

	engine, err := classify.NewEngine(provider, logger)
	if err != nil {
		return err
	}

	t, err := table.Load(input)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Input:    %s (%d rows)\n", input, len(t.Records))
	fmt.Fprintf(os.Stderr, "Rules:    %s\n", provider.Source())
	fmt.Fprintf(os.Stderr, "Workers:  %d\n", batchWorkers)
	fmt.Fprintf(os.Stderr, "Output:   %s\n\n", output)

	p := pipeline.New(engine, logger, pipeline.Options{
		Workers:      batchWorkers,
		CacheEnabled: !batchNoCache,
		CacheTTL:     batchCacheTTL,
		Audit:        !batchNoAudit,
	})

	result, err := p.Run(ctx, t)
	if err != nil {
		return fmt.Errorf("batch run: %w", err)
	}
	result.Report.InputFile = input

	if err := table.WriteAnnotated(output, t, result.Verdicts); err != nil {
		return err
	}

	s := result.Report.Summary
	fmt.Fprintf(os.Stderr, "Verdicts (%d rows, %v):\n", s.Total, result.Report.Duration().Round(time.Millisecond))
	fmt.Fprintf(os.Stderr, "  Valid:              %d\n", s.Valid)
	fmt.Fprintf(os.Stderr, "  Missing reference:  %d\n", s.MissingReference)
	fmt.Fprintf(os.Stderr, "  Missing revision:   %d\n", s.MissingRevision)
	fmt.Fprintf(os.Stderr, "  Wrong format:       %d\n", s.WrongFormat)
	fmt.Fprintf(os.Stderr, "  N/A:                %d\n", s.NotApplicable+s.Echoed)
	if !batchNoCache {
		fmt.Fprintf(os.Stderr, "  Cache hits:         %d\n", s.CacheHits)
	}

	if result.Audit != nil && result.Audit.OutOfOrder > 0 {
		fmt.Fprintf(os.Stderr, "\nStep-order issues (%d of %d checked rows):\n",
			result.Audit.OutOfOrder, result.Audit.Checked)
		for _, f := range result.Audit.Findings {
			fmt.Fprintf(os.Stderr, "  WO %s row %d: %s\n", f.WorkOrder, f.Row+2, f.Issue)
		}
	}

	fmt.Fprintf(os.Stderr, "\n✓ Wrote %s\n", output)
	return nil
}

// defaultBatchOutput derives "<input>_checked.csv" next to the input file
func defaultBatchOutput(input string) string {
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	if ext == "" {
		ext = ".csv"
	}
	return base + "_checked" + ext
}
