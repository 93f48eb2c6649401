package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aeromaint/docval/internal/classify"
	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

var (
	checkSeq     string
	checkHeader  string
	checkContext string
	checkStdin   bool
	checkWatch   bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [text]",
	Short: "Classify a single log entry",
	Long: `Check classifies one free-text action narrative and prints its verdict.

With --stdin, entries are read one per line and classified as a stream;
combine with --watch and a file-backed rule source to pick up rule edits
without restarting.

Example:
  docval check "IAW AMM 52-11-01 REV 156"
  docval check "PERFORMED STEP 1" --seq 4.1
  docval check --stdin --rules-file rules.yaml --watch < entries.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkSeq, "seq", "", "sequence code (e.g. 4.12)")
	checkCmd.Flags().StringVar(&checkHeader, "header", "", "action header text")
	checkCmd.Flags().StringVar(&checkContext, "context", "", "context/description field")
	checkCmd.Flags().BoolVar(&checkStdin, "stdin", false, "classify one entry per stdin line")
	checkCmd.Flags().BoolVar(&checkWatch, "watch", false, "reload rules when the rules file changes (needs --rules-file)")

	checkCmd.Flags().StringVar(&rulesSource, "rules", "", "rule source: builtin, file, or sqlite")
	checkCmd.Flags().StringVar(&rulesFile, "rules-file", "", "rules YAML path (implies --rules file)")
	checkCmd.Flags().StringVar(&rulesDSN, "db", "", "rules SQLite DSN (implies --rules sqlite)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	if !checkStdin && len(args) == 0 {
		return fmt.Errorf("provide text to classify or use --stdin")
	}

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

	if !checkStdin {
		verdict := engine.Classify(model.LogEntry{
			Text:         &args[0],
			SequenceCode: checkSeq,
			HeaderText:   checkHeader,
			ContextText:  checkContext,
		})
		fmt.Println(verdict)
		return nil
	}

	if checkWatch || rulesCfg.Watch {
		if rulesCfg.Source != "file" {
			return fmt.Errorf("--watch requires a file rule source")
		}
		watcher, err := rules.Watch(rulesCfg.Path, func() {
			if err := engine.Reload(); err != nil && !errors.Is(err, classify.ErrReloadThrottled) {
				logger.Warn("rules reload failed", zap.Error(err))
			}
		}, logger)
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		verdict := engine.Classify(model.LogEntry{
			Text:         &line,
			SequenceCode: checkSeq,
			HeaderText:   checkHeader,
			ContextText:  checkContext,
		})
		fmt.Printf("%s\t%s\n", verdict, line)
	}
	return scanner.Err()
}
