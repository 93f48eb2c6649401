package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/aeromaint/docval/internal/classify"
	"github.com/aeromaint/docval/internal/model"
	"github.com/aeromaint/docval/internal/rules"
)

// rulesCmd represents the rules command
var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and verify the rule catalog",
	Long: `Rules loads the active catalog and either prints its contents or
verifies that every pattern in it compiles. Use the shared --rules,
--rules-file and --db flags to pick the backend.`,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule catalog",
	RunE:  runRulesShow,
}

var rulesVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Load the catalog and report pattern-compilation problems",
	RunE:  runRulesVerify,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesVerifyCmd)

	rulesCmd.PersistentFlags().StringVar(&rulesSource, "rules", "", "rule source: builtin, file, or sqlite")
	rulesCmd.PersistentFlags().StringVar(&rulesFile, "rules-file", "", "rules YAML path (implies --rules file)")
	rulesCmd.PersistentFlags().StringVar(&rulesDSN, "db", "", "rules SQLite DSN (implies --rules sqlite)")
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	engine, err := rulesEngine()
	if err != nil {
		return err
	}
	catalog := engine.Ruleset().Catalog

	fmt.Printf("Source: %s\n\n", engineSource)

	fmt.Printf("Reference keywords (%d):\n", len(catalog.ReferenceKeywords))
	for _, kw := range catalog.ReferenceKeywords {
		line := "  " + kw
		if dt, ok := catalog.DocumentTypes[kw]; ok {
			if !dt.RequiresRevision {
				line += "  [no revision required]"
			}
			if dt.RequiresLinkingKeyword {
				line += "  [linking keyword required]"
			}
		}
		fmt.Println(line)
	}

	fmt.Printf("\nLinking keywords (%d): %v\n", len(catalog.LinkingKeywords), catalog.LinkingKeywords)
	fmt.Printf("Skip phrases, text (%d): %v\n", len(catalog.SkipPhrasesText), catalog.SkipPhrasesText)
	fmt.Printf("Skip phrases, header (%d): %v\n", len(catalog.SkipPhrasesHeader), catalog.SkipPhrasesHeader)

	fmt.Printf("\nRevision patterns (%d):\n", len(catalog.RevisionPatterns))
	for _, p := range catalog.RevisionPatterns {
		fmt.Printf("  %s\n", p)
	}
	fmt.Printf("\nExecution patterns (%d):\n", len(catalog.ExecutionPatterns))
	for _, p := range catalog.ExecutionPatterns {
		fmt.Printf("  %s\n", p)
	}

	seqRules := append([]rules.SeqRule{}, catalog.SequenceRules...)
	sort.Slice(seqRules, func(i, j int) bool { return seqRules[i].Prefix < seqRules[j].Prefix })
	fmt.Printf("\nSequence rules (%d):\n", len(seqRules))
	for _, rule := range seqRules {
		fmt.Printf("  %-6s %s", rule.Prefix, rule.Mode)
		if rule.Description != "" {
			fmt.Printf("  (%s)", rule.Description)
		}
		fmt.Println()
	}
	return nil
}

func runRulesVerify(cmd *cobra.Command, args []string) error {
	engine, err := rulesEngine()
	if err != nil {
		return err
	}
	ruleset := engine.Ruleset()

	if err := ruleset.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog invalid: %w", err)
	}

	degraded := ruleset.Patterns.Degraded()
	if len(degraded) > 0 {
		for _, family := range degraded {
			fmt.Printf("✗ pattern family %q has entries that failed to compile\n", family)
		}
		return fmt.Errorf("%d pattern families degraded", len(degraded))
	}

	fmt.Printf("✓ %s: catalog valid, all patterns compile\n", engineSource)
	return nil
}

// engineSource is set by rulesEngine so the subcommands can report which
// backend they loaded from
var engineSource string

func rulesEngine() (*classify.Engine, error) {
	cfg := model.DefaultConfig()
	logger, err := buildLogger(cfg.Log, verbose)
	if err != nil {
		return nil, err
	}

	rulesCfg := rulesConfigFromFlags(cfg.Rules)
	provider, err := providerFromConfig(rulesCfg, logger)
	if err != nil {
		return nil, err
	}
	engineSource = provider.Source()

	return classify.NewEngine(provider, logger)
}
