package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"WatchlistScanner/internal/config"
	"WatchlistScanner/internal/strategy"
)

func rulesCmd(g *globalFlags) *cobra.Command {
	var showRegistry bool
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the configured rule sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(g.configPath)
			if err != nil {
				return err
			}
			rc, err := cfg.RuleConfig()
			if err != nil {
				return err
			}
			if err := strategy.ValidateAll(rc.Rules); err != nil {
				return err
			}
			fmt.Println(renderRules(rc.Rules))
			if showRegistry {
				fmt.Println("conditions: " + strings.Join(strategy.ConditionNames(), ", "))
				fmt.Println("metrics:    " + strings.Join(strategy.MetricNames(), ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showRegistry, "registry", false, "also list every condition and score metric")
	return cmd
}

func renderRules(rules []strategy.RuleSet) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Rule", "Side", "Requires", "Score parts", "Min score"})
	for _, r := range rules {
		clauses := make([]string, len(r.Require))
		for i, c := range r.Require {
			clauses[i] = strings.Join(c, " | ")
		}
		parts := make([]string, len(r.Score))
		for i, c := range r.Score {
			parts[i] = fmt.Sprintf("%s<=%g", c.Metric, c.Max)
		}
		t.AppendRow(table.Row{r.Name, r.Side, strings.Join(clauses, "\n"), strings.Join(parts, "\n"), r.MinScore})
		t.AppendSeparator()
	}
	return t.Render()
}
