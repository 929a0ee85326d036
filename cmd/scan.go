package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/lead-dedup/internal/dedup"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/report"
	"github.com/sells-group/lead-dedup/internal/store"
)

var (
	scanMinSimilarity int
	scanReportPath    string
	scanJSON          bool
)

// scanOutput is the JSON document emitted by scan --json. Group ids from this
// output are the ones merge selection files reference.
type scanOutput struct {
	Stats  model.DuplicateStats   `json:"stats"`
	Groups []model.DuplicateGroup `json:"groups"`
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the lead database for duplicate groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		dedupCfg := cfg.Dedup
		if scanMinSimilarity > 0 {
			dedupCfg.MinSimilarity = scanMinSimilarity
			if dedupCfg.MediumThreshold < dedupCfg.MinSimilarity {
				dedupCfg.MediumThreshold = dedupCfg.MinSimilarity
			}
		}
		if err := dedupCfg.Validate(); err != nil {
			return err
		}

		leads, err := st.ListLeads(ctx, store.LeadFilter{})
		if err != nil {
			return err
		}

		groups := dedup.FindDuplicates(leads, dedupCfg)
		stats := dedup.ComputeStats(groups)

		zap.L().Info("scan complete",
			zap.Int("leads", len(leads)),
			zap.Int("groups", stats.TotalGroups),
			zap.Int("exact", stats.ExactMatches),
			zap.Int("high", stats.HighSimilarity),
		)

		if scanReportPath != "" {
			if err := report.WriteWorkbook(scanReportPath, groups, stats); err != nil {
				return err
			}
			zap.L().Info("report written", zap.String("path", scanReportPath))
		}

		if scanJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(scanOutput{Stats: stats, Groups: groups}), "scan: encode output")
		}

		printScanSummary(groups, stats)
		return nil
	},
}

func printScanSummary(groups []model.DuplicateGroup, stats model.DuplicateStats) {
	fmt.Printf("Duplicate groups: %d (exact %d, high %d, medium %d, low %d)\n\n",
		stats.TotalGroups, stats.ExactMatches, stats.HighSimilarity,
		stats.MediumSimilarity, stats.LowSimilarity)

	for _, g := range groups {
		fmt.Printf("%s  [%s %d%%  via %s]\n", g.ID, g.Band, g.Similarity, g.PrimaryField.Label())
		for _, m := range g.Members {
			fmt.Printf("  %-36s  %-24s  %-24s  %s\n", m.ID, m.Name, m.Email, m.Phone)
		}
		fmt.Println()
	}
}

func init() {
	scanCmd.Flags().IntVar(&scanMinSimilarity, "min", 0, "minimum similarity to group (default from config)")
	scanCmd.Flags().StringVar(&scanReportPath, "report", "", "write an XLSX review workbook to this path")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "emit JSON instead of a summary table")
	rootCmd.AddCommand(scanCmd)
}
