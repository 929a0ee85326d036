package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/lead-dedup/internal/dedup"
	"github.com/sells-group/lead-dedup/internal/merge"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/store"
)

var (
	mergeFilePath string
	mergeMode     string
	mergeYes      bool
)

// mergeFile is the YAML document the merge command consumes. Each selection
// names the lead to keep; its duplicate group is located by membership in a
// fresh scan, so selections survive across scans even though group ids don't.
type mergeFile struct {
	Mode       string                 `yaml:"mode"`
	Selections []model.MergeSelection `yaml:"selections"`
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge or delete duplicate groups from a selections file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(mergeFilePath)
		if err != nil {
			return eris.Wrapf(err, "merge: read selections file %s", mergeFilePath)
		}
		var file mergeFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return eris.Wrap(err, "merge: parse selections file")
		}
		if len(file.Selections) == 0 {
			return eris.New("merge: selections file names no groups")
		}

		mode := merge.Mode(mergeMode)
		if file.Mode != "" && mergeMode == "merge" {
			mode = merge.Mode(file.Mode)
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		leads, err := st.ListLeads(ctx, store.LeadFilter{})
		if err != nil {
			return err
		}
		groups := dedup.FindDuplicates(leads, cfg.Dedup)

		selections, err := bindSelections(file.Selections, groups)
		if err != nil {
			return err
		}

		o := merge.NewOrchestrator(st, merge.WithRateLimit(cfg.Bulk.RateLimitRPS))
		if err := o.Select(groups, selections, mode); err != nil {
			return err
		}
		if err := o.Confirm(); err != nil {
			return err
		}
		if !mergeYes {
			zap.L().Warn("pass --yes to apply; no changes made",
				zap.Int("groups", len(selections)),
				zap.String("mode", string(mode)),
			)
			return nil
		}

		result, err := o.Run(ctx, func(p model.BulkProgress) {
			zap.L().Info("bulk progress",
				zap.Int("completed", p.Completed),
				zap.Int("total", p.Total),
				zap.Int("errors", p.Errors),
			)
		})
		if err != nil {
			return err
		}

		for _, item := range result.Items {
			if item.Err != nil {
				zap.L().Error("group failed",
					zap.String("group_id", item.GroupID),
					zap.Error(item.Err),
				)
			}
		}
		if result.Errors > 0 {
			return eris.Errorf("merge: %d of %d groups failed", result.Errors, result.Completed)
		}
		return nil
	},
}

// bindSelections resolves each selection to the scanned group containing its
// kept lead.
func bindSelections(selections []model.MergeSelection, groups []model.DuplicateGroup) ([]model.MergeSelection, error) {
	bound := make([]model.MergeSelection, 0, len(selections))
	for _, sel := range selections {
		if sel.KeepID == "" {
			return nil, eris.New("merge: selection is missing keep_id")
		}
		found := false
		for _, g := range groups {
			if g.HasMember(sel.KeepID) {
				sel.GroupID = g.ID
				found = true
				break
			}
		}
		if !found {
			return nil, eris.Errorf("merge: lead %s is not in any duplicate group", sel.KeepID)
		}
		bound = append(bound, sel)
	}
	return bound, nil
}

func init() {
	mergeCmd.Flags().StringVar(&mergeFilePath, "file", "", "path to YAML selections file (required)")
	mergeCmd.Flags().StringVar(&mergeMode, "mode", "merge", "bulk mode: merge or delete")
	mergeCmd.Flags().BoolVar(&mergeYes, "yes", false, "apply changes instead of previewing")
	_ = mergeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(mergeCmd)
}
