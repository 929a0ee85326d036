package main

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/source"
	"github.com/sells-group/lead-dedup/internal/store"
)

var (
	importCSVPath    string
	importSalesforce bool
	importLimit      int
	importWorkers    int
)

const importBatchSize = 500

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import leads from a CSV export or Salesforce into the lead database",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if (importCSVPath != "") == importSalesforce {
			return eris.New("exactly one of --csv or --salesforce is required")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		var leads []model.Lead
		switch {
		case strings.HasSuffix(importCSVPath, ".xlsx"):
			leads, err = source.ReadXLSX(importCSVPath)
		case importCSVPath != "":
			leads, err = source.ReadCSV(importCSVPath)
		default:
			client, cerr := initSalesforce()
			if cerr != nil {
				return cerr
			}
			leads, err = source.FetchSalesforceLeads(ctx, client, importLimit)
		}
		if err != nil {
			return err
		}
		if len(leads) == 0 {
			zap.L().Warn("nothing to import")
			return nil
		}

		imported, err := importBatches(ctx, st, leads, importWorkers)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.Int("leads", len(leads)),
			zap.Int64("imported", imported),
		)
		return nil
	},
}

// importBatches upserts leads in fixed-size batches with bounded concurrency.
func importBatches(ctx context.Context, st store.Store, leads []model.Lead, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var imported atomic.Int64
	for start := 0; start < len(leads); start += importBatchSize {
		end := min(start+importBatchSize, len(leads))
		batch := leads[start:end]
		g.Go(func() error {
			n, err := st.BulkUpsertLeads(ctx, batch)
			if err != nil {
				return err
			}
			imported.Add(n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return imported.Load(), err
	}
	return imported.Load(), nil
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to a CSV or XLSX export")
	importCmd.Flags().BoolVar(&importSalesforce, "salesforce", false, "pull leads from Salesforce")
	importCmd.Flags().IntVar(&importLimit, "limit", 0, "maximum Salesforce records to fetch")
	importCmd.Flags().IntVar(&importWorkers, "workers", 4, "concurrent import batches")
	rootCmd.AddCommand(importCmd)
}
