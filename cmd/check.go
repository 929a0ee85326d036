package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/lead-dedup/internal/livecheck"
	"github.com/sells-group/lead-dedup/internal/model"
	"github.com/sells-group/lead-dedup/internal/store"
)

var (
	checkName     string
	checkEmail    string
	checkPhone    string
	checkDocument string
	checkExclude  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check prospective lead fields against the database for duplicates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		fields := map[model.FieldKind]string{}
		if checkName != "" {
			fields[model.FieldName] = checkName
		}
		if checkEmail != "" {
			fields[model.FieldEmail] = checkEmail
		}
		if checkPhone != "" {
			fields[model.FieldPhone] = checkPhone
		}
		if checkDocument != "" {
			fields[model.FieldDocument] = checkDocument
		}
		if len(fields) == 0 {
			return eris.New("at least one of --name, --email, --phone, --document is required")
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

		result := livecheck.Check(livecheck.Input{
			Fields:    fields,
			ExcludeID: checkExclude,
		}, leads, cfg.Dedup)

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return eris.Wrap(enc.Encode(result), "check: encode result")
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkName, "name", "", "name to check")
	checkCmd.Flags().StringVar(&checkEmail, "email", "", "email to check")
	checkCmd.Flags().StringVar(&checkPhone, "phone", "", "phone to check")
	checkCmd.Flags().StringVar(&checkDocument, "document", "", "document id to check")
	checkCmd.Flags().StringVar(&checkExclude, "exclude", "", "lead id to exclude (when editing an existing lead)")
	rootCmd.AddCommand(checkCmd)
}
