package app

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/GoAgora/go-agora/internal/tenant"
)

func init() { //nolint: gochecknoinits
	rootCmd.AddCommand(tenantsCmd)
}

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List the configured tenants with their chain and enabled features",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		reg, err := tenant.NewRegistry(cfg.Tenants, cfg.Chain)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint: mnd
		_, _ = fmt.Fprintln(w, "NAMESPACE\tSLUG\tCHAIN\tDEFAULT\tFEATURES")

		def := reg.Default().Namespace

		for _, t := range reg.All() {
			var features []string

			for name, on := range t.Toggles {
				if on {
					features = append(features, name)
				}
			}

			slices.Sort(features)

			_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%t\t%v\n", t.Namespace, t.Slug, t.Chain.ID, t.Namespace == def, features)
		}

		return w.Flush()
	},
}
