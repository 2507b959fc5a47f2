package cli

import (
	"github.com/koustreak/automodel/internal/generator"
	"github.com/spf13/cobra"
)

func (a *app) newTablesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "List the tables generate would process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dbCfg, err := a.cfg.Connection()
			if err != nil {
				return err
			}
			g, err := generator.New(cmd.Context(), dbCfg, a.log)
			if err != nil {
				return err
			}
			defer g.Close()

			tables, err := g.Tables(cmd.Context(), a.cfg.Generate.Tables)
			if err != nil {
				return err
			}
			printInfo(a.out, "%d table(s) in %s", len(tables), dbCfg.SchemaOrDefault())
			for _, t := range tables {
				printItem(a.out, t)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceP("tables", "t", nil, "only list these tables")
	a.bind(cmd, map[string]string{"generate.tables": "tables"}, false)
	return cmd
}
