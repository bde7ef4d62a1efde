package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newQuestionsCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "questions",
		Short: "List cached questions by usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := openApp(ctx, configPath, true)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			recs := a.store.ListByUsage()
			if len(recs) == 0 {
				fmt.Println("No cached questions.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "QUESTION\tUSES\tCREATED\tLAST USED")
			for _, r := range recs {
				lastUsed := "-"
				if r.LastUsed != nil {
					lastUsed = r.LastUsed.Format("2006-01-02T15:04:05")
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					r.OriginalQuestion, r.UsageCount, r.CreatedAt.Format("2006-01-02T15:04:05"), lastUsed)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to config file")
	return cmd
}
