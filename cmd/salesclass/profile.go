package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"salesclass/pkg/pipeline"
	"salesclass/pkg/report"
)

var topLevels int

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Summarize every column of the input table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		tbl, profiles, err := pipeline.Profile(cfg, topLevels)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), report.ProfileTable(tbl.Rows(), profiles))
		return nil
	},
}

func init() {
	profileCmd.Flags().IntVar(&topLevels, "top", 5, "most frequent levels listed per categorical column")
}
