// Package main is the ercalc command line calculator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "ercalc",
		Short:         "Score social posts by engagement rate and audience quality",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config/config.yaml)")

	root.AddCommand(postCmd())
	root.AddCommand(batchCmd())

	return root
}

func postCmd() *cobra.Command {
	var (
		in              postInput
		smartEngagement float64
		jsonOutput      bool
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Score a single post",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("smart-engagement") {
				in.SmartEngagement = &smartEngagement
			}
			return runPost(cmd.Context(), cmd.OutOrStdout(), in, jsonOutput)
		},
	}

	cmd.Flags().Int64Var(&in.Likes, "likes", 0, "number of likes")
	cmd.Flags().Int64Var(&in.Retweets, "retweets", 0, "number of retweets")
	cmd.Flags().Int64Var(&in.Quotes, "quotes", 0, "number of quotes")
	cmd.Flags().Int64Var(&in.Impressions, "impressions", 0, "number of impressions")
	cmd.Flags().Int64Var(&in.Followers, "followers", 0, "account followers")
	cmd.Flags().Int64Var(&in.SmartFollowers, "smart-followers", 0, "followers classified as smart")
	cmd.Flags().Int64Var(&in.VerifiedFollowers, "verified-followers", 0, "verified followers")
	cmd.Flags().Float64Var(&smartEngagement, "smart-engagement", 0, "precomputed smart engagement (derived from the audience when unset)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("impressions")

	return cmd
}

func batchCmd() *cobra.Command {
	var (
		file       string
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score several posts of one account from a YAML or JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd.Context(), cmd.OutOrStdout(), file, jsonOutput)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "batch file (YAML or JSON)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
