package main

import (
	"github.com/spf13/cobra"
)

func init() {
	alertsCmd := &cobra.Command{Use: "alerts", Short: "Alert operations"}

	var includeResolved bool
	listCmd := &cobra.Command{
		Use:   "list FIELD_ID",
		Short: "List a field's alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			if includeResolved {
				req.SetQueryParam("includeResolved", "true")
			}
			resp, err := req.Get("/v0/fields/" + args[0] + "/alerts")
			return printResult(resp, err)
		},
	}
	listCmd.Flags().BoolVar(&includeResolved, "include-resolved", false, "Include resolved alerts")
	alertsCmd.AddCommand(listCmd)

	ackCmd := &cobra.Command{
		Use:   "ack ALERT_ID",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Post("/v0/alerts/" + args[0] + "/acknowledge")
			return printResult(resp, err)
		},
	}
	alertsCmd.AddCommand(ackCmd)

	resolveCmd := &cobra.Command{
		Use:   "resolve ALERT_ID",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Post("/v0/alerts/" + args[0] + "/resolve")
			return printResult(resp, err)
		},
	}
	alertsCmd.AddCommand(resolveCmd)

	rootCmd.AddCommand(alertsCmd)
}
