package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	readingsCmd := &cobra.Command{Use: "readings", Short: "Sensor reading operations"}

	// add
	var sensorType, unit string
	var value float64
	var timestamp int64
	addCmd := &cobra.Command{
		Use:   "add FIELD_ID",
		Short: "Append a sensor reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if sensorType == "" || unit == "" {
				return fmt.Errorf("--type and --unit required")
			}
			payload := map[string]interface{}{
				"sensorType": sensorType,
				"value":      value,
				"unit":       unit,
			}
			if timestamp != 0 {
				payload["timestamp"] = timestamp
			}
			resp, err := newClient().R().SetBody(payload).
				Post("/v0/fields/" + args[0] + "/readings")
			return printResult(resp, err)
		},
	}
	addCmd.Flags().StringVarP(&sensorType, "type", "t", "", "Sensor category (required)")
	addCmd.Flags().Float64VarP(&value, "value", "v", 0, "Measured value")
	addCmd.Flags().StringVarP(&unit, "unit", "u", "", "Measurement unit (required)")
	addCmd.Flags().Int64Var(&timestamp, "timestamp", 0, "Epoch millis (defaults to now)")
	readingsCmd.AddCommand(addCmd)

	// query
	var queryType string
	var startTime, endTime int64
	queryCmd := &cobra.Command{
		Use:   "query FIELD_ID",
		Short: "Query a field's readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := newClient().R()
			if queryType != "" {
				req.SetQueryParam("sensorType", queryType)
			}
			if startTime != 0 {
				req.SetQueryParam("startTime", strconv.FormatInt(startTime, 10))
			}
			if endTime != 0 {
				req.SetQueryParam("endTime", strconv.FormatInt(endTime, 10))
			}
			resp, err := req.Get("/v0/fields/" + args[0] + "/readings")
			return printResult(resp, err)
		},
	}
	queryCmd.Flags().StringVarP(&queryType, "type", "t", "", "Filter by sensor category")
	queryCmd.Flags().Int64Var(&startTime, "start", 0, "Window start, epoch millis")
	queryCmd.Flags().Int64Var(&endTime, "end", 0, "Window end, epoch millis")
	readingsCmd.AddCommand(queryCmd)

	// latest
	latestCmd := &cobra.Command{
		Use:   "latest FIELD_ID",
		Short: "Latest reading per sensor category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/v0/fields/" + args[0] + "/readings/latest")
			return printResult(resp, err)
		},
	}
	readingsCmd.AddCommand(latestCmd)

	rootCmd.AddCommand(readingsCmd)
}
