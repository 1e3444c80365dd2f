package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	farmsCmd := &cobra.Command{Use: "farms", Short: "Farm operations"}

	// create
	var name, cropType, description string
	var lat, lng, area float64
	var north, south, east, west float64
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a farm",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" || cropType == "" {
				return fmt.Errorf("--name and --crop required")
			}
			payload := map[string]interface{}{
				"name":     name,
				"cropType": cropType,
				"area":     area,
				"location": map[string]float64{"lat": lat, "lng": lng},
				"boundingBox": map[string]float64{
					"north": north, "south": south, "east": east, "west": west,
				},
			}
			if description != "" {
				payload["description"] = description
			}
			resp, err := newClient().R().SetBody(payload).Post("/v0/farms")
			return printResult(resp, err)
		},
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Farm name (required)")
	createCmd.Flags().StringVarP(&cropType, "crop", "c", "", "Crop type (required)")
	createCmd.Flags().StringVarP(&description, "description", "d", "", "Description")
	createCmd.Flags().Float64Var(&lat, "lat", 0, "Latitude")
	createCmd.Flags().Float64Var(&lng, "lng", 0, "Longitude")
	createCmd.Flags().Float64Var(&area, "area", 0, "Area in hectares")
	createCmd.Flags().Float64Var(&north, "north", 0, "Bounding box north")
	createCmd.Flags().Float64Var(&south, "south", 0, "Bounding box south")
	createCmd.Flags().Float64Var(&east, "east", 0, "Bounding box east")
	createCmd.Flags().Float64Var(&west, "west", 0, "Bounding box west")
	farmsCmd.AddCommand(createCmd)

	// list
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the caller's farms",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/v0/farms")
			return printResult(resp, err)
		},
	}
	farmsCmd.AddCommand(listCmd)

	// get
	getCmd := &cobra.Command{
		Use:   "get FARM_ID",
		Short: "Get farm by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/v0/farms/" + args[0])
			return printResult(resp, err)
		},
	}
	farmsCmd.AddCommand(getCmd)

	// fields
	fieldsCmd := &cobra.Command{
		Use:   "fields FARM_ID",
		Short: "List a farm's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := newClient().R().Get("/v0/farms/" + args[0] + "/fields")
			return printResult(resp, err)
		},
	}
	farmsCmd.AddCommand(fieldsCmd)

	rootCmd.AddCommand(farmsCmd)
}
