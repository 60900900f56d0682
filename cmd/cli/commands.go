package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/spf13/cobra"
)

var dryRun bool

func init() {
	syncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the grids without writing them")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/health")
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync the rosters of all groups into their spreadsheets",
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/sync"
		if dryRun {
			endpoint += "?dry_run=true"
		}
		return performRequest(http.MethodPost, endpoint)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the persisted sync counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/stats")
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performRequest(http.MethodGet, "/metrics")
	},
}

func performRequest(method, endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making %s request to %s\n", method, url)

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
