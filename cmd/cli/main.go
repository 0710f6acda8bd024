package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "goassets-cli",
		Short: "GoAssets CLI tool",
		Long:  `A command line interface for interacting with the GoAssets depreciation API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the GoAssets API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(runCommand())
	rootCmd.AddCommand(previewCommand())
	rootCmd.AddCommand(assetCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Depreciation run operations",
	}

	var categoryID, departmentID, createdBy string
	createCmd := &cobra.Command{
		Use:   "create <year> <month>",
		Short: "Create a depreciation run for a period",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			year, month := parsePeriod(args[0], args[1])
			payload := map[string]any{
				"period_year":  year,
				"period_month": month,
				"created_by":   createdBy,
			}
			if categoryID != "" {
				payload["category_id"] = categoryID
			}
			if departmentID != "" {
				payload["department_id"] = departmentID
			}
			doJSON(http.MethodPost, "/api/v1/runs", payload)
		},
	}
	createCmd.Flags().StringVar(&categoryID, "category", "", "Limit the run to one asset category")
	createCmd.Flags().StringVar(&departmentID, "department", "", "Limit the run to one department")
	createCmd.Flags().StringVar(&createdBy, "by", "cli", "Operator recorded on the run")

	var postedBy string
	postCmd := &cobra.Command{
		Use:   "post <run-id>",
		Short: "Post a calculated run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodPost, "/api/v1/runs/"+args[0]+"/post", map[string]any{"posted_by": postedBy})
		},
	}
	postCmd.Flags().StringVar(&postedBy, "by", "cli", "Operator recorded on the posting")

	cancelCmd := &cobra.Command{
		Use:   "cancel <run-id>",
		Short: "Cancel a draft or calculated run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodPost, "/api/v1/runs/"+args[0]+"/cancel", nil)
		},
	}

	var reason, reversedBy string
	reverseCmd := &cobra.Command{
		Use:   "reverse <run-id>",
		Short: "Reverse a posted run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodPost, "/api/v1/runs/"+args[0]+"/reverse", map[string]any{
				"reason":      reason,
				"reversed_by": reversedBy,
			})
		},
	}
	reverseCmd.Flags().StringVar(&reason, "reason", "", "Why the run is being reversed (required)")
	reverseCmd.Flags().StringVar(&reversedBy, "by", "cli", "Operator recorded on the reversal")
	reverseCmd.MarkFlagRequired("reason")

	getCmd := &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show one run",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/runs/"+args[0], nil)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List runs, newest first",
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/runs", nil)
		},
	}

	entriesCmd := &cobra.Command{
		Use:   "entries <run-id>",
		Short: "List a run's entries",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/runs/"+args[0]+"/entries", nil)
		},
	}

	runCmd.AddCommand(createCmd, postCmd, cancelCmd, reverseCmd, getCmd, listCmd, entriesCmd)
	return runCmd
}

func previewCommand() *cobra.Command {
	var categoryID string
	previewCmd := &cobra.Command{
		Use:   "preview <year> <month>",
		Short: "Preview a period without persisting anything",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			year, month := parsePeriod(args[0], args[1])
			payload := map[string]any{
				"period_year":  year,
				"period_month": month,
			}
			if categoryID != "" {
				payload["category_id"] = categoryID
			}
			doJSON(http.MethodPost, "/api/v1/depreciation/preview", payload)
		},
	}
	previewCmd.Flags().StringVar(&categoryID, "category", "", "Limit the preview to one asset category")
	return previewCmd
}

func assetCommand() *cobra.Command {
	assetCmd := &cobra.Command{
		Use:   "asset",
		Short: "Asset operations",
	}

	getCmd := &cobra.Command{
		Use:   "get <asset-id>",
		Short: "Show one asset",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/assets/"+args[0], nil)
		},
	}

	scheduleCmd := &cobra.Command{
		Use:   "schedule <asset-id>",
		Short: "Project the asset's full depreciation schedule",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			doJSON(http.MethodGet, "/api/v1/assets/"+args[0]+"/schedule", nil)
		},
	}

	unitsCmd := &cobra.Command{
		Use:   "record-units <asset-id> <year> <month> <units>",
		Short: "Record production units for a units-of-production asset",
		Args:  cobra.ExactArgs(4),
		Run: func(cmd *cobra.Command, args []string) {
			year, month := parsePeriod(args[1], args[2])
			doJSON(http.MethodPost, "/api/v1/assets/"+args[0]+"/units", map[string]any{
				"period_year":  year,
				"period_month": month,
				"units":        args[3],
			})
		},
	}

	assetCmd.AddCommand(getCmd, scheduleCmd, unitsCmd)
	return assetCmd
}

func parsePeriod(yearArg, monthArg string) (int, int) {
	year, err := strconv.Atoi(yearArg)
	if err != nil {
		fmt.Printf("Invalid year %q\n", yearArg)
		os.Exit(1)
	}
	month, err := strconv.Atoi(monthArg)
	if err != nil {
		fmt.Printf("Invalid month %q\n", monthArg)
		os.Exit(1)
	}
	return year, month
}

func doJSON(method, path string, payload any) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			fmt.Printf("Failed to encode request: %v\n", err)
			os.Exit(1)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		fmt.Printf("Failed to build request: %v\n", err)
		os.Exit(1)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(respBody))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, respBody, "", "  "); err != nil {
		fmt.Println(string(respBody))
		return
	}
	fmt.Println(pretty.String())
}
