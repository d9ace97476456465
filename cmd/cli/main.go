package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	serverURL   string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "yt-grabber",
		Short: "yt-grabber CLI - YouTube download manager",
		Long:  `A command-line interface for downloading YouTube videos through the yt-grabber server.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(cancelCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(historyCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var addCmd = &cobra.Command{
	Use:   "add [url]",
	Short: "Add a video download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		url := args[0]
		quality, _ := cmd.Flags().GetString("quality")

		payload := map[string]string{
			"url": url,
		}
		if quality != "" {
			payload["quality"] = quality
		}

		data, _ := json.Marshal(payload)
		resp, err := http.Post(serverURL+"/api/v1/downloads", "application/json", bytes.NewBuffer(data))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusCreated {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var result map[string]interface{}
		json.Unmarshal(body, &result)
		fmt.Printf("Download added successfully!\n")
		fmt.Printf("ID: %v\n", result["task_id"])
		fmt.Printf("Status: %v\n", result["status"])
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all downloads in this session",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		status, _ := cmd.Flags().GetString("status")

		url := serverURL + "/api/v1/downloads"
		if status != "" {
			url += "?status=" + status
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var downloads []map[string]interface{}
		json.Unmarshal(body, &downloads)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tQUALITY\tSTATUS\tPROGRESS")
		for _, d := range downloads {
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%.0f%%\n",
				truncate(fmt.Sprintf("%v", d["task_id"]), 8),
				truncate(fmt.Sprintf("%v", d["title"]), 40),
				d["quality"],
				d["status"],
				toFloat(d["progress"]))
		}
		w.Flush()
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show download statistics",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(serverURL + "/api/v1/downloads/stats")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var stats map[string]interface{}
		json.Unmarshal(body, &stats)

		fmt.Println("Download Statistics:")
		fmt.Printf("  Total:       %v\n", stats["total"])
		fmt.Printf("  Pending:     %v\n", stats["pending"])
		fmt.Printf("  Downloading: %v\n", stats["downloading"])
		fmt.Printf("  Completed:   %v\n", stats["completed"])
		fmt.Printf("  Failed:      %v\n", stats["failed"])
		fmt.Printf("  Cancelled:   %v\n", stats["cancelled"])
	},
}

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get download details",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Get(serverURL + "/api/v1/downloads/" + id)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var download map[string]interface{}
		json.Unmarshal(body, &download)

		fmt.Printf("Download Details:\n")
		fmt.Printf("  ID:       %v\n", download["task_id"])
		fmt.Printf("  URL:      %v\n", download["url"])
		fmt.Printf("  Title:    %v\n", download["title"])
		fmt.Printf("  Uploader: %v\n", download["uploader"])
		fmt.Printf("  Quality:  %v\n", download["quality"])
		fmt.Printf("  Status:   %v\n", download["status"])
		fmt.Printf("  Progress: %.0f%%\n", toFloat(download["progress"]))
		if download["filepath"] != nil && download["filepath"] != "" {
			fmt.Printf("  File:     %v\n", download["filepath"])
		}
		if download["error_message"] != nil && download["error_message"] != "" {
			fmt.Printf("  Error:    %v\n", download["error_message"])
		}
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a download",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		resp, err := http.Post(serverURL+"/api/v1/downloads/"+id+"/cancel", "application/json", nil)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download cancelled successfully")
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Remove a download from the session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		id := args[0]
		req, _ := http.NewRequest(http.MethodDelete, serverURL+"/api/v1/downloads/"+id, nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}
		fmt.Println("Download removed")
	},
}

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "List downloaded videos in the library",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		query, _ := cmd.Flags().GetString("query")

		url := serverURL + "/api/v1/library"
		if query != "" {
			url += "?q=" + neturl.QueryEscape(query)
		}

		resp, err := http.Get(url)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		var videos []map[string]interface{}
		json.Unmarshal(body, &videos)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VIDEO ID\tTITLE\tUPLOADER\tQUALITY\tDOWNLOADED")
		for _, v := range videos {
			fmt.Fprintf(w, "%v\t%s\t%s\t%v\t%v\n",
				v["video_id"],
				truncate(fmt.Sprintf("%v", v["title"]), 40),
				truncate(fmt.Sprintf("%v", v["uploader"]), 20),
				v["quality"],
				v["downloaded_at"])
		}
		w.Flush()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the library by title or uploader",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()

		resp, err := http.Get(serverURL + "/api/v1/library/search?q=" + neturl.QueryEscape(args[0]))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var videos []map[string]interface{}
		json.Unmarshal(body, &videos)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VIDEO ID\tTITLE\tUPLOADER\tQUALITY")
		for _, v := range videos {
			fmt.Fprintf(w, "%v\t%s\t%s\t%v\n",
				v["video_id"],
				truncate(fmt.Sprintf("%v", v["title"]), 40),
				truncate(fmt.Sprintf("%v", v["uploader"]), 20),
				v["quality"])
		}
		w.Flush()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent download history",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := http.Get(fmt.Sprintf("%s/api/v1/history?limit=%d", serverURL, limit))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var entries []map[string]interface{}
		json.Unmarshal(body, &entries)

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tQUALITY\tSTATUS\tCREATED")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\n",
				truncate(fmt.Sprintf("%v", e["task_id"]), 8),
				truncate(fmt.Sprintf("%v", e["title"]), 40),
				e["quality"],
				e["status"],
				e["created_at"])
		}
		w.Flush()
	},
}

func init() {
	addCmd.Flags().StringP("quality", "q", "", "Quality (best, 1440p, 1080p, 720p, 480p, 360p, audio)")
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	libraryCmd.Flags().StringP("query", "q", "", "Filter by title or uploader")
	historyCmd.Flags().IntP("limit", "n", 20, "Number of entries to show")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func toFloat(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
