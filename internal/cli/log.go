package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gzhole/hookguard/internal/config"
	"github.com/gzhole/hookguard/internal/logger"
	"github.com/gzhole/hookguard/internal/redact"
	"github.com/spf13/cobra"
)

type logFilter struct {
	blocked  bool
	tool     string
	category string
	last     int
}

var (
	logOpts    logFilter
	logSummary bool
	logRaw     bool
	logJSON    bool
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View and filter the audit log",
	Long: `View the hookguard audit log with filtering and summary options.
Secrets in recorded commands are redacted unless --raw is given.

Examples:
  hookguard log                        # Show all entries
  hookguard log --last 20              # Show last 20 entries
  hookguard log --blocked              # Show only blocked requests
  hookguard log --tool Bash            # Show only Bash tool calls
  hookguard log --summary              # Show summary stats
  hookguard log --json --blocked       # Export blocked entries as JSON`,
	Args: cobra.NoArgs,
	RunE: logCommand,
}

func init() {
	logCmd.Flags().BoolVar(&logOpts.blocked, "blocked", false, "Show only blocked entries")
	logCmd.Flags().StringVar(&logOpts.tool, "tool", "", "Filter by tool name")
	logCmd.Flags().StringVar(&logOpts.category, "category", "", "Filter by block category (e.g. destructive_delete)")
	logCmd.Flags().IntVar(&logOpts.last, "last", 0, "Show last N entries")
	logCmd.Flags().BoolVar(&logSummary, "summary", false, "Show summary statistics")
	logCmd.Flags().BoolVar(&logRaw, "raw", false, "Show tool input without redaction")
	logCmd.Flags().BoolVar(&logJSON, "json", false, "Print matching entries as JSON")
	rootCmd.AddCommand(logCmd)
}

func logCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	entries, err := logger.NewStore(cfg.LogPath, nil).Entries()
	if err != nil {
		return fmt.Errorf("failed to read audit log: %w", err)
	}

	if len(entries) == 0 && !logJSON {
		fmt.Println("No audit log entries found.")
		return nil
	}

	if logSummary {
		printSummary(entries)
		return nil
	}

	filtered := filterEntries(entries, logOpts)
	if logJSON {
		return printJSON(os.Stdout, filtered, logRaw)
	}
	printEntries(filtered, logRaw)
	return nil
}

func filterEntries(entries []logger.Entry, f logFilter) []logger.Entry {
	var filtered []logger.Entry
	for _, e := range entries {
		if f.blocked && !e.Blocked {
			continue
		}
		if f.tool != "" && !strings.EqualFold(e.ToolName, f.tool) {
			continue
		}
		if f.category != "" && !strings.EqualFold(e.Category, f.category) {
			continue
		}
		filtered = append(filtered, e)
	}
	if f.last > 0 && f.last < len(filtered) {
		filtered = filtered[len(filtered)-f.last:]
	}
	return filtered
}

func printEntries(entries []logger.Entry, raw bool) {
	for _, e := range entries {
		fmt.Printf("%s %s %s  %s\n",
			decisionLabel(e.Blocked),
			styleMuted.Render(formatTimestamp(e.Timestamp)),
			e.ToolName,
			styleCommand.Render(entrySummary(e, raw)),
		)
		if e.RuleID != "" {
			fmt.Printf("     Rule: %s (%s)\n", e.RuleID, e.Category)
		}
		if e.Reason != "" {
			fmt.Printf("     Reason: %s\n", e.Reason)
		}
		fmt.Println()
	}
}

func entrySummary(e logger.Entry, raw bool) string {
	if e.ToolInput == nil {
		if raw {
			return e.Raw
		}
		return redact.Redact(e.Raw)
	}
	if raw {
		for _, key := range []string{"command", "file_path", "notebook_path", "path"} {
			if s, ok := e.ToolInput[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return redact.Summary(e.ToolInput)
}

// printJSON writes the entries as a JSON array, redacting tool input and raw
// payloads unless raw is set.
func printJSON(w io.Writer, entries []logger.Entry, raw bool) error {
	out := make([]logger.Entry, len(entries))
	for i, e := range entries {
		if !raw {
			e.ToolInput = redact.Input(e.ToolInput)
			e.Raw = redact.Redact(e.Raw)
		}
		out[i] = e
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

type summaryStats struct {
	total      int
	blocked    int
	byCategory map[string]int
	byTool     map[string]int
}

func summarize(entries []logger.Entry) summaryStats {
	s := summaryStats{byCategory: map[string]int{}, byTool: map[string]int{}}
	for _, e := range entries {
		s.total++
		s.byTool[e.ToolName]++
		if e.Blocked {
			s.blocked++
			if e.Category != "" {
				s.byCategory[e.Category]++
			}
		}
	}
	return s
}

func printSummary(entries []logger.Entry) {
	s := summarize(entries)

	printHeader("hookguard Audit Summary")
	fmt.Printf("  Total requests:  %d\n", s.total)
	fmt.Printf("  ALLOW:           %s\n", styleAllow.Render(fmt.Sprint(s.total-s.blocked)))
	fmt.Printf("  BLOCK:           %s\n", styleBlock.Render(fmt.Sprint(s.blocked)))
	fmt.Printf("  First request:   %s\n", formatTimestamp(entries[0].Timestamp))
	fmt.Printf("  Last request:    %s\n", formatTimestamp(entries[len(entries)-1].Timestamp))

	if len(s.byCategory) > 0 {
		fmt.Println()
		printSection("Blocks by category")
		for _, k := range sortedKeys(s.byCategory) {
			fmt.Printf("  %-22s %d\n", k, s.byCategory[k])
		}
	}

	fmt.Println()
	printSection("Requests by tool")
	for _, k := range sortedKeys(s.byTool) {
		name := k
		if name == "" {
			name = "(undecodable)"
		}
		fmt.Printf("  %-22s %d\n", name, s.byTool[k])
	}
	fmt.Println()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Local().Format("2006-01-02 15:04:05")
}
