package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/constants"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List memos",
	Long:  `List memos newest first with their ID, title, and creation date.`,
	RunE:  runList,
}

var (
	listLimit  int
	listOffset int
	listShort  bool
)

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "l", 0, "Maximum number of memos to display (default from config)")
	listCmd.Flags().IntVarP(&listOffset, "offset", "o", 0, "Number of memos to skip")
	listCmd.Flags().BoolVarP(&listShort, "short", "s", false, "Show only ID and title")
}

func runList(cmd *cobra.Command, args []string) error {
	limit := listLimit
	if limit <= 0 {
		limit = appConfig.ListLimit
	}

	memos, err := svc.Memos.List(cmd.Context(), limit, listOffset)
	if err != nil {
		return fmt.Errorf("failed to list memos: %w", err)
	}

	if len(memos) == 0 {
		fmt.Println("No memos found.")
		return nil
	}

	fmt.Printf("Found %d memos:\n\n", len(memos))

	for _, memo := range memos {
		if listShort {
			fmt.Printf("[%s] %s\n", memo.ID, memo.TitleOrEmpty())
			continue
		}
		fmt.Printf("ID: %s\n", memo.ID)
		fmt.Printf("Title: %s\n", memo.TitleOrEmpty())
		fmt.Printf("Created: %s\n", formatTimestamp(memo.Created))
		fmt.Printf("Preview: %s\n", preview(memo.ContentOrEmpty(), constants.PreviewLength))
		fmt.Println(strings.Repeat("-", 60))
	}

	return nil
}

func preview(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}

// formatTimestamp renders a Unix-seconds column, "-" when NULL.
func formatTimestamp(ts *int64) string {
	if ts == nil {
		return "-"
	}
	return formatTime(time.Unix(*ts, 0), time.Now())
}

func formatTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < 0:
		return t.Format("2006-01-02 15:04")
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		minutes := int(diff.Minutes())
		if minutes == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", minutes)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 7*24*time.Hour:
		days := int(diff.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	default:
		return t.Format("2006-01-02 15:04")
	}
}
