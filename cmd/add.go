package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/models"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new memo",
	Long: `Add a new memo with an optional title and content.

Content can be provided in two ways:
1. Via --content flag: bell-memo add -t "Title" -c "Content"
2. Via stdin: echo "Content" | bell-memo add -t "Title"

A random ID is generated unless --id is given. Adding a memo whose ID
already exists fails and nothing is written.`,
	RunE: runAdd,
}

var (
	title   string
	content string
	memoID  string
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&title, "title", "t", "", "Memo title")
	addCmd.Flags().StringVarP(&content, "content", "c", "", "Memo content")
	addCmd.Flags().StringVar(&memoID, "id", "", "Memo ID (UUID); generated when omitted")
}

func runAdd(cmd *cobra.Command, args []string) error {
	if content == "" {
		stat, _ := os.Stdin.Stat()
		if stat != nil && (stat.Mode()&os.ModeCharDevice) == 0 {
			scanner := bufio.NewScanner(os.Stdin)
			var lines []string
			for scanner.Scan() {
				lines = append(lines, scanner.Text())
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			content = strings.Join(lines, "\n")
		}
	}

	memo, err := buildMemo(memoID, title, content)
	if err != nil {
		return err
	}

	if err := svc.Memos.Create(cmd.Context(), memo); err != nil {
		return fmt.Errorf("failed to add memo: %w", err)
	}

	fmt.Printf("Memo added successfully!\n")
	fmt.Printf("ID: %s\n", memo.ID)
	if memo.Title != nil {
		fmt.Printf("Title: %s\n", *memo.Title)
	}
	return nil
}

// buildMemo assembles a memo from CLI input. Empty title or content stay
// NULL; an empty id is left for Create to fill.
func buildMemo(rawID, title, content string) (*models.Memo, error) {
	if title == "" && strings.TrimSpace(content) == "" {
		return nil, interrors.ErrEmptyMemo
	}

	memo := &models.Memo{}
	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", interrors.ErrInvalidMemoID, rawID)
		}
		memo.ID = id
	}
	if title != "" {
		memo.Title = &title
	}
	if content != "" {
		memo.Content = &content
	}
	return memo, nil
}
