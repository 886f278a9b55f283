package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/models"
)

var getCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get a memo by ID",
	Long:  `Display the full content of a memo by its ID.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %s", interrors.ErrInvalidMemoID, args[0])
	}

	memo, err := svc.Memos.Get(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("failed to get memo: %w", err)
	}

	printMemo(memo)
	return nil
}

func printMemo(memo *models.Memo) {
	rule := strings.Repeat("=", 80)
	fmt.Println(rule)
	fmt.Printf("ID: %s\n", memo.ID)
	fmt.Printf("Title: %s\n", memo.TitleOrEmpty())
	fmt.Printf("Created: %s\n", formatTimestamp(memo.Created))
	fmt.Printf("Updated: %s\n", formatTimestamp(memo.Updated))
	fmt.Printf("%s\n\n", rule)
	fmt.Println(memo.ContentOrEmpty())
}
