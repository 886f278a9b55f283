package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bellmemo/bell-memo/internal/constants"
	"github.com/bellmemo/bell-memo/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Deliver a search query to the search handler",
	Long: `Build a search intent from the query and deliver it to the search handler.

The handler currently echoes the received query; matching and ranking are
not implemented yet. Use --action to deliver an intent with a different
action, which the handler ignores.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var searchAction string

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVar(&searchAction, "action", constants.ActionSearch, "Intent action to deliver")
}

func runSearch(cmd *cobra.Command, args []string) error {
	intent := search.NewSearchIntent(strings.Join(args, " "))
	intent.Action = searchAction

	handled, err := svc.Search.Dispatch(cmd.Context(), intent)
	if err != nil {
		return err
	}
	if !handled {
		fmt.Printf("Intent with action %q was ignored.\n", intent.Action)
	}
	return nil
}
