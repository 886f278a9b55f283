package cmd

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	interrors "github.com/bellmemo/bell-memo/internal/errors"
	"github.com/bellmemo/bell-memo/internal/logger"
	"github.com/bellmemo/bell-memo/internal/models"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import memos from a JSON file",
	Long: `Import memos from a JSON array or a JSON Lines file ("-" reads stdin).

Each record may carry id, title, content, created and updated. Records
without an id (missing, null or "") get a generated one. All memos are inserted in a single
transaction: if any id already exists, nothing is imported.

Examples:
  bell-memo import memos.json
  cat export.jsonl | bell-memo import -`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

// importRecord carries the id as text so an empty string can mean "generate one"
type importRecord struct {
	ID      string  `json:"id"`
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Created *int64  `json:"created"`
	Updated *int64  `json:"updated"`
}

func runImport(cmd *cobra.Command, args []string) error {
	var r io.Reader = os.Stdin
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open import file: %w", err)
		}
		defer f.Close()
		r = f
	}

	memos, err := parseImport(r)
	if err != nil {
		return err
	}
	if len(memos) == 0 {
		fmt.Println("No memos to import.")
		return nil
	}

	if err := svc.Memos.Insert(cmd.Context(), memos...); err != nil {
		return fmt.Errorf("import failed, no memos were written: %w", err)
	}

	logger.Info("Imported %d memos", len(memos))
	fmt.Printf("Imported %d memos.\n", len(memos))
	return nil
}

// parseImport reads either a JSON array of records or one record per line.
func parseImport(r io.Reader) ([]*models.Memo, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read import data: %w", err)
	}

	var records []importRecord
	dec := json.NewDecoder(br)
	if first == '[' {
		if err := dec.Decode(&records); err != nil {
			return nil, fmt.Errorf("invalid JSON array: %w", err)
		}
	} else {
		for {
			var rec importRecord
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("invalid record %d: %w", len(records)+1, err)
			}
			records = append(records, rec)
		}
	}

	memos := make([]*models.Memo, 0, len(records))
	for i, rec := range records {
		id := uuid.New()
		if rec.ID != "" {
			parsed, err := uuid.Parse(rec.ID)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w: %s", i+1, interrors.ErrInvalidMemoID, rec.ID)
			}
			id = parsed
		}
		memos = append(memos, &models.Memo{
			ID:      id,
			Title:   rec.Title,
			Content: rec.Content,
			Created: rec.Created,
			Updated: rec.Updated,
		})
	}
	return memos, nil
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if !bytes.ContainsRune([]byte(" \t\r\n"), rune(b)) {
			return b, br.UnreadByte()
		}
	}
}
