package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/model"
	"github.com/jalajrastogi4/Research-Paper-QA-Summary/internal/store"
	"github.com/spf13/cobra"
)

var (
	historyLimit   int
	historyFlagged bool
	historyID      string
)

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent verdicts from the archive",
	Long: `History lists verdicts persisted to the Postgres archive.

Requires the verdict archive (store.enabled) and PAPERQA_STORE_DSN.

Example:
  paperqa history
  paperqa history --flagged --limit 50
  paperqa history --id 4f7c2e9a-...`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum verdicts to list")
	historyCmd.Flags().BoolVar(&historyFlagged, "flagged", false, "list only flagged verdicts")
	historyCmd.Flags().StringVar(&historyID, "id", "", "print one verdict as JSON instead of listing")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dsn := cfg.Store.DSN
	if dsn == "" {
		dsn = os.Getenv("PAPERQA_STORE_DSN")
	}
	if dsn == "" {
		return fmt.Errorf("PAPERQA_STORE_DSN environment variable not set")
	}

	archive, err := store.NewArchive(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect verdict archive: %w", err)
	}
	defer archive.Close()

	if historyID != "" {
		verdict, err := archive.Get(ctx, historyID)
		if err != nil {
			return fmt.Errorf("load verdict %s: %w", historyID, err)
		}
		data, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal verdict: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	var verdicts []model.HallucinationVerdict
	if historyFlagged {
		verdicts, err = archive.Flagged(ctx, historyLimit)
	} else {
		verdicts, err = archive.Recent(ctx, historyLimit)
	}
	if err != nil {
		return fmt.Errorf("list verdicts: %w", err)
	}

	if len(verdicts) == 0 {
		fmt.Println("No verdicts archived yet.")
		return nil
	}

	fmt.Printf("%-38s %-7s %-6s %-5s %-20s %s\n", "ID", "TIER", "SCORE", "FLAG", "CREATED", "QUESTION")
	for _, v := range verdicts {
		flag := ""
		if v.Flagged {
			flag = "⚠"
		}
		question := v.Question
		if len(question) > 60 {
			question = question[:57] + "..."
		}
		fmt.Printf("%-38s %-7s %-6.2f %-5s %-20s %s\n",
			v.ID, v.Tier, v.Score, flag, v.CreatedAt.Format("2006-01-02 15:04:05"), question)
	}

	return nil
}
