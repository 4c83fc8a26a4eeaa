package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jdmorrow/docqa/internal/query"
)

var searchJSON bool

var searchCmd = &cobra.Command{
	Use:   "search <question>",
	Short: "Ask a question against the indexed documents",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cfg)
		if err != nil {
			return err
		}

		result, err := d.processor.Process(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		if searchJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}
		fmt.Println(query.FormatChat(result))
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "print the full result as JSON")
	rootCmd.AddCommand(searchCmd)
}
