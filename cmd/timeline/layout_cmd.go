package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fentz26/timeline/internal/log"
	"github.com/fentz26/timeline/internal/timeline"
	"github.com/spf13/cobra"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the computed layout of an items file as JSON",
	RunE:  runLayout,
}

var (
	layoutItems  string
	layoutStrict bool
	layoutPretty bool
)

func init() {
	layoutCmd.Flags().StringVar(&layoutItems, "items", "", "Items file (.yaml, .json, .ics) (required)")
	layoutCmd.Flags().BoolVar(&layoutStrict, "strict", false, "Pack lanes with strict visual separation")
	layoutCmd.Flags().BoolVar(&layoutPretty, "pretty", false, "Indent the JSON output")
	layoutCmd.MarkFlagRequired("items")
}

func runLayout(cmd *cobra.Command, args []string) error {
	items, err := importItems(layoutItems)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("strict") {
		layoutStrict = cfg.Layout.Strict
	}

	view := timeline.Build(0, items, timeline.Options{Strict: layoutStrict})
	for _, p := range view.Problems {
		log.Warn("item skipped", "id", p.ItemID, "error", p.Error)
	}

	enc := json.NewEncoder(os.Stdout)
	if layoutPretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(view.Document()); err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	return nil
}
