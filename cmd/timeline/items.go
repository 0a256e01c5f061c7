package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fentz26/timeline/internal/controlplane"
	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
	"github.com/spf13/cobra"
)

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect and edit items on a running server",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items",
	RunE:  runItemsList,
}

var itemsShowCmd = &cobra.Command{
	Use:   "show [item-id]",
	Short: "Show item details",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsShow,
}

var itemsRenameCmd = &cobra.Command{
	Use:   "rename [item-id] [name]",
	Short: "Rename an item",
	Args:  cobra.ExactArgs(2),
	RunE:  runItemsRename,
}

var itemsRescheduleCmd = &cobra.Command{
	Use:   "reschedule [item-id]",
	Short: "Move an item to new dates",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemsReschedule,
}

var itemsChangesCmd = &cobra.Command{
	Use:   "changes [item-id]",
	Short: "Show the change log",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runItemsChanges,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show server health",
	RunE:  runStatus,
}

var (
	newStart     string
	newEnd       string
	changesLimit int
)

func init() {
	itemsCmd.AddCommand(itemsListCmd, itemsShowCmd, itemsRenameCmd, itemsRescheduleCmd, itemsChangesCmd)
	rootCmd.AddCommand(statusCmd)

	itemsRescheduleCmd.Flags().StringVar(&newStart, "start", "", "New start date, YYYY-MM-DD (required)")
	itemsRescheduleCmd.Flags().StringVar(&newEnd, "end", "", "New end date, YYYY-MM-DD (required)")
	itemsRescheduleCmd.MarkFlagRequired("start")
	itemsRescheduleCmd.MarkFlagRequired("end")

	itemsChangesCmd.Flags().IntVar(&changesLimit, "limit", 20, "Maximum number of records")
}

func runItemsList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/items")
	if err != nil {
		return err
	}

	var snap store.Snapshot
	if err := json.Unmarshal(resp, &snap); err != nil {
		return err
	}

	if len(snap.Items) == 0 {
		fmt.Println("No items found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSTART\tEND")
	for _, it := range snap.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", truncateID(it.ID), truncate(it.Name, 40), it.Start, it.End)
	}
	w.Flush()
	fmt.Printf("\nRevision %d\n", snap.Revision)
	return nil
}

func runItemsShow(cmd *cobra.Command, args []string) error {
	it, err := fetchItem(args[0])
	if err != nil {
		return err
	}
	printItem(it)
	return nil
}

func runItemsRename(cmd *cobra.Command, args []string) error {
	resp, err := apiPost("/items/"+url.PathEscape(args[0])+"/rename", controlplane.RenameRequest{Name: args[1]})
	if err != nil {
		return err
	}

	var it models.Item
	if err := json.Unmarshal(resp, &it); err != nil {
		return err
	}
	fmt.Printf("Renamed item %s to %q\n", it.ID, it.Name)
	return nil
}

func runItemsReschedule(cmd *cobra.Command, args []string) error {
	body := controlplane.RescheduleRequest{Start: newStart, End: newEnd}
	resp, err := apiPost("/items/"+url.PathEscape(args[0])+"/reschedule", body)
	if err != nil {
		return err
	}

	var it models.Item
	if err := json.Unmarshal(resp, &it); err != nil {
		return err
	}
	fmt.Printf("Rescheduled item %s: %s → %s\n", it.ID, it.Start, it.End)
	return nil
}

func runItemsChanges(cmd *cobra.Command, args []string) error {
	path := "/changes?limit=" + strconv.Itoa(changesLimit)
	if len(args) == 1 {
		path += "&item=" + url.QueryEscape(args[0])
	}
	resp, err := apiGet(path)
	if err != nil {
		return err
	}

	var changes []models.ChangeRecord
	if err := json.Unmarshal(resp, &changes); err != nil {
		return err
	}

	if len(changes) == 0 {
		fmt.Println("No changes found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tITEM\tOUTCOME\tREV\tDETAILS")
	for _, c := range changes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			c.Timestamp.Local().Format("2006-01-02 15:04:05"), c.Action, truncateID(c.ItemID), c.Outcome, c.Revision, truncate(c.Details, 40))
	}
	w.Flush()
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	health, err := CheckHealth()
	if health != nil {
		fmt.Printf("OK:       %v\n", health.OK)
		fmt.Printf("DB:       %s\n", health.DB)
		fmt.Printf("Version:  %s\n", health.Version)
		fmt.Printf("Items:    %d\n", health.Items)
		fmt.Printf("Revision: %d\n", health.Revision)
	}
	return err
}

func fetchItem(id string) (*models.Item, error) {
	resp, err := apiGet("/items/" + url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	var it models.Item
	if err := json.Unmarshal(resp, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

func printItem(it *models.Item) {
	fmt.Printf("ID:     %s\n", it.ID)
	fmt.Printf("Name:   %s\n", it.Name)
	fmt.Printf("Start:  %s\n", it.Start)
	fmt.Printf("End:    %s\n", it.End)
	if start, end, err := it.Dates(); err == nil {
		fmt.Printf("Days:   %d\n", models.DaysBetween(start, end)+1)
	}
}

// --- Helpers ---

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
