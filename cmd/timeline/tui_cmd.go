package main

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"time"

	"github.com/fentz26/timeline/internal/cache"
	"github.com/fentz26/timeline/internal/timeline"
	"github.com/fentz26/timeline/internal/tui"
	"github.com/spf13/cobra"
)

var (
	tuiItems string
	tuiLog   string
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive timeline",
	Long: `Launch the interactive timeline. With --items the file is edited in memory
without a server; otherwise the TUI talks to the API at --api, starting a
background server when none is running.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&tuiItems, "items", "", "Items file to open locally (.yaml, .json, .ics)")
	tuiCmd.Flags().StringVar(&tuiLog, "log", "", "Log file while the TUI is running")
}

func runTUI(cmd *cobra.Command, args []string) error {
	opts := tui.Options{
		Strict:  cfg.Layout.Strict,
		Zoom:    cfg.Layout.Zoom,
		LogFile: flagOr(cmd, "log", tuiLog, cfg.Log.File),
	}

	var backend tui.Backend
	if tuiItems != "" {
		service, s, err := openService(tuiItems, timeline.Options{Strict: opts.Strict}, cache.NewMemory(0, 1))
		if err != nil {
			return err
		}
		defer s.Close()
		backend = service
		opts.Source = tuiItems
	} else {
		client := tui.NewClient(apiAddr)
		if ok, _ := client.CheckHealth(); !ok {
			fmt.Println("⚡ timeline server not running. Starting background service...")
			if err := startServer(client); err != nil {
				return fmt.Errorf("failed to start server: %w", err)
			}
		}
		backend = client
		opts.Source = apiAddr
	}

	app := tui.New(backend, opts)
	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startServer launches `timeline serve` detached, listening on the host of
// the API address, and waits for it to report healthy.
func startServer(client *tui.Client) error {
	u, err := url.Parse(apiAddr)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid api address %q", apiAddr)
	}

	exe, err := os.Executable()
	if err != nil {
		return err
	}

	serveArgs := []string{"serve", "--listen", u.Host}
	if configPath != "" {
		serveArgs = append(serveArgs, "--config", configPath)
	}
	cmd := exec.Command(exe, serveArgs...)
	// Detach process so it survives TUI exit
	configureServerProc(cmd)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	fmt.Print("   Waiting for server...")
	for i := 0; i < 20; i++ { // Wait up to 5 seconds
		if ok, _ := client.CheckHealth(); ok {
			fmt.Println(" Done.")
			return nil
		}
		time.Sleep(250 * time.Millisecond)
		fmt.Print(".")
	}
	fmt.Println(" Timeout!")
	return fmt.Errorf("server started but API not reachable at %s", apiAddr)
}
