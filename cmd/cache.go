package cmd

import (
	"fmt"
	"net/http"

	"github.com/cwarden/agenda/internal/offline"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the offline cache",
}

var cacheInstallCmd = &cobra.Command{
	Use:   "install [url...]",
	Short: "Download assets into the current offline cache",
	Long: `Fetch every asset (the offline_assets setting, or the URLs given)
and store them in the current named cache. Nothing is stored if any
download fails.`,
	RunE: runCacheInstall,
}

var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete offline caches other than the current one",
	RunE:  runCachePrune,
}

func init() {
	cacheCmd.AddCommand(cacheInstallCmd, cachePruneCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheInstall(cmd *cobra.Command, args []string) error {
	assets := cfg.OfflineAssets
	if len(args) > 0 {
		assets = args
	}
	if len(assets) == 0 {
		return fmt.Errorf("no assets to install: set offline_assets or pass URLs")
	}

	cache, err := offline.Open(cfg.CacheDir, cfg.CacheName)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: cfg.FetchTimeout}
	if err := cache.Install(cmd.Context(), client, assets); err != nil {
		return err
	}

	log.Info("installed %d assets into %s", len(assets), cache.Dir())
	fmt.Fprintf(cmd.OutOrStdout(), "Installed %d assets into cache %s\n", len(assets), cache.Name())
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	removed, err := offline.Activate(cfg.CacheDir, []string{cfg.CacheName})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(removed) == 0 {
		fmt.Fprintln(out, "No old caches found.")
		return nil
	}
	for _, name := range removed {
		fmt.Fprintf(out, "Removed cache %s\n", name)
	}
	return nil
}
