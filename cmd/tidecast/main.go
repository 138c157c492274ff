package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tidecast/tidecast/internal/app"
	"github.com/tidecast/tidecast/internal/config"
	"github.com/tidecast/tidecast/internal/feed"
	"github.com/tidecast/tidecast/internal/keymap"
	"github.com/tidecast/tidecast/internal/models"
	"github.com/tidecast/tidecast/internal/msg"
	"github.com/tidecast/tidecast/internal/ui"
)

var version = "0.1.0"

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:   "tidecast",
	Short: "Terminal podcast manager",
	Long: `Tidecast is a keyboard-driven terminal client for subscribing to
podcast feeds, syncing episodes, and downloading them for offline
listening.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

var importCmd = &cobra.Command{
	Use:   "import <opml-file>",
	Short: "Import feeds from an OPML subscription list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(args[0])
	},
}

var exportCmd = &cobra.Command{
	Use:   "export <opml-file>",
	Short: "Export subscribed feeds as OPML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExport(args[0])
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/tidecast/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.local/share/tidecast)")
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	km := keymap.Default()
	if err := km.Apply(cfg.Keybindings); err != nil {
		return err
	}

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(filepath.Join(dataDir, "tidecast.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)

	library, err := openLibrary()
	if err != nil {
		return err
	}

	intents := make(chan msg.Envelope, 64)
	commands := make(chan msg.Command, 64)

	controller := app.New(cfg, library, intents, commands)
	go controller.Run()

	return ui.Run(cfg, km, library, intents, commands)
}

func runImport(path string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	library, err := openLibrary()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	outlines, err := feed.ParseOPML(data)
	if err != nil {
		return err
	}

	subscribed := make(map[string]bool)
	library.Podcasts.Each(func(p *models.Podcast) {
		subscribed[p.URL] = true
	})

	added := 0
	for _, outline := range outlines {
		if subscribed[outline.URL] {
			fmt.Printf("Skipping %s (already subscribed)\n", outline.URL)
			continue
		}
		parsed, err := feed.Fetch(outline.URL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error fetching %s: %v\n", outline.URL, err)
			continue
		}
		pod := feed.BuildPodcast(library, outline.URL, parsed)
		library.Podcasts.Add(pod)
		subscribed[outline.URL] = true
		added++
		fmt.Printf("Added %s (%d episodes)\n", pod.Title, pod.Episodes.Len())
	}

	if err := library.Save(); err != nil {
		return err
	}
	fmt.Printf("Imported %d of %d feeds\n", added, len(outlines))
	return nil
}

func runExport(path string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	library, err := openLibrary()
	if err != nil {
		return err
	}

	var outlines []feed.OPMLOutline
	library.Podcasts.Each(func(p *models.Podcast) {
		outlines = append(outlines, feed.OPMLOutline{Title: p.Title, URL: p.URL})
	})

	data, err := feed.ExportOPML(outlines)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}
	fmt.Printf("Exported %d feeds to %s\n", len(outlines), path)
	return nil
}

// loadConfig reads the config file and settles the data directory.
func loadConfig() (config.Config, error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, err
	}

	if dataDir == "" {
		dataDir = defaultDataDir()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return config.Config{}, fmt.Errorf("create data dir: %w", err)
	}
	return cfg, nil
}

func openLibrary() (*models.Library, error) {
	return models.LoadLibrary(filepath.Join(dataDir, "library.json"))
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tidecast"
	}
	return filepath.Join(home, ".local", "share", "tidecast")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
