// Package cli implements the propgraph command-line interface.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/propgraph/pkg/analytics"
	"github.com/matzehuels/propgraph/pkg/buildinfo"
	"github.com/matzehuels/propgraph/pkg/cache"
	"github.com/matzehuels/propgraph/pkg/config"
	"github.com/matzehuels/propgraph/pkg/graph"
	pgio "github.com/matzehuels/propgraph/pkg/io"
)

// appName is the application name used for directories and display.
const appName = "propgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	config     *config.File
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "propgraph queries and analyzes property graphs",
		Long:         `propgraph loads property graphs from JSON, runs vertex programs such as PageRank over them and renders them with Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.configPath != "" {
				f, err := config.Load(c.configPath)
				if err != nil {
					return err
				}
				c.config = f
				c.Logger.Debug("loaded config", "path", c.configPath)
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "TOML configuration file")

	root.AddCommand(c.classicCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.computeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Graphs
// =============================================================================

// loadGraph reads a JSON graph into a graph built from the configuration.
func (c *CLI) loadGraph(path string) (*graph.Graph, error) {
	g, err := c.config.OpenGraph()
	if err != nil {
		return nil, err
	}
	if err := pgio.ImportJSONInto(path, g); err != nil {
		return nil, err
	}
	return g, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an analytics runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*analytics.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return analytics.NewRunner(cc, nil, loggerFromContext(ctx)), nil
}

// newCache selects Redis when configured, the file cache otherwise.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if c.config != nil && c.config.Cache.Redis != "" {
		return cache.DialRedis(ctx, c.config.Cache.Redis)
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.config != nil && c.config.Cache.Dir != "" {
		return c.config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/propgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
