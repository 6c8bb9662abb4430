package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sceneforest/pkg/buildinfo"
	"github.com/matzehuels/sceneforest/pkg/cache"
	apperr "github.com/matzehuels/sceneforest/pkg/errors"
	"github.com/matzehuels/sceneforest/pkg/forest"
	sceneio "github.com/matzehuels/sceneforest/pkg/io"
	"github.com/matzehuels/sceneforest/pkg/observability"
	"github.com/matzehuels/sceneforest/pkg/scene"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "sceneforest"

	// redisPrefix namespaces artifact keys in a shared Redis.
	redisPrefix = appName + ":"
)

// Log levels accepted by New.
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
	Config Config

	cfgFile string
	noCache bool
	verbose bool
}

// New creates a new CLI instance with a default logger and default config.
// The config file is read once the root command starts running.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Sceneforest inspects and edits scene graphs of transform trees",
		Long:         `Sceneforest loads scene graphs (a forest of frames connected by 4x4 transforms), resolves transforms between any two frames, extracts subscenes and renders the structure with Graphviz.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default $XDG_CONFIG_HOME/sceneforest/config.toml)")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the artifact cache")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.subsceneCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.stressCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// applyVerbosity switches the logger to debug level for --verbose and
// attaches it to the command context.
func (c *CLI) applyVerbosity(cmd *cobra.Command) {
	if c.verbose {
		c.SetLogLevel(LogDebug)
	}
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
}

// setup loads the config file and routes library hooks to the logger.
func (c *CLI) setup(cmd *cobra.Command) error {
	c.applyVerbosity(cmd)
	cfg, err := LoadConfig(c.cfgFile)
	if err != nil {
		return err
	}
	c.Config = cfg

	hooks := &logHooks{logger: c.Logger}
	observability.SetSceneHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetRenderHooks(hooks)
	return nil
}

// =============================================================================
// Scene Loading
// =============================================================================

// forestOptions returns the validation policies from the config.
func (c *CLI) forestOptions() forest.Options {
	return forest.Options{
		CoerceAffine: c.Config.Scene.CoerceAffine,
		StrictRemove: c.Config.Scene.StrictRemove,
	}
}

// loadScene imports a scene file and wraps it in a graph facade.
func (c *CLI) loadScene(path string) (*scene.Graph, error) {
	if err := apperr.ValidatePath(path); err != nil {
		return nil, err
	}
	prog := newProgress(c.Logger)
	f, err := sceneio.Import(path, c.forestOptions())
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded scene", "path", path, "nodes", f.NodeCount(), "edges", f.EdgeCount())
	if f.Base() == "" {
		if base := c.Config.Scene.Base; base != "" && f.Has(base) && isRoot(f, base) {
			if err := f.SetBase(base); err != nil {
				return nil, err
			}
		}
	}
	prog.debug(fmt.Sprintf("Imported %s", filepath.Base(path)))
	return scene.FromForest(f), nil
}

func isRoot(f *forest.Forest, node string) bool {
	_, ok := f.Parent(node)
	return !ok
}

// saveScene writes g to path, choosing the format from the extension.
func (c *CLI) saveScene(g *scene.Graph, path string) error {
	if err := apperr.ValidatePath(path); err != nil {
		return err
	}
	if err := sceneio.Export(g.Forest(), path); err != nil {
		return apperr.Coded(err, "write %s", path)
	}
	return nil
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured artifact cache backend. A cache that cannot
// be opened degrades to no caching with a warning.
func (c *CLI) newCache(ctx context.Context, keyType string) cache.Cache {
	if c.noCache {
		return cache.NewNullCache()
	}
	backend, err := c.openBackend(ctx)
	if err != nil {
		c.Logger.Warn("artifact cache disabled", "backend", c.Config.Cache.Backend, "err", err)
		return cache.NewNullCache()
	}
	return cache.Instrument(backend, keyType)
}

func (c *CLI) openBackend(ctx context.Context) (cache.Cache, error) {
	switch c.Config.Cache.Backend {
	case backendNone:
		return cache.NewNullCache(), nil
	case backendRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     c.Config.Redis.Addr,
			Password: c.Config.Redis.Password,
			DB:       c.Config.Redis.DB,
			Prefix:   redisPrefix,
		})
	default:
		dir, err := c.fileCacheDir()
		if err != nil {
			return nil, err
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Paths
// =============================================================================

// fileCacheDir returns the configured cache directory or the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns $XDG_CACHE_HOME/sceneforest, or ~/.cache/sceneforest.
func cacheDir() (string, error) { return xdgDir("XDG_CACHE_HOME", ".cache") }

// configDir returns $XDG_CONFIG_HOME/sceneforest, or ~/.config/sceneforest.
func configDir() (string, error) { return xdgDir("XDG_CONFIG_HOME", ".config") }

func xdgDir(env, fallback string) (string, error) {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, appName), nil
}
