// Package commands builds the web2api command tree. The CLI is the local
// counterpart of the recipesd service: it reads the same catalog layout
// and computes the same readiness checks against the caller's environment.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Endogen/web2api-recipes/internal/catalog"
	"github.com/Endogen/web2api-recipes/internal/source"
)

var rootOpts struct {
	CatalogSource string
	Verbose       bool
}

// Root builds the web2api root command
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "web2api",
		Short:        "Browse, install and check web2api recipes",
		Long:         `web2api reads a recipe catalog (a local checkout or a git URL), lists the installable recipes, installs recipe bundles locally and checks whether their required credentials are present in the environment.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if rootOpts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&rootOpts.CatalogSource, "catalog", "",
		"Catalog source: a directory or git URL (default $WEB2API_RECIPE_CATALOG_SOURCE, then the current directory)")
	flags.BoolVarP(&rootOpts.Verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(catalogCommand())
	cmd.AddCommand(installCommand())
	cmd.AddCommand(doctorCommand())
	cmd.AddCommand(scrapeCommand())

	return cmd
}

// catalogLocation resolves the catalog source: flag, environment, then
// the current directory
func catalogLocation() string {
	if rootOpts.CatalogSource != "" {
		return rootOpts.CatalogSource
	}
	if v := os.Getenv("WEB2API_RECIPE_CATALOG_SOURCE"); v != "" {
		return v
	}
	return "."
}

// web2apiHome returns the local install workspace
func web2apiHome() string {
	if v := os.Getenv("WEB2API_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".web2api"
	}
	return filepath.Join(home, ".web2api")
}

// openCatalog opens the configured catalog source and loads its index.
// Git URLs are cloned into the local workspace first.
func openCatalog(ctx context.Context) (*catalog.Service, source.Source, error) {
	location := catalogLocation()

	src, err := source.Open(source.Config{
		Location:  location,
		Branch:    os.Getenv("WEB2API_CATALOG_BRANCH"),
		LocalPath: filepath.Join(web2apiHome(), "catalog"),
		Logger:    slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}

	if git, ok := src.(*source.Git); ok {
		if err := git.Clone(ctx); err != nil {
			return nil, nil, fmt.Errorf("failed to fetch catalog: %w", err)
		}
	}

	svc, err := catalog.New(catalog.Config{
		Source: src,
		Logger: slog.Default(),
	})
	if err != nil {
		return nil, nil, err
	}

	if err := svc.LoadIndex(); err != nil {
		return nil, nil, err
	}

	return svc, src, nil
}
