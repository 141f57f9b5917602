package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

// addCatalogCommand exposes install under the catalog command tree
func addCatalogCommand() *cobra.Command {
	cmd := installCommand()
	cmd.Use = "add <slug>"
	cmd.Short = "Add (install) a recipe into the local workspace"
	cmd.Example = `  # Add the x recipe
  web2api catalog add x`
	return cmd
}

func installCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install <slug>",
		Short: "Install a recipe bundle into the local workspace",
		Long: `Copy a recipe bundle from the catalog into the local workspace
(default ~/.web2api/recipes/<slug>). Missing credentials are reported but do
not fail the install; the recipe simply starts out not ready.`,
		Args: cobra.ExactArgs(1),
		Example: `  # Install the x recipe
  web2api install x`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slug := args[0]

			svc, src, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			entry, err := svc.Lookup(slug)
			if err != nil {
				return err
			}

			// Validate the descriptor before copying anything
			recipe, err := svc.Load(slug)
			if err != nil {
				return err
			}

			target := filepath.Join(web2apiHome(), "recipes", slug)
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("failed to create install directory: %w", err)
			}

			var copied int
			err = src.WalkFiles(entry.Path, func(p string, content []byte) error {
				rel := strings.TrimPrefix(p, entry.Path+"/")
				dest := filepath.Join(target, filepath.FromSlash(rel))
				if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
					return err
				}

				// Scraper scripts must stay executable
				mode := os.FileMode(0644)
				if recipe.Scraper != "" && p == path.Join(entry.Path, recipe.Scraper) {
					mode = 0755
				}

				if err := os.WriteFile(dest, content, mode); err != nil {
					return err
				}
				copied++
				return nil
			})
			if err != nil {
				return fmt.Errorf("failed to copy bundle: %w", err)
			}

			fmt.Printf("Installed %s (%d files) to %s\n", slug, copied, target)

			report, err := svc.Doctor(slug, os.Getenv)
			if err != nil {
				return err
			}

			if report.Ready {
				fmt.Println("Recipe is ready.")
			} else {
				fmt.Printf("Recipe is not ready. Missing: %s\n", strings.Join(report.Missing, ", "))
				fmt.Println("Set the variables above, then run: web2api doctor " + slug)
			}
			return nil
		},
	}
	return cmd
}
