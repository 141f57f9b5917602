package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Endogen/web2api-recipes/internal/scraper"
	"github.com/Endogen/web2api-recipes/internal/source"
)

func scrapeCommand() *cobra.Command {
	var opts struct {
		Params  []string
		Timeout time.Duration
	}
	cmd := &cobra.Command{
		Use:   "scrape <slug> <endpoint>",
		Short: "Run a recipe's scraper for one endpoint",
		Long: `Invoke the scraper script shipped with a recipe bundle. Parameters are
passed to the script as WEB2API_PARAM_* environment variables; the script
prints a JSON result which is echoed to stdout.`,
		Args: cobra.ExactArgs(2),
		Example: `  # Search wikipedia
  web2api scrape wikipedia search --param query="golang"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			slug, endpoint := args[0], args[1]

			svc, src, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			recipe, err := svc.Load(slug)
			if err != nil {
				return err
			}

			if recipe.Endpoint(endpoint) == nil {
				return fmt.Errorf("recipe %s has no endpoint %q", slug, endpoint)
			}
			if recipe.Scraper == "" {
				return fmt.Errorf("recipe %s ships no scraper", slug)
			}

			params := make(map[string]string, len(opts.Params))
			for _, p := range opts.Params {
				name, value, ok := strings.Cut(p, "=")
				if !ok {
					return fmt.Errorf("invalid --param %q, expected name=value", p)
				}
				params[name] = value
			}

			// Warn but do not refuse: the script may have its own fallbacks
			report, err := svc.Doctor(slug, os.Getenv)
			if err != nil {
				return err
			}
			if !report.Ready {
				fmt.Fprintf(os.Stderr, "warning: recipe not ready, missing %s\n",
					strings.Join(report.Missing, ", "))
			}

			entry, err := svc.Lookup(slug)
			if err != nil {
				return err
			}

			scriptPath, err := resolveScraper(src, entry.Path, recipe.Scraper, slug)
			if err != nil {
				return err
			}

			runner := scraper.NewRunner(opts.Timeout, slog.Default())
			result, err := runner.Run(cmd.Context(), scriptPath, endpoint, params)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringArrayVar(&opts.Params, "param", nil, "Endpoint parameter as name=value (repeatable).")
	flags.DurationVar(&opts.Timeout, "timeout", 60*time.Second, "Scraper timeout.")
	return cmd
}

// resolveScraper locates the scraper script on disk: an installed bundle
// wins, then the catalog source itself when it is local
func resolveScraper(src source.Source, bundlePath, script, slug string) (string, error) {
	installed := filepath.Join(web2apiHome(), "recipes", slug, script)
	if _, err := os.Stat(installed); err == nil {
		return installed, nil
	}

	var root string
	switch s := src.(type) {
	case *source.Dir:
		root = s.Location()
	case *source.Git:
		root = s.LocalPath()
	default:
		return "", fmt.Errorf("cannot locate scraper for %s, run: web2api install %s", slug, slug)
	}

	scriptPath := filepath.Join(root, filepath.FromSlash(bundlePath), script)
	if _, err := os.Stat(scriptPath); err != nil {
		return "", fmt.Errorf("scraper not found at %s", scriptPath)
	}
	return scriptPath, nil
}
