package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Endogen/web2api-recipes/internal/domain"
	"gopkg.in/yaml.v3"
)

func catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect the recipe catalog",
	}
	cmd.AddCommand(listCatalogCommand())
	cmd.AddCommand(showCatalogCommand())
	cmd.AddCommand(addCatalogCommand())
	return cmd
}

func listCatalogCommand() *cobra.Command {
	var opts struct {
		JSON bool
	}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all recipes in the catalog",
		Args:  cobra.NoArgs,
		Example: `  # List recipes
  web2api catalog list

  # List recipes in JSON format
  web2api catalog list --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			entries, err := svc.Entries()
			if err != nil {
				return err
			}

			if opts.JSON {
				data, err := json.MarshalIndent(entries, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if len(entries) == 0 {
				fmt.Println("Catalog is empty.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "SLUG\tNAME\tVERSION\tDESCRIPTION")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Slug, e.Name, e.Version, e.Description)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print as JSON.")
	return cmd
}

func showCatalogCommand() *cobra.Command {
	var opts struct {
		JSON bool
	}
	cmd := &cobra.Command{
		Use:   "show <slug>",
		Short: "Show a recipe descriptor",
		Args:  cobra.ExactArgs(1),
		Example: `  # Show the wikipedia recipe
  web2api catalog show wikipedia`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			recipe, err := svc.Load(args[0])
			if err != nil {
				return err
			}

			plugin, err := svc.Plugin(args[0])
			if err != nil {
				return err
			}

			out := struct {
				Recipe *domain.Recipe           `json:"recipe" yaml:"recipe"`
				Plugin *domain.PluginDescriptor `json:"plugin,omitempty" yaml:"plugin,omitempty"`
			}{Recipe: recipe, Plugin: plugin}

			if opts.JSON {
				data, err := json.MarshalIndent(out, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			data, err := yaml.Marshal(out)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print as JSON.")
	return cmd
}
