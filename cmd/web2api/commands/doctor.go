package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func doctorCommand() *cobra.Command {
	var opts struct {
		JSON bool
	}
	cmd := &cobra.Command{
		Use:   "doctor <slug>",
		Short: "Check whether a recipe's required credentials are present",
		Long: `Compute the readiness of a recipe against the current environment.
A recipe is ready iff every required environment variable is set to a
non-empty value. The check is recomputed on every run and never cached.`,
		Args: cobra.ExactArgs(1),
		Example: `  # Check the x recipe
  web2api doctor x`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := openCatalog(cmd.Context())
			if err != nil {
				return err
			}

			report, err := svc.Doctor(args[0], os.Getenv)
			if err != nil {
				return err
			}

			if opts.JSON {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			if report.Ready {
				fmt.Printf("%s: ready\n", report.Slug)
				return nil
			}

			fmt.Printf("%s: not ready\n", report.Slug)
			recipe, err := svc.Load(args[0])
			if err != nil {
				return err
			}
			for _, name := range report.Missing {
				desc := ""
				for _, v := range recipe.Env {
					if v.Name == name {
						desc = v.Description
						break
					}
				}
				fmt.Printf("  missing %s", name)
				if desc != "" {
					fmt.Printf("  (%s)", desc)
				}
				fmt.Println()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print as JSON.")
	return cmd
}
