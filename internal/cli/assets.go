package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lens/pkg/catalog"
)

// assetsCommand lists and searches catalogued assets.
func (c *CLI) assetsCommand() *cobra.Command {
	var (
		domain string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "assets [query]",
		Short: "List or search catalogued assets",
		Long: `List the assets in the catalog.

An optional query matches case-insensitively against friendly names,
technical names and domains. --domain restricts results to one domain
("All" matches every domain).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := c.loadCatalog()
			if err != nil {
				return err
			}
			q := catalog.Query{Domain: domain}
			if len(args) > 0 {
				q.Text = args[0]
			}
			assets, err := cat.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			for i := range assets {
				assets[i] = assets[i].Summary()
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(assets)
			}
			if len(assets) == 0 {
				printInfo("No assets match")
				return nil
			}
			printAssetTable(assets)
			printDetail("%d of %s", len(assets), pluralAssets(cmd, cat))
			printNextStep("Trace lineage", "lens lineage "+assets[0].ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&domain, "domain", "", "only assets in this domain")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.RegisterFlagCompletionFunc("domain", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cat, err := c.loadCatalog()
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		domains, err := cat.Domains(cmd.Context())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		var matches []string
		for _, d := range domains {
			if strings.HasPrefix(strings.ToLower(d), strings.ToLower(toComplete)) {
				matches = append(matches, d)
			}
		}
		return matches, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func pluralAssets(cmd *cobra.Command, cat catalog.Catalog) string {
	all, err := cat.List(cmd.Context())
	if err != nil {
		return "?"
	}
	if len(all) == 1 {
		return "1 asset"
	}
	return fmt.Sprintf("%d assets", len(all))
}

// completeAssetIDs offers catalog asset IDs for positional arguments.
func (c *CLI) completeAssetIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cat, err := c.loadCatalog()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	assets, err := cat.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var ids []string
	for _, a := range assets {
		if strings.HasPrefix(a.ID, toComplete) {
			ids = append(ids, a.ID+"\t"+a.FriendlyName)
		}
	}
	return ids, cobra.ShellCompDirectiveNoFileComp
}
