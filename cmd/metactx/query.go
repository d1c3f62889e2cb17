package main

import (
	"context"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ajitpratap0/metactx/pkg/metadata"
)

func (a *app) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <guid>",
		Short: "Print an element as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close(context.Background())

			client, _, err := a.openClient(cmd.Context())
			if err != nil {
				return err
			}
			e, err := client.GetElementByGUID(cmd.Context(), a.cfg.Context.UserID, args[0], metadata.QueryOptions{})
			if err != nil {
				return err
			}
			return printJSON(cmd, e)
		},
	}
}

func (a *app) findCommand() *cobra.Command {
	var typeName string
	var startFrom, pageSize int
	var ignoreCase bool

	cmd := &cobra.Command{
		Use:   "find <search>",
		Short: "Search elements and print them as JSON",
		Long: `Search every string property of the elements for a substring. "*" matches
every element.

Example:
  metactx find "Customer" --type GlossaryTerm --ignore-case`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(); err != nil {
				return err
			}
			defer a.close(context.Background())

			client, _, err := a.openClient(cmd.Context())
			if err != nil {
				return err
			}
			opts := metadata.SearchOptions{
				QueryOptions: metadata.QueryOptions{
					MetadataElementTypeName: typeName,
					StartFrom:               startFrom,
					PageSize:                pageSize,
				},
				IgnoreCase: ignoreCase,
			}
			elements, err := client.FindElements(cmd.Context(), a.cfg.Context.UserID, args[0], opts)
			if err != nil {
				return err
			}
			if elements == nil {
				elements = []*metadata.Element{}
			}
			return printJSON(cmd, elements)
		},
	}
	cmd.Flags().StringVarP(&typeName, "type", "t", "", "Restrict results to this type and its subtypes")
	cmd.Flags().IntVar(&startFrom, "start-from", 0, "Index of the first result")
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "Maximum results (0 = repository maximum)")
	cmd.Flags().BoolVarP(&ignoreCase, "ignore-case", "i", false, "Match case-insensitively")
	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
