package commands

import (
	"fmt"
	"strings"

	"github.com/clientforge-io/forge/pkg/forge"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewGetCommand creates the get command.
func NewGetCommand() *cobra.Command {
	var (
		query      string
		selects    []string
		params     []string
		paginate   bool
		pageSize   int
		maxPages   int
		dataPath   string
		totalPath  string
		cursorPath string
	)

	cmd := &cobra.Command{
		Use:   "get PATH",
		Short: "Fetch a resource or collection",
		Long: `Fetch a resource from the targeted API and optionally reshape it.

Path expressions filter and project the response:

  forge get /books --query 'title'
  forge get /books --query '$[?(@.price < 10)].title'
  forge get /books --select title --select 'cost=price'
  forge get /books --paginate --data-path data --total-path total`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := createClient()
			if err != nil {
				return err
			}

			queryParams, err := parseParams(params)
			if err != nil {
				return err
			}

			var node any
			if paginate {
				node, err = fetchAllPages(cmd, client, args[0], queryParams, pageSize, maxPages, dataPath, totalPath, cursorPath)
			} else {
				node, err = client.Get(cmd.Context(), args[0], queryParams.ToValues())
			}

			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}

			result := resultFromNode(node)

			if query != "" {
				queried, err := result.Query(query)
				if err != nil {
					return fmt.Errorf("query failed: %w", err)
				}

				return renderResult(cmd, queried)
			}

			if len(selects) > 0 {
				selections, err := parseSelections(selects)
				if err != nil {
					return err
				}

				rows, err := result.Select(selections...)
				if err != nil {
					return fmt.Errorf("select failed: %w", err)
				}

				return renderOutput(cmd.OutOrStdout(), rows, viper.GetString("output"))
			}

			return renderResult(cmd, result)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "path expression applied to the response")
	cmd.Flags().StringArrayVarP(&selects, "select", "s", nil, "projection as key or key=expression (repeatable)")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().BoolVar(&paginate, "paginate", false, "fetch all pages")
	cmd.Flags().IntVar(&pageSize, "page-size", forge.DefaultPageSize, "items per page when paginating")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 for no limit)")
	cmd.Flags().StringVar(&dataPath, "data-path", forge.DefaultPathToData, "path expression locating page items")
	cmd.Flags().StringVar(&totalPath, "total-path", "", "path expression locating the total item count")
	cmd.Flags().StringVar(&cursorPath, "cursor-path", "", "path expression locating the next page cursor")

	return cmd
}

// fetchAllPages walks the collection with a cursor or offset paginator.
func fetchAllPages(cmd *cobra.Command, client forge.Client, path string, params *forge.QueryParams, pageSize, maxPages int, dataPath, totalPath, cursorPath string) (any, error) {
	var (
		paginator forge.Paginator
		err       error
	)

	if cursorPath != "" {
		paginator, err = forge.NewCursorPaginator(forge.CursorPaginatorOptions{
			PageSize:     pageSize,
			PathToData:   dataPath,
			PathToCursor: cursorPath,
		})
	} else {
		paginator, err = forge.NewOffsetPaginator(forge.OffsetPaginatorOptions{
			PageSize:    pageSize,
			PathToData:  dataPath,
			PathToTotal: totalPath,
		})
	}

	if err != nil {
		return nil, fmt.Errorf("building paginator: %w", err)
	}

	options := forge.DefaultPaginationOptions()
	options.MaxPages = maxPages

	items, err := forge.FetchAllPages[any](cmd.Context(), paginator, forge.PageFetcherFor(client, path, params), options)
	if err != nil {
		return nil, err
	}

	return items, nil
}

// resultFromNode wraps a decoded response in a result, preserving the
// single or collection shape of the payload.
func resultFromNode(node any) *forge.Result[any] {
	if items, ok := node.([]any); ok {
		return forge.Collection(items)
	}

	return forge.Single(node)
}

func renderResult(cmd *cobra.Command, result *forge.Result[any]) error {
	if result.IsSingle() {
		item, err := result.One()
		if err != nil {
			return err
		}

		return renderOutput(cmd.OutOrStdout(), item, viper.GetString("output"))
	}

	return renderOutput(cmd.OutOrStdout(), result.Items(), viper.GetString("output"))
}

// parseParams parses repeated key=value flags into query parameters.
func parseParams(raw []string) (*forge.QueryParams, error) {
	params := forge.NewQueryParams()

	for _, item := range raw {
		key, value, found := strings.Cut(item, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidParam, item)
		}

		params = params.WithExtra(key, value)
	}

	return params, nil
}
