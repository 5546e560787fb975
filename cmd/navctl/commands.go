package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	awsDynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wayfinder-backend/internal/config"
	"wayfinder-backend/internal/di"
	"wayfinder-backend/internal/domain/location"
	"wayfinder-backend/internal/graph"
	"wayfinder-backend/internal/graph/source"
	"wayfinder-backend/internal/locator"
	"wayfinder-backend/internal/pathfinding"
	"wayfinder-backend/internal/render"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type rootOptions struct {
	file    string
	jsonOut bool
}

// maxBatchWrite is the DynamoDB BatchWriteItem limit.
const maxBatchWrite = 25

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "navctl",
		Short:         "Inspect building definitions and plan photo routes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.file, "file", "f", "data/navigation_data.json", "building definition (json or yaml)")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")

	root.AddCommand(
		newValidateCmd(opts),
		newRouteCmd(opts),
		newResolveCmd(opts),
		newDestinationsCmd(opts),
		newSeedCmd(opts),
	)
	return root
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

type validateResult struct {
	Building     string     `json:"building,omitempty"`
	Nodes        int        `json:"nodes"`
	Edges        int        `json:"edges"`
	Entrance     string     `json:"entrance"`
	Farthest     string     `json:"farthest"`
	FarthestHops int        `json:"farthest_hops"`
	Islands      [][]string `json:"islands,omitempty"`
	Warnings     []string   `json:"warnings,omitempty"`
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the building and report errors and unreachable places",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), opts.file)
			if err != nil {
				return err
			}

			res := validateResult{
				Building: g.Building(),
				Nodes:    g.NodeCount(),
				Edges:    g.EdgeCount(),
				Entrance: g.Entrance(),
				Islands:  pathfinding.Components(g, g.Unreachable()),
				Warnings: g.Warnings(),
			}
			res.Farthest, res.FarthestHops = farthestFrom(g, g.Entrance())

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, res)
			}

			fmt.Fprintf(out, "%s: %d places, %d connections, entrance %s\n", displayName(res.Building, opts.file), res.Nodes, res.Edges, res.Entrance)
			if n, ok := g.Node(res.Farthest); ok {
				fmt.Fprintf(out, "farthest place: %s (%d hops from the entrance)\n", n.Name, res.FarthestHops)
			}
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			for _, island := range res.Islands {
				fmt.Fprintf(out, "unreachable group: %s\n", strings.Join(island, ", "))
			}
			return nil
		},
	}
}

// farthestFrom returns the reachable node with the most hops from start.
// Ties go to definition order.
func farthestFrom(g *graph.Graph, start string) (string, int) {
	farthest, hops := start, 0
	for _, n := range g.Nodes() {
		d, err := pathfinding.Distance(g, start, n.ID)
		if err != nil {
			continue
		}
		if d > hops {
			farthest, hops = n.ID, d
		}
	}
	return farthest, hops
}

// =============================================================================
// ROUTE COMMAND
// =============================================================================

type routeResult struct {
	Start       string        `json:"start"`
	Destination string        `json:"destination"`
	Path        []string      `json:"path"`
	Steps       []render.Step `json:"steps"`
	DFSPath     []string      `json:"dfs_path,omitempty"`
}

func newRouteCmd(opts *rootOptions) *cobra.Command {
	var (
		photoBase string
		compare   bool
	)

	cmd := &cobra.Command{
		Use:   "route <start> <destination>",
		Short: "Print the photo steps from start to destination",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), opts.file)
			if err != nil {
				return err
			}
			loc := locator.New(g, nil, 0, zap.NewNop())

			start, err := loc.ResolveLocal(args[0])
			if err != nil {
				return err
			}
			dest, err := loc.ResolveLocal(args[1])
			if err != nil {
				return err
			}

			path, err := pathfinding.ShortestPath(g, start.NodeID, dest.NodeID)
			if err != nil {
				return err
			}
			steps, err := render.New(photoBase).Render(g, path)
			if err != nil {
				return err
			}

			res := routeResult{Start: start.NodeID, Destination: dest.NodeID, Path: path, Steps: steps}
			if compare {
				if res.DFSPath, err = pathfinding.DFSPath(g, start.NodeID, dest.NodeID); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, res)
			}
			printSteps(out, steps)
			if compare {
				fmt.Fprintf(out, "shortest: %d steps, depth-first: %d steps\n", len(res.Path), len(res.DFSPath))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&photoBase, "photo-base", "", "base URL prefixed to photo references")
	cmd.Flags().BoolVar(&compare, "compare-dfs", false, "also print the depth-first path length")
	return cmd
}

func printSteps(out io.Writer, steps []render.Step) {
	for _, s := range steps {
		line := fmt.Sprintf("%2d. %s (floor %d)", s.Index+1, s.Name, s.Floor)
		if s.PhotoURL != "" {
			line += " [" + s.PhotoURL + "]"
		}
		if t := s.Transition; t != nil && t.Direction != render.DirectionLevel {
			line += fmt.Sprintf(" take the %s %s to floor %d", t.Kind, t.Direction, t.ToFloor)
		}
		if s.Arrival != nil {
			line += " - arrived"
		}
		fmt.Fprintln(out, line)
	}
}

// =============================================================================
// RESOLVE COMMAND
// =============================================================================

func newResolveCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <query>",
		Short: "Show which place a query resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), opts.file)
			if err != nil {
				return err
			}

			res, err := locator.New(g, nil, 0, zap.NewNop()).ResolveLocal(strings.Join(args, " "))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, res)
			}
			n, _ := g.Node(res.NodeID)
			fmt.Fprintf(out, "%s (%s, floor %d) matched via %s\n", n.Name, n.ID, n.Floor, res.Strategy)
			return nil
		},
	}
}

// =============================================================================
// DESTINATIONS COMMAND
// =============================================================================

func newDestinationsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "destinations",
		Short: "List rooms and named places by floor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loadGraph(cmd.Context(), opts.file)
			if err != nil {
				return err
			}

			list := locator.New(g, nil, 0, zap.NewNop()).Destinations()
			out := cmd.OutOrStdout()
			if opts.jsonOut {
				return writeJSON(out, list)
			}
			for _, d := range list {
				if d.Kind == locator.DestinationRoom && d.Value != d.Location {
					fmt.Fprintf(out, "floor %d  room %-6s %s\n", d.Floor, d.Value, d.Location)
				} else {
					fmt.Fprintf(out, "floor %d  %s\n", d.Floor, d.Value)
				}
			}
			return nil
		},
	}
}

// =============================================================================
// SEED COMMAND
// =============================================================================

// BatchWriter is the slice of the DynamoDB client seeding needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *awsDynamodb.BatchWriteItemInput, optFns ...func(*awsDynamodb.Options)) (*awsDynamodb.BatchWriteItemOutput, error)
}

func newSeedCmd(opts *rootOptions) *cobra.Command {
	var table, region, endpoint string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Write the building definition to a DynamoDB table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			def, err := source.NewFile(opts.file).Load(ctx)
			if err != nil {
				return err
			}
			// Refuse to seed a building the service could not load.
			if _, err := graph.Load(def); err != nil {
				return err
			}

			cfg := &config.Config{AWS: config.AWS{Region: region, Endpoint: endpoint}}
			client, err := di.NewDynamoDBClient(ctx, cfg)
			if err != nil {
				return err
			}

			written, err := seed(ctx, client, table, def)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d items for %s to %s\n", written, displayName(def.Building, opts.file), table)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "table", "", "DynamoDB table name")
	cmd.Flags().StringVar(&region, "region", "us-east-1", "AWS region")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "DynamoDB endpoint override, e.g. a local DynamoDB")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

// seed writes every item of def in batches, retrying unprocessed items.
func seed(ctx context.Context, client BatchWriter, table string, def location.Definition) (int, error) {
	items, err := source.Items(def)
	if err != nil {
		return 0, err
	}

	for start := 0; start < len(items); start += maxBatchWrite {
		end := min(start+maxBatchWrite, len(items))

		requests := make([]types.WriteRequest, 0, end-start)
		for _, item := range items[start:end] {
			requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
		}

		pending := map[string][]types.WriteRequest{table: requests}
		for attempt := 0; len(pending) > 0; attempt++ {
			if attempt == 5 {
				return start, fmt.Errorf("unprocessed items remain after %d attempts", attempt)
			}
			if attempt > 0 {
				select {
				case <-ctx.Done():
					return start, ctx.Err()
				case <-time.After(time.Duration(attempt) * 100 * time.Millisecond):
				}
			}

			out, err := client.BatchWriteItem(ctx, &awsDynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return start, fmt.Errorf("batch write to %s: %w", table, err)
			}
			pending = out.UnprocessedItems
		}
	}
	return len(items), nil
}

// =============================================================================
// HELPERS
// =============================================================================

func loadGraph(ctx context.Context, path string) (*graph.Graph, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	return source.LoadGraph(ctx, source.NewFile(path))
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func displayName(building, path string) string {
	if building != "" {
		return building
	}
	return path
}
