package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmax-ai/collabgraph/pkg/engine"
	"github.com/rmax-ai/collabgraph/pkg/filter"
	"github.com/rmax-ai/collabgraph/pkg/render"
	"github.com/rmax-ai/collabgraph/pkg/snapshot"
)

type expandOptions struct {
	depth    int
	breadth  int
	filters  map[filter.Kind]*string
	preset   string
	out      string
	format   string
	snapshot bool
}

// filterFlag turns a filter kind into its flag name.
func filterFlag(k filter.Kind) string {
	return strings.ReplaceAll(string(k), "_", "-")
}

func newExpandCmd(root *rootOptions) *cobra.Command {
	opts := &expandOptions{filters: make(map[filter.Kind]*string)}

	cmd := &cobra.Command{
		Use:   "expand <seed>",
		Short: "Build the collaboration network around a seed artist",
		Long: `Expand walks the seed's most frequent coauthors level by level. Artists that
fail an active filter are left out together with their edges.

The graph is printed as text unless --out or --format is given; --out picks
the format from the file extension (.html, .json, .csv, .txt).`,
		Example: `  collabgraph expand "Kendrick Lamar" --depth 2 --breadth 5 --out network.html
  collabgraph expand "Daft Punk" --country France --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExpand(cmd, root, opts, args[0])
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&opts.depth, "depth", 0, "levels of collaboration (default graph.max_depth)")
	flags.IntVar(&opts.breadth, "breadth", 0, "coauthors kept per artist (default graph.breadth)")
	for _, d := range filter.Descriptors() {
		v := new(string)
		opts.filters[d.Kind] = v
		flags.StringVar(v, filterFlag(d.Kind), "", fmt.Sprintf("filter by %s (%s)", strings.ToLower(d.Title), d.Placeholder))
	}
	flags.StringVar(&opts.preset, "preset", "", "named filter preset from the config file")
	flags.StringVarP(&opts.out, "out", "o", "", "write the graph to this file")
	flags.StringVar(&opts.format, "format", "", "output format: html, json, csv or text")
	flags.BoolVar(&opts.snapshot, "snapshot", false, "save the graph as a snapshot")
	return cmd
}

func runExpand(cmd *cobra.Command, root *rootOptions, opts *expandOptions, seed string) error {
	a, cleanup, err := root.openApp(cmd)
	if err != nil {
		return err
	}
	defer cleanup()
	ctx := cmd.Context()

	req := engine.Request{
		Seed:     seed,
		MaxDepth: a.Config.Graph.MaxDepth,
		Breadth:  a.Config.Graph.Breadth,
	}
	if cmd.Flags().Changed("depth") {
		req.MaxDepth = opts.depth
	}
	if cmd.Flags().Changed("breadth") {
		req.Breadth = opts.breadth
	}

	values := make(map[string]string)
	if opts.preset != "" {
		preset, ok := a.Config.Filters[opts.preset]
		if !ok {
			return errors.Newf("unknown filter preset %q", opts.preset)
		}
		for k, v := range preset {
			values[k] = v
		}
	}
	for kind, v := range opts.filters {
		if cmd.Flags().Changed(filterFlag(kind)) {
			values[string(kind)] = *v
		}
	}
	if req.Filters, err = filter.FromValues(values); err != nil {
		return err
	}

	format := render.FormatText
	if opts.out != "" {
		format = render.FormatForPath(opts.out)
	}
	if opts.format != "" {
		if format, err = render.ParseFormat(opts.format); err != nil {
			return err
		}
	}

	res, err := a.Expander.Expand(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "expand %s", seed)
	}
	for _, s := range res.Skipped {
		a.Log.Debug("candidate_skipped", zap.String("name", s.Name), zap.Int("level", s.Level), zap.String("reason", s.Reason))
	}

	if opts.snapshot {
		if err := a.Snapshots.Save(ctx, snapshot.Graph, res.Graph); err != nil {
			return err
		}
	}

	page := render.Page{
		Title:   fmt.Sprintf("%s collaboration network", res.SeedInfo.Name),
		Filters: req.Filters.String(),
	}
	if opts.out == "" {
		return render.Write(cmd.OutOrStdout(), res.Graph, format, page)
	}
	if err := writeFile(opts.out, func(w io.Writer) error {
		return render.Write(w, res.Graph, format, page)
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d artists and %d collaborations to %s\n",
		res.Graph.NodeCount(), res.Graph.EdgeCount(), opts.out)
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}
