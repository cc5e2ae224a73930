package main

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rmax-ai/collabgraph/pkg/artist"
	"github.com/rmax-ai/collabgraph/pkg/coauthor"
	"github.com/rmax-ai/collabgraph/pkg/filter"
	"github.com/rmax-ai/collabgraph/pkg/pipeline"
	"github.com/rmax-ai/collabgraph/pkg/render"
)

func newArtistCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "artist <name>",
		Short: "Show an artist's origin, life span and tags",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			info, err := a.Catalog.FetchArtist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info.IsUnknown() {
				fmt.Fprintf(out, "No artist found for %q\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Name:           %s\n", info.Name)
			fmt.Fprintf(out, "Origin Country: %s\n", orDefault(info.OriginCountry, "N/A"))
			fmt.Fprintf(out, "Life Span:      %s - %s\n",
				orDefault(info.LifeSpan.Begin, "Unknown"), orDefault(info.LifeSpan.End, "Present"))
			if info.Disambiguation != "" {
				fmt.Fprintf(out, "About:          %s\n", info.Disambiguation)
			}
			if tags := info.TagNames(); len(tags) > 0 {
				fmt.Fprintf(out, "Tags:           %s\n", strings.Join(tags, ", "))
			}
			return nil
		},
	}
}

func orDefault(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}

func newSongsCmd(root *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "songs <name>",
		Short: "List an artist's songs with the most coauthors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			songs, err := a.Catalog.FetchSongsWithCoauthors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(songs) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No songs found for %q\n", args[0])
				return nil
			}
			return render.SongTable(cmd.OutOrStdout(), songs, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of songs to list")
	return cmd
}

func newTopCmd(root *rootOptions) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "top <name>",
		Short: "List an artist's most frequent coauthors",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			songs, err := a.Catalog.FetchSongsWithCoauthors(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printRanks(cmd, coauthor.RankTopN(songs, n))
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "count", "n", pipeline.DefaultTopN, "number of coauthors to list")
	return cmd
}

func printRanks(cmd *cobra.Command, ranks []artist.CoauthorRank) {
	out := cmd.OutOrStdout()
	if len(ranks) == 0 {
		fmt.Fprintln(out, "No coauthors found")
		return
	}
	for i, r := range ranks {
		fmt.Fprintf(out, "%2d. %-30s %d songs\n", i+1, r.Name, r.Count)
	}
}

func newFetchCmd(root *rootOptions) *cobra.Command {
	var (
		save bool
		topN int
	)
	cmd := &cobra.Command{
		Use:   "fetch [name]",
		Short: "Run the fetch pipeline for an artist, or replay saved snapshots",
		Long: `Fetch runs every stage for one artist: info, discography, ISRC
preprocessing, songs with coauthors, top coauthors and their data.
Without a name every stage is replayed from the snapshot directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := root.openApp(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := pipeline.Options{Save: save, TopN: topN}
			if len(args) == 1 {
				opts.Artist = args[0]
			}
			res, err := a.Pipeline.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Artist: %s (%s)\n", res.ArtistInfo.Name, res.ArtistInfo.ID)
			fmt.Fprintf(out, "Recordings: %d, songs with coauthors: %d\n", len(res.Songs), len(res.SongsWithCoauthors))
			fmt.Fprintln(out, "Top coauthors:")
			printRanks(cmd, res.TopCoauthors)
			fmt.Fprintf(out, "Coauthor data: %d artists\n", len(res.CoauthorData))
			for _, t := range res.Timings {
				fmt.Fprintf(out, "  %-22s %s\n", t.Stage, t.Duration.Round(time.Millisecond))
			}
			if save {
				fmt.Fprintf(out, "Snapshots saved to %s\n", a.Config.Snapshot.Dir)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "write every stage to the snapshot directory")
	cmd.Flags().IntVarP(&topN, "top", "n", pipeline.DefaultTopN, "number of top coauthors to fetch data for")
	return cmd
}

func newFiltersCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List the coauthor filters and configured presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, d := range filter.Descriptors() {
				line := fmt.Sprintf("--%-14s %s (%s)", filterFlag(d.Kind), d.Title, d.Placeholder)
				if len(d.Options) > 0 {
					line += " [" + strings.Join(d.Options, "|") + "]"
				}
				fmt.Fprintln(out, line)
			}

			names := make([]string, 0, len(cfg.Filters))
			for name := range cfg.Filters {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				set, err := cfg.Preset(name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "preset %s: %s\n", name, set)
			}
			return nil
		},
	}
}
