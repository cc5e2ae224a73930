// Package coauthor aggregates the artists credited alongside a subject artist.
package coauthor

import (
	"sort"

	"github.com/rmax-ai/collabgraph/pkg/artist"
)

// ExtractUnique returns every distinct (name, id) coauthor across songs in
// first-seen order.
func ExtractUnique(songs []artist.Song) []artist.Coauthor {
	seen := make(map[artist.Coauthor]struct{})
	unique := make([]artist.Coauthor, 0)

	for _, song := range songs {
		for _, c := range song.Coauthors {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			unique = append(unique, c)
		}
	}
	return unique
}

// RankTopN counts the appearances of each (name, id) pair and returns the n
// most frequent, highest count first. Equal counts keep first-seen order.
func RankTopN(songs []artist.Song, n int) []artist.CoauthorRank {
	if n <= 0 {
		return []artist.CoauthorRank{}
	}

	index := make(map[artist.Coauthor]int)
	ranks := make([]artist.CoauthorRank, 0)

	for _, song := range songs {
		for _, c := range song.Coauthors {
			if i, ok := index[c]; ok {
				ranks[i].Count++
				continue
			}
			index[c] = len(ranks)
			ranks = append(ranks, artist.CoauthorRank{Name: c.Name, ID: c.ID, Count: 1})
		}
	}

	sort.SliceStable(ranks, func(i, j int) bool {
		return ranks[i].Count > ranks[j].Count
	})

	if len(ranks) > n {
		ranks = ranks[:n]
	}
	return ranks
}

// TopSongs returns up to n songs ordered by number of coauthors, most first.
// Ties keep catalog order.
func TopSongs(songs []artist.Song, n int) []artist.Song {
	sorted := make([]artist.Song, len(songs))
	copy(sorted, songs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].Coauthors) > len(sorted[j].Coauthors)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
