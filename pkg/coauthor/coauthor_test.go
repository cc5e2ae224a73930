package coauthor

import (
	"testing"

	"github.com/rmax-ai/collabgraph/pkg/artist"
)

func song(title string, names ...string) artist.Song {
	s := artist.Song{Title: title}
	for _, n := range names {
		s.Coauthors = append(s.Coauthors, artist.Coauthor{Name: n, ID: "id-" + n})
	}
	return s
}

func TestExtractUnique(t *testing.T) {
	songs := []artist.Song{
		song("one", "B", "C"),
		song("two", "C", "D"),
		song("three", "B"),
	}
	// Same name with a different id is a different coauthor.
	songs = append(songs, artist.Song{Coauthors: []artist.Coauthor{{Name: "B", ID: "other"}}})

	got := ExtractUnique(songs)
	want := []artist.Coauthor{
		{Name: "B", ID: "id-B"},
		{Name: "C", ID: "id-C"},
		{Name: "D", ID: "id-D"},
		{Name: "B", ID: "other"},
	}
	if len(got) != len(want) {
		t.Fatalf("Expected %d coauthors, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("index %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestExtractUnique_Empty(t *testing.T) {
	if got := ExtractUnique(nil); len(got) != 0 {
		t.Errorf("Expected empty result, got %+v", got)
	}
}

func TestRankTopN(t *testing.T) {
	songs := []artist.Song{
		song("1", "D", "B"),
		song("2", "C", "B"),
		song("3", "B", "C"),
		song("4", "E"),
	}

	tests := []struct {
		name string
		n    int
		want []artist.CoauthorRank
	}{
		{"zero", 0, []artist.CoauthorRank{}},
		{"negative", -1, []artist.CoauthorRank{}},
		{"top two", 2, []artist.CoauthorRank{
			{Name: "B", ID: "id-B", Count: 3},
			{Name: "C", ID: "id-C", Count: 2},
		}},
		// D and E both appear once; D was seen first.
		{"ties keep first-seen order", 4, []artist.CoauthorRank{
			{Name: "B", ID: "id-B", Count: 3},
			{Name: "C", ID: "id-C", Count: 2},
			{Name: "D", ID: "id-D", Count: 1},
			{Name: "E", ID: "id-E", Count: 1},
		}},
		{"n larger than population", 10, []artist.CoauthorRank{
			{Name: "B", ID: "id-B", Count: 3},
			{Name: "C", ID: "id-C", Count: 2},
			{Name: "D", ID: "id-D", Count: 1},
			{Name: "E", ID: "id-E", Count: 1},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RankTopN(songs, tt.n)
			if got == nil {
				t.Fatal("Expected non-nil slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d ranks, got %d: %+v", len(tt.want), len(got), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestRankTopN_SortedDescending(t *testing.T) {
	songs := []artist.Song{
		song("1", "A"), song("2", "B", "A"), song("3", "C", "B", "A"), song("4", "C"),
	}
	got := RankTopN(songs, 3)
	for i := 1; i < len(got); i++ {
		if got[i-1].Count < got[i].Count {
			t.Errorf("ranks not descending at %d: %+v", i, got)
		}
	}
}

func TestTopSongs(t *testing.T) {
	songs := []artist.Song{
		song("solo"),
		song("duet", "B"),
		song("trio", "B", "C"),
		song("other duet", "D"),
	}
	got := TopSongs(songs, 3)
	want := []string{"trio", "duet", "other duet"}
	if len(got) != len(want) {
		t.Fatalf("Expected %d songs, got %d", len(want), len(got))
	}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("index %d: got %s, want %s", i, got[i].Title, title)
		}
	}
	if songs[0].Title != "solo" {
		t.Error("TopSongs must not reorder its input")
	}
}
