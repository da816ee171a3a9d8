package capture

import (
	"math/rand"
	"testing"
	"time"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		taken time.Time
		want  string
	}{
		{
			name:  "www prefix stripped",
			url:   "https://www.example.com",
			taken: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			want:  "screenshot_example.com_2024-01-15T10-30-00.png",
		},
		{
			name:  "host without www",
			url:   "https://go.dev/",
			taken: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
			want:  "screenshot_go.dev_2024-01-15T10-30-00.png",
		},
		{
			name:  "milliseconds dropped",
			url:   "https://www.example.com",
			taken: time.Date(2024, 1, 15, 10, 30, 0, 123_000_000, time.UTC),
			want:  "screenshot_example.com_2024-01-15T10-30-00.png",
		},
		{
			name:  "local time converted to UTC",
			url:   "https://news.ycombinator.com/",
			taken: time.Date(2024, 1, 15, 12, 30, 0, 0, time.FixedZone("CET", 2*60*60)),
			want:  "screenshot_news.ycombinator.com_2024-01-15T10-30-00.png",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Filename(tt.url, tt.taken)
			if got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestFilenameDeterministic(t *testing.T) {
	taken := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	first := Filename("https://www.example.com", taken)
	second := Filename("https://www.example.com", taken)
	if first != second {
		t.Errorf("Filename is not deterministic: %q vs %q", first, second)
	}
}

func TestResultFilename(t *testing.T) {
	result := &Result{
		URL:   "https://www.wikipedia.org/",
		Taken: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
	}
	want := "screenshot_wikipedia.org_2024-01-15T10-30-00.png"
	if got := result.Filename(); got != want {
		t.Errorf("Filename() = %q, want %q", got, want)
	}
}

// testImage returns a deterministic pseudo-random buffer large enough for
// ssdeep to hash.
func testImage(seed int64) []byte {
	buf := make([]byte, 8192)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func TestSimilarTo(t *testing.T) {
	a := &Result{Image: testImage(1)}
	identical := &Result{Image: testImage(1)}
	different := &Result{Image: testImage(2)}

	if !a.SimilarTo(identical, 96) {
		t.Error("identical images should be similar")
	}
	if a.SimilarTo(different, 96) {
		t.Error("unrelated images should not be similar")
	}
	if a.SimilarTo(nil, 96) {
		t.Error("nil previous result should never be similar")
	}
	if a.SimilarTo(&Result{}, 96) {
		t.Error("empty previous image should never be similar")
	}

	tiny := &Result{Image: []byte("too small to hash")}
	if tiny.SimilarTo(a, 96) {
		t.Error("images too small to hash should count as not similar")
	}
}
