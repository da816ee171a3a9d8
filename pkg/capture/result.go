package capture

import (
	"net/url"
	"strings"
	"time"

	"github.com/glaslos/ssdeep"
)

// Result contains the outcome of a single screenshot capture. It lives
// only for the duration of one cycle; only the saved file persists.
type Result struct {
	Image []byte
	URL   string
	Taken time.Time
}

// Filename returns the save name for the result, derived from the capture
// target and time.
func (r *Result) Filename() string {
	return Filename(r.URL, r.Taken)
}

// Filename derives a save name from a target URL and a capture time, e.g.
// screenshot_example.com_2024-01-15T10-30-00.png. A leading "www." is
// stripped from the host, the timestamp is UTC with sub-second precision
// dropped, and colons are replaced so the name sorts and is safe on any
// filesystem.
func Filename(rawURL string, taken time.Time) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	host = strings.TrimPrefix(host, "www.")

	stamp := taken.UTC().Format("2006-01-02T15-04-05")

	return "screenshot_" + host + "_" + stamp + ".png"
}

// SimilarTo reports whether the result's image fuzzy-matches prev with a
// similarity score at or above threshold (0-100). Images too small to
// hash count as not similar.
func (r *Result) SimilarTo(prev *Result, threshold int) bool {
	if prev == nil || len(prev.Image) == 0 {
		return false
	}

	hash1, err := ssdeep.FuzzyBytes(r.Image)
	if err != nil {
		return false
	}

	hash2, err := ssdeep.FuzzyBytes(prev.Image)
	if err != nil {
		return false
	}

	score, err := ssdeep.Distance(hash1, hash2)
	if err != nil {
		return false
	}

	return score >= threshold
}
