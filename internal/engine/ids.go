package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"wikigen/internal/storage"
)

// Slugify lower-cases text and collapses every run of non-alphanumeric
// characters into a single hyphen. It never returns an empty string.
func Slugify(text string) string {
	var b strings.Builder
	lastHyphen := true // suppress a leading hyphen
	for _, r := range strings.ToLower(text) {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if alnum {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if slug == "" {
		return "page"
	}
	return slug
}

// PageID derives a page id from source text plus a coarse time token, so two
// distinct generations never collide even when their normalized text matches
// within the same second.
func PageID(text string, t time.Time) string {
	return Slugify(text) + "-" + strconv.FormatInt(t.UnixMilli(), 36)
}

// newJobID mints a unique, self-describing job id.
func newJobID(jobType storage.JobType, t time.Time) string {
	return fmt.Sprintf("job-%s-%d-%s", jobType, t.UnixMilli(), uuid.NewString()[:8])
}
