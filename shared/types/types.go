// Entry and Commit are the records shared by staging, the commit log,
// history and the read API.
package shared

import (
	"time"

	"vcs/internal/digest"
)

// Entry maps one filename to the digest of its staged content.
type Entry struct {
	Name   string        `json:"name"`
	Digest digest.Digest `json:"digest"`
}

// Commit is a frozen copy of the staging index.
type Commit struct {
	ID      string    `json:"id"`
	Time    time.Time `json:"time"`
	Entries []Entry   `json:"entries"`
}

// Line renders e in the index/commit record format, without the newline.
func (e Entry) Line() string {
	return e.Name + " " + string(e.Digest)
}

// DateString renders the commit time the way history output expects,
// falling back to "Unknown date" for ids that are not timestamps.
func (c Commit) DateString() string {
	if c.Time.IsZero() {
		return "Unknown date"
	}
	return c.Time.Local().Format(time.ANSIC)
}
