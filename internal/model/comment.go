package model

import "time"

// ForumComment is a forum comment mirrored into the store for historical
// record. Immutable after creation.
type ForumComment struct {
	Date     time.Time
	Username string
	Body     string
	URL      string
}
