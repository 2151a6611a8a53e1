package reddit

import (
	"encoding/json"
	"time"
)

// Post is a forum submission.
type Post struct {
	ID        string
	Title     string
	Body      string
	Author    string
	Flair     string
	Permalink string
	Created   time.Time
}

// Comment is a reply on a submission.
type Comment struct {
	ID        string
	Author    string
	Body      string
	Permalink string
	PostID    string
	Created   time.Time
}

// URL returns the absolute link to the post.
func (p Post) URL() string {
	return "https://www.reddit.com" + p.Permalink
}

// URL returns the absolute link to the comment.
func (c Comment) URL() string {
	return "https://www.reddit.com" + c.Permalink
}

// listing is the paginated envelope the API wraps results in.
type listing struct {
	Kind string `json:"kind"`
	Data struct {
		Children []thing `json:"children"`
		After    string  `json:"after"`
	} `json:"data"`
}

// thing is a single kind-tagged item inside a listing. Posts are "t3",
// comments are "t1".
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type postData struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	SelfText      string  `json:"selftext"`
	Author        string  `json:"author"`
	LinkFlairText string  `json:"link_flair_text"`
	Permalink     string  `json:"permalink"`
	CreatedUTC    float64 `json:"created_utc"`
}

type commentData struct {
	ID         string  `json:"id"`
	Author     string  `json:"author"`
	Body       string  `json:"body"`
	Permalink  string  `json:"permalink"`
	LinkID     string  `json:"link_id"`
	CreatedUTC float64 `json:"created_utc"`
	Replies    any     `json:"replies"`
}

func (d postData) toPost() Post {
	return Post{
		ID:        d.ID,
		Title:     d.Title,
		Body:      d.SelfText,
		Author:    d.Author,
		Flair:     d.LinkFlairText,
		Permalink: d.Permalink,
		Created:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
}

func (d commentData) toComment() Comment {
	return Comment{
		ID:        d.ID,
		Author:    d.Author,
		Body:      d.Body,
		Permalink: d.Permalink,
		PostID:    stripKindPrefix(d.LinkID),
		Created:   time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}
}

// stripKindPrefix removes a "t1_"/"t3_" fullname prefix if present.
func stripKindPrefix(fullname string) string {
	if len(fullname) > 3 && fullname[2] == '_' {
		return fullname[3:]
	}
	return fullname
}
