package notion

import "time"

// Page is a single record in a database. Properties are keyed by the
// column names configured in the workspace.
type Page struct {
	ID         string              `json:"id"`
	Object     string              `json:"object"`
	Properties map[string]Property `json:"properties"`
}

// Property is the union of the value shapes this client reads and writes.
// Exactly one field is populated per property, matching the column type.
type Property struct {
	Title    []RichText    `json:"title,omitempty"`
	RichText []RichText    `json:"rich_text,omitempty"`
	Select   *SelectOption `json:"select,omitempty"`
	Status   *SelectOption `json:"status,omitempty"`
	Date     *DateValue    `json:"date,omitempty"`
	URL      *string       `json:"url,omitempty"`
	Email    *string       `json:"email,omitempty"`
}

type RichText struct {
	Text      TextContent `json:"text"`
	PlainText string      `json:"plain_text,omitempty"`
}

type TextContent struct {
	Content string `json:"content"`
}

type SelectOption struct {
	Name string `json:"name"`
}

type DateValue struct {
	Start string `json:"start"`
}

// --- Property constructors --------------------------------------------------

func NewTitle(content string) Property {
	return Property{Title: []RichText{{Text: TextContent{Content: content}}}}
}

func NewRichText(content string) Property {
	if content == "" {
		return Property{RichText: []RichText{}}
	}
	return Property{RichText: []RichText{{Text: TextContent{Content: content}}}}
}

func NewSelect(name string) Property {
	return Property{Select: &SelectOption{Name: name}}
}

func NewStatus(name string) Property {
	return Property{Status: &SelectOption{Name: name}}
}

func NewDate(t time.Time) Property {
	return Property{Date: &DateValue{Start: t.UTC().Format(time.RFC3339)}}
}

func NewURL(url string) Property {
	return Property{URL: &url}
}

func NewEmail(email string) Property {
	return Property{Email: &email}
}

// --- Property extractors ----------------------------------------------------
//
// Extractors are tolerant of absent or empty values: records created by hand
// in the workspace do not always populate every column.

func (p Property) TitleText() string {
	return richTextContent(p.Title)
}

func (p Property) RichTextContent() string {
	return richTextContent(p.RichText)
}

func (p Property) SelectName() string {
	if p.Select == nil {
		return ""
	}
	return p.Select.Name
}

func (p Property) StatusName() string {
	if p.Status == nil {
		return ""
	}
	return p.Status.Name
}

func (p Property) DateStart() time.Time {
	if p.Date == nil || p.Date.Start == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339, p.Date.Start); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", p.Date.Start); err == nil {
		return t
	}
	return time.Time{}
}

func (p Property) URLValue() string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

func (p Property) EmailValue() string {
	if p.Email == nil {
		return ""
	}
	return *p.Email
}

func richTextContent(fragments []RichText) string {
	if len(fragments) == 0 {
		return ""
	}
	if fragments[0].Text.Content != "" {
		return fragments[0].Text.Content
	}
	return fragments[0].PlainText
}
