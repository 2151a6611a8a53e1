package notion

import "time"

// Filter is a database query filter in the API's JSON shape. Composite
// filters nest under "and"/"or"; leaf filters name a property and a
// type-specific condition.
type Filter map[string]any

func And(filters ...Filter) Filter {
	return Filter{"and": filters}
}

func Or(filters ...Filter) Filter {
	return Filter{"or": filters}
}

func DateOnOrAfter(property string, t time.Time) Filter {
	return dateFilter(property, "on_or_after", t)
}

func DateOnOrBefore(property string, t time.Time) Filter {
	return dateFilter(property, "on_or_before", t)
}

func DateAfter(property string, t time.Time) Filter {
	return dateFilter(property, "after", t)
}

func DateBefore(property string, t time.Time) Filter {
	return dateFilter(property, "before", t)
}

// DateBetween matches records whose date lies within [from, to].
func DateBetween(property string, from, to time.Time) Filter {
	return And(
		DateOnOrAfter(property, from),
		DateOnOrBefore(property, to),
	)
}

func RichTextEquals(property, value string) Filter {
	return Filter{
		"property":  property,
		"rich_text": map[string]string{"equals": value},
	}
}

func RichTextContains(property, value string) Filter {
	return Filter{
		"property":  property,
		"rich_text": map[string]string{"contains": value},
	}
}

func TitleContains(property, value string) Filter {
	return Filter{
		"property": property,
		"title":    map[string]string{"contains": value},
	}
}

func StatusNotEquals(property, value string) Filter {
	return Filter{
		"property": property,
		"status":   map[string]string{"does_not_equal": value},
	}
}

func dateFilter(property, condition string, t time.Time) Filter {
	return Filter{
		"property": property,
		"date":     map[string]string{condition: t.UTC().Format(time.RFC3339)},
	}
}
