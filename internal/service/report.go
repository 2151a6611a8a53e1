package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"communitybridge/common/logger"
	"communitybridge/internal/model"
	"communitybridge/internal/store"
)

type ReportKind string

const (
	ReportNight   ReportKind = "night"
	ReportDay     ReportKind = "day"
	ReportWeekly  ReportKind = "weekly"
	ReportMonthly ReportKind = "monthly"
)

// reportWindow is the half-open activity range a report covers. ShiftLabel
// is set for the shift-bound kinds only.
type reportWindow struct {
	Start      time.Time
	End        time.Time
	ShiftLabel string
}

// windowFor computes the activity range for a report fired at the given
// time. Night and day windows follow the operator shifts in local time;
// weekly is the trailing seven days and monthly is month-to-date, both UTC.
func windowFor(kind ReportKind, now time.Time) reportWindow {
	switch kind {
	case ReportNight:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return reportWindow{
			Start:      midnight.AddDate(0, 0, -1).Add(17 * time.Hour),
			End:        midnight.Add(4 * time.Hour),
			ShiftLabel: "night",
		}
	case ReportDay:
		midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return reportWindow{
			Start:      midnight.Add(4 * time.Hour),
			End:        midnight.Add(17 * time.Hour),
			ShiftLabel: "day",
		}
	case ReportWeekly:
		utc := now.UTC()
		return reportWindow{Start: utc.AddDate(0, 0, -7), End: utc}
	case ReportMonthly:
		utc := now.UTC()
		return reportWindow{
			Start: time.Date(utc.Year(), utc.Month(), 1, 0, 0, 0, 0, time.UTC),
			End:   utc,
		}
	default:
		utc := now.UTC()
		return reportWindow{Start: utc.AddDate(0, 0, -1), End: utc}
	}
}

// Summary is the aggregated activity of one report window.
type Summary struct {
	HelpCount          int
	StatusCounts       map[model.Status]int
	ModeratorResponses int
	OtherFlairs        int
	Total              int

	ForumComments int

	VideoTotal    int
	VideoByAuthor map[model.TeamMember]int

	Positive int
	Negative int
}

// Empty reports whether the window had no activity at all.
func (s Summary) Empty() bool {
	return s.Total == 0 && s.ForumComments == 0 && s.VideoTotal == 0 &&
		s.Positive == 0 && s.Negative == 0
}

// Reporter assembles and delivers periodic digests with a detailed
// attachment.
type Reporter struct {
	stores   store.Stores
	telegram telegramSender
	chatID   string
	now      func() time.Time
}

func NewReporter(stores store.Stores, telegram telegramSender, chatID string) *Reporter {
	return &Reporter{
		stores:   stores,
		telegram: telegram,
		chatID:   chatID,
		now:      time.Now,
	}
}

// Send builds and delivers the digest for the given kind, followed by the
// detail file. An empty window still produces a digest.
func (r *Reporter) Send(ctx context.Context, kind ReportKind) error {
	ctx = logger.WithLogFields(ctx, logger.LogFields{Report: logger.Ptr(string(kind))})

	window := windowFor(kind, r.now())

	summary, err := r.Summarize(ctx, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("aggregating %s report: %w", kind, err)
	}

	digest := formatDigest(kind, window, summary)
	if _, err := r.telegram.SendMessage(ctx, r.chatID, digest, nil); err != nil {
		return fmt.Errorf("sending %s digest: %w", kind, err)
	}

	filename, content, err := r.buildDetailFile(ctx, window.Start, window.End)
	if err != nil {
		return fmt.Errorf("building %s detail file: %w", kind, err)
	}
	if err := r.telegram.SendDocument(ctx, r.chatID, filename, content, ""); err != nil {
		return fmt.Errorf("sending %s detail file: %w", kind, err)
	}
	return nil
}

// Summarize aggregates all record kinds over [from, to].
func (r *Reporter) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	summary := Summary{
		StatusCounts:  make(map[model.Status]int),
		VideoByAuthor: make(map[model.TeamMember]int),
	}

	reports, err := r.stores.IssueReports.ListBetween(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("listing issue reports: %w", err)
	}
	summary.Total = len(reports)
	for _, report := range reports {
		if report.Flair != model.FlairHelp {
			continue
		}
		summary.HelpCount++
		if report.HasModeratorResponse() {
			summary.ModeratorResponses++
		}
		if _, known := model.StatusCodes[report.Status]; known {
			summary.StatusCounts[report.Status]++
		}
	}
	summary.OtherFlairs = summary.Total - summary.HelpCount

	comments, err := r.stores.ForumComments.ListBetween(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("listing forum comments: %w", err)
	}
	summary.ForumComments = len(comments)

	videos, err := r.stores.VideoComments.ListBetween(ctx, from, to)
	if err != nil && !errors.Is(err, store.ErrNoCollection) {
		return Summary{}, fmt.Errorf("listing video comments: %w", err)
	}
	summary.VideoTotal = len(videos)
	for _, video := range videos {
		summary.VideoByAuthor[video.Author]++
	}

	reactions, err := r.stores.Reactions.ListBetween(ctx, from, to)
	if err != nil {
		return Summary{}, fmt.Errorf("listing reactions: %w", err)
	}
	for _, reaction := range reactions {
		switch reaction.Polarity {
		case model.PolarityPositive:
			summary.Positive++
		case model.PolarityNegative:
			summary.Negative++
		}
	}

	return summary, nil
}

const periodFormat = "02.01.2006 15:04"

func formatDigest(kind ReportKind, window reportWindow, summary Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Report (%s) for period: %s – %s\n\n",
		capitalize(string(kind)),
		window.Start.Format(periodFormat), window.End.Format(periodFormat))

	b.WriteString("Technical issues:\n")
	if summary.Total == 0 {
		b.WriteString("  No data.\n")
	} else {
		fmt.Fprintf(&b, "  Posts with \"Help\" flair: %d\n\n", summary.HelpCount)
		b.WriteString("  Posts by status (Help only):\n")
		for _, status := range model.Statuses {
			fmt.Fprintf(&b, "    %s: %d\n", status, summary.StatusCounts[status])
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "  Posts with a moderator response: %d\n", summary.ModeratorResponses)
		fmt.Fprintf(&b, "  Posts with other flairs: %d\n", summary.OtherFlairs)
		fmt.Fprintf(&b, "  Total posts: %d\n", summary.Total)
		if window.ShiftLabel != "" {
			fmt.Fprintf(&b, "\n  Work during the %s shift: %d\n", window.ShiftLabel, summary.Total)
		}
	}

	fmt.Fprintf(&b, "\nReddit comments: %d\n", summary.ForumComments)

	fmt.Fprintf(&b, "\nYoutube comments: %d\n", summary.VideoTotal)
	if summary.VideoTotal > 0 {
		var authors []string
		for _, member := range model.TeamMembers {
			authors = append(authors, fmt.Sprintf("%s: %d", member, summary.VideoByAuthor[member]))
		}
		fmt.Fprintf(&b, "  By author: %s\n", strings.Join(authors, ", "))
	}

	b.WriteString("\nPosts with reactions (positive/negative):\n")
	fmt.Fprintf(&b, "  👍: %d\n", summary.Positive)
	fmt.Fprintf(&b, "  👎: %d", summary.Negative)

	if summary.Empty() {
		b.WriteString("\n\nNot enough data for a report.")
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// buildDetailFile renders every record in the window as a plain-text
// attachment, one section per record kind.
func (r *Reporter) buildDetailFile(ctx context.Context, from, to time.Time) (filename string, content []byte, err error) {
	reports, err := r.stores.IssueReports.ListBetween(ctx, from, to)
	if err != nil {
		return "", nil, fmt.Errorf("listing issue reports: %w", err)
	}
	comments, err := r.stores.ForumComments.ListBetween(ctx, from, to)
	if err != nil {
		return "", nil, fmt.Errorf("listing forum comments: %w", err)
	}
	videos, err := r.stores.VideoComments.ListBetween(ctx, from, to)
	if err != nil && !errors.Is(err, store.ErrNoCollection) {
		return "", nil, fmt.Errorf("listing video comments: %w", err)
	}
	reactions, err := r.stores.Reactions.ListBetween(ctx, from, to)
	if err != nil {
		return "", nil, fmt.Errorf("listing reactions: %w", err)
	}

	var b strings.Builder
	b.WriteString("DETAILED REPORT\n")
	fmt.Fprintf(&b, "Period: %s - %s\n\n",
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339))

	writeSection(&b, "Technical Issues", len(reports), func(i int) []kv {
		report := reports[i]
		return []kv{
			{"Date", formatDetailDate(report.Date)},
			{"Username", report.Username},
			{"Title", report.Title},
			{"Platform", string(report.Platform)},
			{"URL", stringOrEmpty(report.URL)},
			{"Description", report.Description},
			{"Status", string(report.Status)},
			{"Email", stringOrEmpty(report.Email)},
			{"Responsible moderator", stringOrEmpty(report.ResponsibleModerator)},
			{"Response from moderator", stringOrEmpty(report.ResponseFromModerator)},
		}
	})

	writeSection(&b, "YouTube Comments", len(videos), func(i int) []kv {
		video := videos[i]
		return []kv{
			{"Date", formatDetailDate(video.Date)},
			{"Youtube Channel", video.Channel},
			{"Link to the video", video.Link},
			{"Text of the comment", video.Comment},
			{"Profile", string(video.Profile)},
			{"Author ( Community Manager )", string(video.Author)},
		}
	})

	writeSection(&b, "Reddit Comments", len(comments), func(i int) []kv {
		comment := comments[i]
		return []kv{
			{"Date", formatDetailDate(comment.Date)},
			{"Username", comment.Username},
			{"Comment Text", comment.Body},
			{"URL", comment.URL},
		}
	})

	writeSection(&b, "Analytics", len(reactions), func(i int) []kv {
		reaction := reactions[i]
		return []kv{
			{"Date", formatDetailDate(reaction.Date)},
			{"Title", reaction.Title},
			{"Reaction", string(reaction.Polarity)},
			{"URL", reaction.URL},
		}
	})

	filename = fmt.Sprintf("detailed_report_%s.txt", r.now().UTC().Format("20060102_150405"))
	return filename, []byte(b.String()), nil
}

type kv struct {
	key   string
	value string
}

var recordRule = strings.Repeat("-", 40)

func writeSection(b *strings.Builder, name string, count int, record func(int) []kv) {
	fmt.Fprintf(b, "=== %s ===\n", name)
	if count == 0 {
		b.WriteString("No data.\n\n")
		return
	}
	for i := 0; i < count; i++ {
		for _, pair := range record(i) {
			fmt.Fprintf(b, "%s: %s\n", pair.key, pair.value)
		}
		b.WriteString(recordRule + "\n")
	}
	b.WriteString("\n")
}

func formatDetailDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func stringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
