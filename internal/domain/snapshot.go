package domain

import "time"

// Issue states as reported by the upstream API. Anything else (e.g. a
// "merged" state leaking in from pull requests) is ignored by the
// derived-metrics engine.
const (
	IssueStateOpen   = "open"
	IssueStateClosed = "closed"
)

// LanguageBytes maps a language name to the number of bytes written in it.
// Upstream guarantees unique keys but no ordering.
type LanguageBytes map[string]int64

// RepositorySummary holds the identity and static facts about one
// repository. It is replaced wholesale on re-fetch, never patched.
type RepositorySummary struct {
	Name          string    `json:"name"`
	FullName      string    `json:"full_name"`
	Description   string    `json:"description,omitempty"`
	HTMLURL       string    `json:"html_url"`
	Language      string    `json:"language,omitempty"`
	Stars         int       `json:"stargazers_count"`
	Watchers      int       `json:"watchers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	License       string    `json:"license,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	PushedAt      time.Time `json:"pushed_at"`
	SizeKB        int       `json:"size"`
	DefaultBranch string    `json:"default_branch"`
}

// Contributor represents one entry of the upstream-ranked contributor list.
type Contributor struct {
	Login         string `json:"login"`
	ID            int64  `json:"id"`
	AvatarURL     string `json:"avatar_url"`
	Contributions int    `json:"contributions"`
	HTMLURL       string `json:"html_url"`
}

// CommitRecord represents a single commit. AuthorLogin and AuthorAvatarURL
// are empty when the author has no linked account upstream.
type CommitRecord struct {
	SHA             string    `json:"sha"`
	AuthorName      string    `json:"author_name"`
	AuthorEmail     string    `json:"author_email"`
	AuthoredAt      time.Time `json:"authored_at"`
	Message         string    `json:"message"`
	HTMLURL         string    `json:"html_url"`
	AuthorLogin     string    `json:"author_login,omitempty"`
	AuthorAvatarURL string    `json:"author_avatar_url,omitempty"`
}

// Summary returns the first line of the commit message.
func (c CommitRecord) Summary() string {
	for i := 0; i < len(c.Message); i++ {
		if c.Message[i] == '\n' {
			return c.Message[:i]
		}
	}
	return c.Message
}

// Label is an issue label with its display color.
type Label struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// IssueRecord represents one issue from the fetched sample (open or closed).
type IssueRecord struct {
	ID        int64      `json:"id"`
	Number    int        `json:"number"`
	Title     string     `json:"title"`
	State     string     `json:"state"`
	CreatedAt time.Time  `json:"created_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
	Labels    []Label    `json:"labels"`
	HTMLURL   string     `json:"html_url"`
}

// CommitActivityWeek is one weekly bucket of commit activity. A
// non-positive WeekStart marks a malformed upstream entry; such entries
// are excluded by the derived-metrics engine rather than failing the
// aggregation.
type CommitActivityWeek struct {
	WeekStart int64  `json:"week"`
	Total     int    `json:"total"`
	Days      [7]int `json:"days"`
}

// Snapshot is the immutable aggregate produced by one successful analysis.
// It is only ever constructed whole, from six successful fetches; a
// re-analysis produces a brand-new snapshot. Two snapshots never share
// references.
type Snapshot struct {
	Ref          RepoRef              `json:"ref"`
	FetchedAt    time.Time            `json:"fetched_at"`
	Repository   RepositorySummary    `json:"repository"`
	Contributors []Contributor        `json:"contributors"`
	Commits      []CommitRecord       `json:"commits"`
	Issues       []IssueRecord        `json:"issues"`
	Activity     []CommitActivityWeek `json:"activity"`
	Languages    LanguageBytes        `json:"languages"`
}
