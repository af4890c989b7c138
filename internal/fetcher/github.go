package fetcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/go-github/v55/github"
	"golang.org/x/oauth2"

	"github.com/tsubasa0119/repo-insights/internal/domain"
	apperrors "github.com/tsubasa0119/repo-insights/internal/errors"
)

const (
	contributorSampleSize = 30
	commitSampleSize      = 30
	issueSampleSize       = 100

	// DefaultTimeout bounds each upstream call; the transport default
	// alone leaves slow calls hanging for the whole request.
	DefaultTimeout = 15 * time.Second
)

// githubFetcher implements Fetcher using the GitHub REST API
type githubFetcher struct {
	client  *github.Client
	limiter *limiter
	timeout time.Duration
}

// NewGitHub creates a new GitHub-backed fetcher. An empty token means
// unauthenticated access at the lower upstream quota.
func NewGitHub(token string, timeout time.Duration) Fetcher {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), ts)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &githubFetcher{
		client:  github.NewClient(hc),
		limiter: newLimiter(),
		timeout: timeout,
	}
}

// Repository retrieves the repository metadata
func (f *githubFetcher) Repository(ctx context.Context, ref domain.RepoRef) (*domain.RepositorySummary, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	repo, resp, err := f.client.Repositories.Get(ctx, ref.Owner, ref.Repo)
	f.updateLimitFromResponse(resp)
	if err != nil {
		return nil, mapError("repository "+ref.String(), resp, err)
	}
	if repo.GetName() == "" || repo.GetFullName() == "" {
		return nil, apperrors.NewInvalidShapeError(fmt.Sprintf("repository payload for %s is missing its identity", ref), nil)
	}

	return &domain.RepositorySummary{
		Name:          repo.GetName(),
		FullName:      repo.GetFullName(),
		Description:   repo.GetDescription(),
		HTMLURL:       repo.GetHTMLURL(),
		Language:      repo.GetLanguage(),
		Stars:         repo.GetStargazersCount(),
		Watchers:      repo.GetSubscribersCount(),
		Forks:         repo.GetForksCount(),
		OpenIssues:    repo.GetOpenIssuesCount(),
		License:       repo.GetLicense().GetName(),
		CreatedAt:     repo.GetCreatedAt().Time,
		UpdatedAt:     repo.GetUpdatedAt().Time,
		PushedAt:      repo.GetPushedAt().Time,
		SizeKB:        repo.GetSize(),
		DefaultBranch: repo.GetDefaultBranch(),
	}, nil
}

// Contributors retrieves the upstream-ranked contributor sample
func (f *githubFetcher) Contributors(ctx context.Context, ref domain.RepoRef) ([]domain.Contributor, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := &github.ListContributorsOptions{
		ListOptions: github.ListOptions{PerPage: contributorSampleSize},
	}
	contributors, resp, err := f.client.Repositories.ListContributors(ctx, ref.Owner, ref.Repo, opts)
	f.updateLimitFromResponse(resp)
	if err != nil {
		return nil, mapError("contributors of "+ref.String(), resp, err)
	}

	out := make([]domain.Contributor, 0, len(contributors))
	for _, c := range contributors {
		if c.GetLogin() == "" {
			continue
		}
		out = append(out, domain.Contributor{
			Login:         c.GetLogin(),
			ID:            c.GetID(),
			AvatarURL:     c.GetAvatarURL(),
			Contributions: c.GetContributions(),
			HTMLURL:       c.GetHTMLURL(),
		})
	}
	return out, nil
}

// Commits retrieves the most-recent-first commit sample
func (f *githubFetcher) Commits(ctx context.Context, ref domain.RepoRef) ([]domain.CommitRecord, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: commitSampleSize},
	}
	commits, resp, err := f.client.Repositories.ListCommits(ctx, ref.Owner, ref.Repo, opts)
	if err != nil {
		// 409 means the repository has no commits yet
		if resp != nil && resp.StatusCode == http.StatusConflict {
			f.updateLimitFromResponse(resp)
			return []domain.CommitRecord{}, nil
		}
		f.updateLimitFromResponse(resp)
		return nil, mapError("commits of "+ref.String(), resp, err)
	}
	f.updateLimitFromResponse(resp)

	out := make([]domain.CommitRecord, 0, len(commits))
	for _, c := range commits {
		if c.GetSHA() == "" {
			continue
		}
		record := domain.CommitRecord{
			SHA:     c.GetSHA(),
			Message: c.GetCommit().GetMessage(),
			HTMLURL: c.GetHTMLURL(),
		}
		if author := c.GetCommit().GetAuthor(); author != nil {
			record.AuthorName = author.GetName()
			record.AuthorEmail = author.GetEmail()
			record.AuthoredAt = author.GetDate().Time
		}
		// Author account may be nil when the commit has no linked user
		if user := c.GetAuthor(); user != nil {
			record.AuthorLogin = user.GetLogin()
			record.AuthorAvatarURL = user.GetAvatarURL()
		}
		out = append(out, record)
	}
	return out, nil
}

// Issues retrieves the open+closed issue sample, excluding pull requests
func (f *githubFetcher) Issues(ctx context.Context, ref domain.RepoRef) ([]domain.IssueRecord, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := &github.IssueListByRepoOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: issueSampleSize},
	}
	issues, resp, err := f.client.Issues.ListByRepo(ctx, ref.Owner, ref.Repo, opts)
	f.updateLimitFromResponse(resp)
	if err != nil {
		return nil, mapError("issues of "+ref.String(), resp, err)
	}

	out := make([]domain.IssueRecord, 0, len(issues))
	for _, issue := range issues {
		// The issues endpoint also returns pull requests
		if issue.IsPullRequest() {
			continue
		}
		record := domain.IssueRecord{
			ID:        issue.GetID(),
			Number:    issue.GetNumber(),
			Title:     issue.GetTitle(),
			State:     issue.GetState(),
			CreatedAt: issue.GetCreatedAt().Time,
			HTMLURL:   issue.GetHTMLURL(),
		}
		if issue.ClosedAt != nil {
			t := issue.ClosedAt.Time
			record.ClosedAt = &t
		}
		for _, label := range issue.Labels {
			if label.GetName() == "" {
				continue
			}
			record.Labels = append(record.Labels, domain.Label{
				Name:  label.GetName(),
				Color: label.GetColor(),
			})
		}
		out = append(out, record)
	}
	return out, nil
}

// CommitActivity retrieves the weekly commit-activity buckets
func (f *githubFetcher) CommitActivity(ctx context.Context, ref domain.RepoRef) ([]domain.CommitActivityWeek, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	weeks, resp, err := f.client.Repositories.ListCommitActivity(ctx, ref.Owner, ref.Repo)
	f.updateLimitFromResponse(resp)
	if err != nil {
		// 202 means upstream is still computing the statistics; the
		// scorer treats missing activity data as zero, not as a failure.
		var accepted *github.AcceptedError
		if errors.As(err, &accepted) {
			return []domain.CommitActivityWeek{}, nil
		}
		return nil, mapError("commit activity of "+ref.String(), resp, err)
	}

	out := make([]domain.CommitActivityWeek, 0, len(weeks))
	for _, w := range weeks {
		week := domain.CommitActivityWeek{Total: w.GetTotal()}
		if w.Week != nil {
			week.WeekStart = w.Week.Unix()
		}
		for i, d := range w.Days {
			if i >= len(week.Days) {
				break
			}
			week.Days[i] = d
		}
		out = append(out, week)
	}
	return out, nil
}

// Languages retrieves the per-language byte counts
func (f *githubFetcher) Languages(ctx context.Context, ref domain.RepoRef) (domain.LanguageBytes, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, apperrors.NewTransportError("interrupted while waiting for rate limit", err)
	}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	languages, resp, err := f.client.Repositories.ListLanguages(ctx, ref.Owner, ref.Repo)
	f.updateLimitFromResponse(resp)
	if err != nil {
		return nil, mapError("languages of "+ref.String(), resp, err)
	}

	out := make(domain.LanguageBytes, len(languages))
	for name, bytes := range languages {
		out[name] = int64(bytes)
	}
	return out, nil
}

// updateLimitFromResponse updates the rate limiter from API response headers
func (f *githubFetcher) updateLimitFromResponse(resp *github.Response) {
	if resp != nil && resp.Rate.Remaining >= 0 {
		f.limiter.Update(resp.Rate.Remaining, resp.Rate.Reset.Time)
	}
}

// mapError converts an upstream failure into the application taxonomy,
// surfacing the most specific known kind.
func mapError(resource string, resp *github.Response, err error) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return apperrors.NewRateLimitedError(fmt.Sprintf("upstream rate limit exhausted while fetching %s", resource))
	}
	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return apperrors.NewRateLimitedError(fmt.Sprintf("upstream abuse detection triggered while fetching %s", resource))
	}

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound, http.StatusGone:
			return apperrors.NewNotFoundError(resource)
		case http.StatusForbidden, http.StatusTooManyRequests:
			return apperrors.NewRateLimitedError(fmt.Sprintf("upstream quota exhausted while fetching %s", resource))
		}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return apperrors.NewInvalidShapeError(fmt.Sprintf("upstream returned an unparsable payload for %s", resource), err)
	}

	return apperrors.NewTransportError(fmt.Sprintf("failed to fetch %s", resource), err)
}
