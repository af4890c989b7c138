package domain

import (
	"net/url"
	"strings"

	apperrors "github.com/tsubasa0119/repo-insights/internal/errors"
)

// RepoRef identifies a repository by its owner and name.
type RepoRef struct {
	Owner string `json:"owner"`
	Repo  string `json:"repo"`
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// Validate checks that both parts of the identity are present.
func (r RepoRef) Validate() error {
	if r.Owner == "" || r.Repo == "" {
		return apperrors.NewInvalidInputError("owner and repo must be non-empty")
	}
	return nil
}

// ParseRef parses a repository reference from either an "owner/repo" pair
// or a github.com URL ("https://github.com/owner/repo", optionally with a
// trailing path or .git suffix).
func ParseRef(s string) (RepoRef, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RepoRef{}, apperrors.NewInvalidInputError("repository reference is empty")
	}

	if strings.Contains(s, "://") {
		u, err := url.Parse(s)
		if err != nil {
			return RepoRef{}, apperrors.NewInvalidInputError("malformed repository URL")
		}
		host := strings.ToLower(u.Host)
		if host != "github.com" && host != "www.github.com" {
			return RepoRef{}, apperrors.NewInvalidInputError("URL host must be github.com")
		}
		s = strings.Trim(u.Path, "/")
		parts := strings.Split(s, "/")
		if len(parts) < 2 {
			return RepoRef{}, apperrors.NewInvalidInputError("URL path must contain owner and repo")
		}
		ref := RepoRef{Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}
		if err := ref.Validate(); err != nil {
			return RepoRef{}, err
		}
		return ref, nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return RepoRef{}, apperrors.NewInvalidInputError("reference must be of the form owner/repo")
	}
	ref := RepoRef{Owner: parts[0], Repo: strings.TrimSuffix(parts[1], ".git")}
	if err := ref.Validate(); err != nil {
		return RepoRef{}, err
	}
	return ref, nil
}
