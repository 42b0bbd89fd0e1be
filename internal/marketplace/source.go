package marketplace

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/nova-cli/nova/internal/errs"
	"github.com/nova-cli/nova/internal/scope"
)

var githubShorthand = regexp.MustCompile(`^[A-Za-z0-9._-]+/[A-Za-z0-9._-]+$`)

var allowedSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ssh":   true,
	"git":   true,
}

// ParseSource classifies a user-supplied source string into a tagged
// MarketplaceSource, applying the disambiguation rules in order — first
// match wins (spec.md §4.6). The parser is a pure function of its input and
// the filesystem's existence checks at call time: same input, same
// environment, same classification.
func ParseSource(input string) (scope.MarketplaceSource, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return scope.MarketplaceSource{}, &errs.MarketplaceInvalidSource{Input: input, Reason: "empty source string"}
	}

	if idx := strings.Index(trimmed, "://"); idx > 0 {
		scheme := trimmed[:idx]
		if !allowedSchemes[scheme] {
			return scope.MarketplaceSource{}, &errs.MarketplaceInvalidSource{Input: input, Reason: "unsupported URL scheme " + quoteSrc(scheme)}
		}
		return scope.MarketplaceSource{Type: scope.SourceGit, URL: trimmed}, nil
	}

	if strings.HasPrefix(trimmed, "git@") {
		return scope.MarketplaceSource{Type: scope.SourceGit, URL: trimmed}, nil
	}

	if looksLikeLocalPath(trimmed) || existsAsDir(trimmed) {
		abs, err := filepath.Abs(expandHome(trimmed))
		if err != nil {
			return scope.MarketplaceSource{}, &errs.MarketplaceInvalidSource{Input: input, Reason: "could not resolve local path: " + err.Error()}
		}
		return scope.MarketplaceSource{Type: scope.SourceLocal, Path: abs}, nil
	}

	if githubShorthand.MatchString(trimmed) {
		return scope.MarketplaceSource{Type: scope.SourceGitHub, Repo: trimmed}, nil
	}

	return scope.MarketplaceSource{}, &errs.MarketplaceInvalidSource{Input: input, Reason: "does not match any known source form"}
}

func looksLikeLocalPath(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, "~")
}

func existsAsDir(s string) bool {
	info, err := os.Stat(expandHome(s))
	return err == nil && info.IsDir()
}

// expandHome replaces a leading "~" with the current user's home directory.
// "~name" is not looked up as another user's home: the rest of the string is
// joined onto the current user's home. Inputs without the prefix pass
// through unchanged.
func expandHome(s string) string {
	if !strings.HasPrefix(s, "~") {
		return s
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return s
	}
	return filepath.Join(home, strings.TrimPrefix(s, "~"))
}

func quoteSrc(s string) string {
	return "\"" + s + "\""
}

// ExpandGitHubURL turns a GitHub shorthand repo ("owner/name") into a clone
// URL (spec.md §4.7).
func ExpandGitHubURL(repo string) string {
	return "https://github.com/" + repo + ".git"
}
