package ai

import (
	"context"
	"fmt"
	"strings"
)

// Prompt payloads are truncated so an oversized diff cannot blow the
// request; limits mirror the model's useful context for each task.
const (
	commitDiffLimit  = 2500
	reviewDiffLimit  = 4000
	explainDiffLimit = 3000
)

// fallbackBranchNames are returned when the model's answer yields no
// parseable branch names.
var fallbackBranchNames = []string{
	"feature/new-functionality",
	"bugfix/critical-issue",
	"refactor/code-cleanup",
	"chore/dependency-update",
	"docs/api-documentation",
}

// CommitMessage asks for a one-line conventional-commit message for
// the given diff. Only the first line of the answer is kept.
func (c *Client) CommitMessage(ctx context.Context, diff string) (string, error) {
	prompt := fmt.Sprintf(
		"Generate a concise git commit message for these changes. "+
			"Use conventional commit format (feat:, fix:, docs:, style:, refactor:, test:, chore:). "+
			"Keep it under 60 characters and focus on the main change:\n\n%s",
		truncate(diff, commitDiffLimit))

	resp, err := c.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(resp, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		line = "chore: update files"
	}
	return line, nil
}

// ReviewCode asks for a code review of the diff.
func (c *Client) ReviewCode(ctx context.Context, diff string) (string, error) {
	prompt := fmt.Sprintf(
		"Provide a thorough code review for these changes. Focus on:\n"+
			"- Potential bugs and logical errors\n"+
			"- Code quality and best practices\n"+
			"- Security vulnerabilities\n"+
			"- Performance implications\n"+
			"- Maintainability concerns\n"+
			"Be constructive and specific with suggestions.\n\n"+
			"Changes:\n%s",
		truncate(diff, reviewDiffLimit))

	return c.Generate(ctx, prompt)
}

// SuggestImprovements asks for concrete improvement suggestions for
// the diff.
func (c *Client) SuggestImprovements(ctx context.Context, diff string) (string, error) {
	prompt := fmt.Sprintf(
		"Based on these code changes, provide specific improvement suggestions:\n\n"+
			"**Immediate Improvements:**\n"+
			"- Code optimizations\n"+
			"- Bug fixes\n"+
			"- Style improvements\n\n"+
			"**Enhancement Opportunities:**\n"+
			"- Performance optimizations\n"+
			"- Error handling improvements\n\n"+
			"**Long-term Considerations:**\n"+
			"- Refactoring opportunities\n"+
			"- Technical debt reduction\n\n"+
			"Code changes:\n%s",
		truncate(diff, reviewDiffLimit))

	return c.Generate(ctx, prompt)
}

// ExplainDiff asks for a plain-language explanation of the diff.
func (c *Client) ExplainDiff(ctx context.Context, diff string) (string, error) {
	prompt := fmt.Sprintf(
		"Explain what these code changes accomplish in clear, non-technical terms. "+
			"Focus on:\n"+
			"- What functionality is being added/modified/removed\n"+
			"- Why these changes might be necessary\n"+
			"- The impact on the overall system\n\n"+
			"Changes:\n%s",
		truncate(diff, explainDiffLimit))

	return c.Generate(ctx, prompt)
}

// AnalyzeMerge asks for an assessment of a pending merge, given a
// textual description of the two sides.
func (c *Client) AnalyzeMerge(ctx context.Context, mergeContext string) (string, error) {
	prompt := fmt.Sprintf(
		"Analyze this merge operation and provide insights:\n\n"+
			"**Merge Strategy Analysis:**\n"+
			"- Compatibility assessment\n"+
			"- Potential conflict areas\n"+
			"- Risk evaluation\n\n"+
			"**Recommendations:**\n"+
			"- Best merge approach\n"+
			"- Testing requirements\n"+
			"- Post-merge verification steps\n\n"+
			"Merge context:\n%s",
		mergeContext)

	return c.Generate(ctx, prompt)
}

// SuggestBranchNames asks for up to five branch names for upcoming
// work and parses them out of the answer. A fallback set is returned
// when nothing parseable comes back.
func (c *Client) SuggestBranchNames(ctx context.Context, projectContext string) ([]string, error) {
	prompt := fmt.Sprintf(
		"Suggest 5 good branch names for upcoming development work based on this project. "+
			"Use conventional naming:\n"+
			"- feature/ for new features\n"+
			"- bugfix/ or fix/ for bug fixes\n"+
			"- refactor/ for code improvements\n"+
			"- chore/ for maintenance tasks\n"+
			"- docs/ for documentation\n"+
			"Make them descriptive but concise.\n\n"+
			"Project context:\n%s",
		projectContext)

	resp, err := c.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(resp, "\n") {
		name := extractBranchName(line)
		if name == "" {
			continue
		}
		names = append(names, name)
		if len(names) == 5 {
			break
		}
	}
	if len(names) == 0 {
		names = append(names, fallbackBranchNames...)
	}
	return names, nil
}

// extractBranchName pulls a branch name out of a single answer line.
// List items ("1. feature/login - adds login") keep only the name;
// prose lines yield "".
func extractBranchName(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}

	listed := (trimmed[0] >= '0' && trimmed[0] <= '9') ||
		strings.HasPrefix(trimmed, "- ") ||
		strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ")
	if !listed {
		// A bare line counts only when it already looks like a name.
		name := strings.Trim(trimmed, "`")
		if strings.ContainsAny(name, " \t") || len(name) >= 50 {
			return ""
		}
		return name
	}

	s := strings.TrimLeft(trimmed, "0123456789")
	s = strings.TrimPrefix(s, ".")
	s = strings.TrimPrefix(s, ")")
	for _, marker := range []string{"- ", "* ", "• "} {
		s = strings.TrimPrefix(s, marker)
	}
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	if s == "" {
		return ""
	}
	// Keep the first token; the rest is usually a description.
	if i := strings.IndexByte(s, ' '); i >= 0 {
		s = s[:i]
	}
	if len(s) >= 50 {
		return ""
	}
	return s
}

// truncate caps s at n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
