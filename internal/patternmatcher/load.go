package patternmatcher

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hollis-varga/riskguard/internal/domain/pattern"
)

// LoadLines parses one line-oriented pattern source (blacklist or
// whitelist file) into Pattern entities tagged with category, per §4.3:
// trim whitespace, skip blank lines and lines starting with '#', assign
// sequential ids starting at startID.
func LoadLines(r io.Reader, category pattern.Category, startID uint32) ([]*pattern.Pattern, error) {
	if !strings.Contains(string(category), string(pattern.CategoryBlacklist)) &&
		!strings.Contains(string(category), string(pattern.CategoryWhitelist)) {
		return nil, fmt.Errorf("category %q must contain %q or %q", category, pattern.CategoryBlacklist, pattern.CategoryWhitelist)
	}

	var patterns []*pattern.Pattern
	id := startID
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		patterns = append(patterns, &pattern.Pattern{
			ID:            id,
			Name:          line,
			Text:          line,
			Category:      category,
			CaseSensitive: false,
		})
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading pattern source: %w", err)
	}
	return patterns, nil
}
