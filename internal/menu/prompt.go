package menu

import (
	"context"
	"strings"

	"github.com/gerhard-ee/sqlcrud/internal/crud"
)

// promptID reads and parses a record id; a bad id fails before any
// statement is built.
func promptID(ctx context.Context, c *Console, label string) (int64, error) {
	raw, err := c.Prompt(ctx, label)
	if err != nil {
		return 0, err
	}
	return crud.ParseID("id", raw)
}

// promptAll asks each label in turn and returns the trimmed answers.
func promptAll(ctx context.Context, c *Console, labels ...string) ([]string, error) {
	answers := make([]string, len(labels))
	for i, label := range labels {
		answer, err := c.Prompt(ctx, label)
		if err != nil {
			return nil, err
		}
		answers[i] = strings.TrimSpace(answer)
	}
	return answers, nil
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
