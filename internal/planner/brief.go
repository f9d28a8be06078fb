package planner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// Brief is a parsed Markdown task brief. The first H1 names the session and
// H2 headings become focus sections. An optional YAML front matter block may
// pin the models for this brief; flags and config fill whatever it leaves
// unset.
type Brief struct {
	Title    string
	Sections []string
	Body     string

	Planners []string
	Critics  []string
	Refiner  string
	Weights  map[string]float64
}

// briefFrontMatter is the optional YAML block at the top of a brief file.
type briefFrontMatter struct {
	Planners []string           `yaml:"planners"`
	Critics  []string           `yaml:"critics"`
	Refiner  string             `yaml:"refiner"`
	Weights  map[string]float64 `yaml:"weights"`
}

// ParseBrief splits the optional front matter off a brief and extracts the
// title and section headings from the remaining Markdown.
func ParseBrief(src string) (Brief, error) {
	fm, body, err := splitFrontMatter(src)
	if err != nil {
		return Brief{}, err
	}

	brief := Brief{
		Body:     strings.TrimLeft(body, "\r\n"),
		Planners: fm.Planners,
		Critics:  fm.Critics,
		Refiner:  fm.Refiner,
		Weights:  fm.Weights,
	}

	source := []byte(brief.Body)
	doc := goldmark.New().Parser().Parse(text.NewReader(source))

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch heading.Level {
		case 1:
			if brief.Title == "" {
				brief.Title = headingText(heading, source)
			}
		case 2:
			brief.Sections = append(brief.Sections, headingText(heading, source))
		}
		return ast.WalkContinue, nil
	})

	if brief.Title == "" {
		return Brief{}, errors.New("brief has no title heading")
	}
	return brief, nil
}

// splitFrontMatter separates the YAML front matter (delimited by ---) from
// the Markdown body.
func splitFrontMatter(content string) (briefFrontMatter, string, error) {
	var fm briefFrontMatter

	if !strings.HasPrefix(content, "---") {
		return fm, content, nil
	}

	rest := content[3:]
	if strings.HasPrefix(rest, "\r\n") {
		rest = rest[2:]
	} else if strings.HasPrefix(rest, "\n") {
		rest = rest[1:]
	}

	idx := strings.Index(rest, "\n---")
	if idx < 0 {
		return fm, content, errors.New("closing front matter delimiter not found")
	}

	yamlBlock := rest[:idx]
	body := rest[idx+4:] // skip \n---

	if err := yaml.Unmarshal([]byte(yamlBlock), &fm); err != nil {
		return fm, content, fmt.Errorf("unmarshalling front matter: %w", err)
	}
	return fm, body, nil
}

// headingText concatenates the literal text under a heading, so emphasis
// and code spans in the heading do not lose their words.
func headingText(heading *ast.Heading, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(heading, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if t, ok := n.(*ast.Text); ok {
				sb.Write(t.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
