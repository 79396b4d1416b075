package docs

import (
	"bufio"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"gopkg.in/yaml.v3"
)

// TestTopics checks that the index lists exactly the embedded topics.
func TestTopics(t *testing.T) {
	file, err := os.Open("readme.md")
	if err != nil {
		t.Fatalf("failed to open readme.md: %v", err)
	}
	defer file.Close()

	var listed []string
	scanner := bufio.NewScanner(file)
	topicRegex := regexp.MustCompile(`^\*\s+([^:]+):.*$`)
	for scanner.Scan() {
		if m := topicRegex.FindStringSubmatch(scanner.Text()); len(m) > 1 {
			listed = append(listed, strings.TrimSpace(m[1]))
		}
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("error scanning readme.md: %v", err)
	}

	for _, topic := range listed {
		if _, err := Topic(topic); err != nil {
			t.Errorf("Topic(%q) error = %v", topic, err)
		}
	}

	all, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	sort.Strings(listed)
	if !reflect.DeepEqual(all, listed) {
		t.Errorf("readme.md lists %v, embedded topics are %v", listed, all)
	}
}

func TestTopicUnknown(t *testing.T) {
	if _, err := Topic("nope"); err == nil {
		t.Error("Topic(nope) succeeded")
	}
	if _, err := Topics("markets", "nope"); err == nil {
		t.Error("Topics(markets, nope) succeeded")
	}
}

func TestTopicsStar(t *testing.T) {
	got, err := Topics("*")
	if err != nil {
		t.Fatalf("Topics(*) error = %v", err)
	}
	all, _ := All()
	for _, name := range all {
		content, _ := Topic(name)
		if !strings.Contains(got, content) {
			t.Errorf("Topics(*) misses %q", name)
		}
	}
}

// TestHeadings checks that every topic starts with a single title.
func TestHeadings(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range append(all, Index) {
		t.Run(name, func(t *testing.T) {
			content, err := Topic(name)
			if err != nil {
				t.Fatal(err)
			}
			source := []byte(content)
			root := goldmark.DefaultParser().Parse(text.NewReader(source))
			var titles int
			first := root.FirstChild()
			ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
				if h, ok := n.(*ast.Heading); ok && entering && h.Level == 1 {
					titles++
				}
				return ast.WalkContinue, nil
			})
			if h, ok := first.(*ast.Heading); !ok || h.Level != 1 {
				t.Errorf("%s does not start with a title", name)
			}
			if titles != 1 {
				t.Errorf("%s has %d titles, want 1", name, titles)
			}
		})
	}
}

// TestYAMLBlocks checks that the yaml examples parse.
func TestYAMLBlocks(t *testing.T) {
	all, err := All()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range all {
		content, _ := Topic(name)
		source := []byte(content)
		root := goldmark.DefaultParser().Parse(text.NewReader(source))
		ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
			fcb, ok := n.(*ast.FencedCodeBlock)
			if !ok || !entering || string(fcb.Language(source)) != "yaml" {
				return ast.WalkContinue, nil
			}
			var block strings.Builder
			for i := 0; i < fcb.Lines().Len(); i++ {
				line := fcb.Lines().At(i)
				block.Write(line.Value(source))
			}
			var v map[string]any
			if err := yaml.Unmarshal([]byte(block.String()), &v); err != nil {
				t.Errorf("%s: invalid yaml block: %v", name, err)
			}
			return ast.WalkContinue, nil
		})
	}
}
