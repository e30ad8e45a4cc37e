// Package knowledge is the static mountaineering dictionary: categories of
// topics, each either a short description or a nested set of entries. The
// data is built once at init and never mutated.
package knowledge

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Unknown is the description of a topic the dictionary does not hold.
const Unknown = "The mountain keeps its secrets."

// MaxSearchResults caps Search output.
const MaxSearchResults = 3

// Topic is a node of the dictionary. Leaves carry Text, branches carry
// Children; never both.
type Topic struct {
	Name     string  `json:"name"`
	Text     string  `json:"text,omitempty"`
	Children []Topic `json:"children,omitempty"`
}

// Hit is one Search match.
type Hit struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Info     string `json:"info"`
}

// Line formats the hit the way it is handed to the model.
func (h Hit) Line() string {
	return h.Name + ": " + h.Info
}

func (t Topic) IsLeaf() bool {
	return len(t.Children) == 0
}

// Label is the human form of the name: "free_solo" reads "free solo".
func (t Topic) Label() string {
	return strings.ReplaceAll(t.Name, "_", " ")
}

// Child finds a direct child by name.
func (t Topic) Child(name string) (Topic, bool) {
	key := normalize(name)
	for _, c := range t.Children {
		if c.Name == key {
			return c, true
		}
	}
	return Topic{}, false
}

// Render flattens a topic into one line: leaves render as their text,
// branches as "name: value; name: value" with nested branches in parentheses.
func (t Topic) Render() string {
	if t.IsLeaf() {
		return t.Text
	}

	parts := make([]string, 0, len(t.Children))
	for _, c := range t.Children {
		if c.IsLeaf() {
			parts = append(parts, c.Name+": "+c.Text)
		} else {
			parts = append(parts, c.Name+": ("+c.Render()+")")
		}
	}
	return strings.Join(parts, "; ")
}

// All returns every top-level category in definition order.
func All() []Topic {
	out := make([]Topic, len(mountainData))
	copy(out, mountainData)
	return out
}

// Names returns the category names in definition order.
func Names() []string {
	names := make([]string, len(mountainData))
	for i, t := range mountainData {
		names[i] = t.Name
	}
	return names
}

// Lookup returns a category by name. Case and spaces are forgiven:
// "Famous Peaks" finds famous_peaks.
func Lookup(topic string) (Topic, bool) {
	key := normalize(topic)
	for _, t := range mountainData {
		if t.Name == key {
			return t, true
		}
	}
	return Topic{}, false
}

// LookupPath walks category, entry, field...
func LookupPath(path ...string) (Topic, bool) {
	if len(path) == 0 {
		return Topic{}, false
	}

	node, ok := Lookup(path[0])
	for _, name := range path[1:] {
		if !ok {
			break
		}
		node, ok = node.Child(name)
	}
	return node, ok
}

// Describe renders a category, or Unknown when there is none.
func Describe(topic string) string {
	t, ok := Lookup(topic)
	if !ok {
		return Unknown
	}
	return t.Render()
}

// SearchAll is a linear scan with no scoring: an entry matches when its
// category name or its own name occurs in the lower-cased query, with
// underscores or with spaces. Results keep definition order.
func SearchAll(query string) []Hit {
	q := strings.ToLower(query)
	if strings.TrimSpace(q) == "" {
		return nil
	}

	var hits []Hit
	for _, category := range mountainData {
		if category.IsLeaf() {
			continue
		}
		categoryMatch := mentions(q, category.Name)
		for _, entry := range category.Children {
			if categoryMatch || mentions(q, entry.Name) {
				hits = append(hits, Hit{
					Category: category.Name,
					Name:     entry.Name,
					Info:     entry.Render(),
				})
			}
		}
	}
	return hits
}

// Search returns the first MaxSearchResults hits, one per line, or "".
func Search(query string) string {
	hits := SearchAll(query)
	if len(hits) > MaxSearchResults {
		hits = hits[:MaxSearchResults]
	}

	lines := make([]string, len(hits))
	for i, h := range hits {
		lines[i] = h.Line()
	}
	return strings.Join(lines, "\n")
}

// Suggest returns up to n topic paths ("famous_peaks/k2") that fuzzily
// match query, best first.
func Suggest(query string, n int) []string {
	if n <= 0 || strings.TrimSpace(query) == "" {
		return nil
	}

	matches := fuzzy.Find(normalize(query), topicPaths)
	out := make([]string, 0, n)
	for _, m := range matches {
		if len(out) == n {
			break
		}
		out = append(out, m.Str)
	}
	return out
}

var topicPaths = func() []string {
	var paths []string
	for _, category := range mountainData {
		paths = append(paths, category.Name)
		for _, entry := range category.Children {
			paths = append(paths, category.Name+"/"+entry.Name)
		}
	}
	return paths
}()

func mentions(query, name string) bool {
	if strings.Contains(query, name) {
		return true
	}
	spaced := strings.ReplaceAll(name, "_", " ")
	return spaced != name && strings.Contains(query, spaced)
}

func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.Join(strings.Fields(name), "_")
}
