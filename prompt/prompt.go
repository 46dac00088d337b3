// Package prompt renders the conversation prompts from embedded
// templates. Compiled templates are kept in a small LRU cache so
// repeated turns do not re-parse them.
package prompt

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"text/template"

	lru "github.com/hashicorp/golang-lru/v2"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const cacheSize = 16

// Template names understood by Render.
const (
	SystemPrompt       = "system-prompt"
	DigestConfidential = "digest-confidential"
	DigestConclude     = "digest-conclude"
)

// Renderer loads, compiles and caches the prompt templates.
type Renderer struct {
	fsys  fs.FS
	cache *lru.Cache[string, *template.Template]
}

// NewRenderer renders the embedded template set.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("embedded templates: %w", err)
	}
	return NewRendererFS(sub)
}

// NewRendererFS renders templates from the given filesystem, which must
// hold one "<name>.tmpl" file per template name. Lets callers override
// the built-in prompts.
func NewRendererFS(fsys fs.FS) (*Renderer, error) {
	cache, err := lru.New[string, *template.Template](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("template cache: %w", err)
	}
	return &Renderer{fsys: fsys, cache: cache}, nil
}

// Render executes the named template with the given data.
func (r *Renderer) Render(name string, data any) (string, error) {
	tmpl, ok := r.cache.Get(name)
	if !ok {
		var err error
		tmpl, err = template.ParseFS(r.fsys, name+".tmpl")
		if err != nil {
			return "", fmt.Errorf("load template %q: %w", name, err)
		}
		r.cache.Add(name, tmpl)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render template %q: %w", name, err)
	}
	return buf.String(), nil
}

// SystemPromptData feeds the system-prompt template.
type SystemPromptData struct {
	InterviewType string
	InterviewDesc string
	AliceRole     string
	AliceTraits   []string
	BobRole       string
	BobTraits     []string
	Fields        []FieldData
	// Labels cites the rule kinds present, already quoted, e.g.
	// `"Must" and "Reject"`. Empty when no validation rules exist.
	Labels          string
	HasConfidential bool
}

// FieldData is one collectable field as the system prompt presents it.
type FieldData struct {
	Name         string
	Desc         string
	Confidential bool
	Must         []string
	Reject       []string
	Hint         []string
	Casts        []CastData
}

// CastData is one transformation attached to a field.
type CastData struct {
	Name   string
	Prompt string
}

// DigestConfidentialData feeds the digest-confidential template.
type DigestConfidentialData struct {
	InterviewType string
	AliceRole     string
	BobRole       string
	FieldsPrompt  string
}

// DigestConcludeData feeds the digest-conclude template.
type DigestConcludeData struct {
	InterviewType string
	FieldsPrompt  string
}

// ValidationLabels names the rule kinds present, quoted the way the
// system prompt cites them.
func ValidationLabels(mustCount, rejectCount int) string {
	switch {
	case mustCount > 0 && rejectCount > 0:
		return `"Must" and "Reject"`
	case mustCount > 0:
		return `"Must"`
	case rejectCount > 0:
		return `"Reject"`
	}
	return ""
}
