package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/themescope/internal/core/ports/driven"
	"github.com/custodia-labs/themescope/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore serves LLM prompt templates from user-editable files in a
// prompt directory, seeded from built-in defaults on first use.
//
// A file whose placeholder count does not match its template is ignored in
// favour of the default, so a bad edit degrades instead of breaking runs.
type PromptStore struct {
	promptDir string

	initOnce sync.Once
	initErr  error

	mu    sync.Mutex
	cache map[string]string
}

// defaultPrompts contains embedded default prompts.
// These are used when user files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptPersona: `You are reading the titles and addresses of pages a person visited, to infer their core interests and values.
Ignore logistics: sign-in pages, email, calendars, office documents, shipping, banking and shopping carts.
Group what remains into 5-8 distinct, non-overlapping themes (for example: deep learning research, moral philosophy, indie game design).
Reply with JSON only, no markdown and no prose, in this shape:
{"themes":[{"label":"1-3 words","rationale":"one or two sentences","sources":[{"title":"page title","url":"page url"}]}]}

Items:
%s`,

	driven.PromptTitles: `Below are distinct page titles from a person's browsing history.
Name 5-8 high-level themes that describe what this person cares about. Skip logistics and account pages.
Reply with JSON only, in this shape:
{"themes":[{"label":"1-3 words","rationale":"one or two sentences","sources":[{"title":"a matching title","url":""}]}]}

Titles:
%s`,

	driven.PromptSubthemes: `Group these browsing items into 5-10 distinct subthemes of the theme "%s".
Only use items that belong to the theme. Each label must be 1-3 words.
Reply with JSON only, in this shape:
{"subthemes":[{"label":"1-3 words","rationale":"one or two sentences","sources":[{"title":"page title","url":"page url"}]}]}

Items:
%s`,

	driven.PromptClusterLabel: `These pages come from one cluster of a browsing history.
Reply with a short label of 1-3 words naming the shared interest, and nothing else.
Examples: deep learning research, moral philosophy, indie game design.

Items:
%s`,
}

// placeholders is the number of %s verbs each built-in template consumes.
var placeholders = map[string]int{
	driven.PromptPersona:      1,
	driven.PromptTitles:       1,
	driven.PromptSubthemes:    2,
	driven.PromptClusterLabel: 1,
}

// NewPromptStore creates a file-backed prompt store. An empty promptDir
// means ~/.themescope/prompts. No I/O happens until the first Load.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		promptDir = filepath.Join(dir, "prompts")
	}
	return &PromptStore{promptDir: promptDir, cache: make(map[string]string)}, nil
}

// Load returns the template for name: the user's file when present and
// well-formed, otherwise the built-in default.
func (s *PromptStore) Load(name string) (string, error) {
	def, known := defaultPrompts[name]

	s.initOnce.Do(s.seed)
	if s.initErr != nil {
		if known {
			return def, nil
		}
		return "", fmt.Errorf("prompt store unavailable: %w", s.initErr)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tmpl, ok := s.cache[name]; ok {
		return tmpl, nil
	}

	tmpl, err := s.read(name)
	switch {
	case err != nil && !known:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case err != nil:
		tmpl = def
	case known && strings.Count(tmpl, "%s") != placeholders[name]:
		logger.Warn("Prompt %s.txt needs %d %%s placeholder(s); using the built-in template",
			name, placeholders[name])
		tmpl = def
	}
	s.cache[name] = tmpl
	return tmpl, nil
}

// Reload drops cached templates so edits on disk take effect.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// seed creates the prompt directory and writes any missing default files
// and the README. Existing files are never overwritten.
func (s *PromptStore) seed() {
	if err := os.MkdirAll(s.promptDir, 0o700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}
	files := map[string]string{"README.md": promptReadme}
	for name, content := range defaultPrompts {
		files[name+".txt"] = content + "\n"
	}
	for file, content := range files {
		path := filepath.Join(s.promptDir, file)
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			s.initErr = fmt.Errorf("write %s: %w", file, err)
			return
		}
	}
}

func (s *PromptStore) read(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

const promptReadme = `# themescope prompts

Templates sent to the configured LLM. Edit a file to change the wording;
changes apply to the next run.

## Files

- ` + "`persona.txt`" + ` - infers core themes from visited pages
- ` + "`titles.txt`" + ` - derives themes from page titles alone
- ` + "`subthemes.txt`" + ` - groups pages under one theme
- ` + "`cluster_label.txt`" + ` - names one cluster of pages

## Placeholders

Each ` + "`%s`" + ` is filled with Go's fmt package: subthemes.txt takes the
theme label then the item list; the others take the item list only.
A file with the wrong number of placeholders is ignored and the built-in
template is used instead. Delete a file to restore its default.
`
