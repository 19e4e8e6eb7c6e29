package prompt

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/dinerozz/nudge-engine/internal/entity"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

const DefaultPersona entity.Persona = "drill_sergeant"

type catalogFile struct {
	Prompts []entity.SarcasticPrompt `yaml:"prompts"`
}

// ParseCatalog decodes and validates a YAML prompt catalog.
func ParseCatalog(data []byte) ([]entity.SarcasticPrompt, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse prompt catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Prompts))
	for i, p := range file.Prompts {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("prompt %d: missing id", i)
		case seen[p.ID]:
			return nil, fmt.Errorf("prompt %s: duplicate id", p.ID)
		case p.Persona == "":
			return nil, fmt.Errorf("prompt %s: missing persona", p.ID)
		case p.Message == "":
			return nil, fmt.Errorf("prompt %s: missing message", p.ID)
		}
		switch p.Severity {
		case entity.PromptGentle, entity.PromptMedium, entity.PromptSavage:
		default:
			return nil, fmt.Errorf("prompt %s: unknown severity %q", p.ID, p.Severity)
		}
		seen[p.ID] = true
	}
	return file.Prompts, nil
}

func DefaultCatalog() ([]entity.SarcasticPrompt, error) {
	return ParseCatalog(defaultCatalog)
}

// Selector picks one eligible prompt at random. The catalog is read-only
// after construction.
type Selector struct {
	catalog        []entity.SarcasticPrompt
	defaultPersona entity.Persona

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewSelector(catalog []entity.SarcasticPrompt, rnd *rand.Rand, defaultPersona entity.Persona) *Selector {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if defaultPersona == "" {
		defaultPersona = DefaultPersona
	}
	return &Selector{catalog: catalog, rnd: rnd, defaultPersona: defaultPersona}
}

// GenerateContextualPrompt returns a prompt for persona whose trigger
// matches c, or nil when none qualifies. An empty persona uses the default.
func (s *Selector) GenerateContextualPrompt(c entity.PromptContext, persona entity.Persona) *entity.SarcasticPrompt {
	if persona == "" {
		persona = s.defaultPersona
	}

	var eligible []int
	for i, p := range s.catalog {
		if p.Persona == persona && p.Trigger.Matches(c) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	s.mu.Lock()
	pick := eligible[s.rnd.IntN(len(eligible))]
	s.mu.Unlock()

	chosen := s.catalog[pick]
	return &chosen
}

// Personas lists the personas present in the catalog, sorted.
func (s *Selector) Personas() []entity.Persona {
	set := make(map[entity.Persona]bool)
	for _, p := range s.catalog {
		set[p.Persona] = true
	}
	out := make([]entity.Persona, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
