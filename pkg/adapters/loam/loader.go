package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"

	"github.com/aretw0/mentor/internal/compiler"
	"github.com/aretw0/mentor/pkg/domain"
)

// Loader implements ports.SectionLoader for a directory of Markdown
// documents: one "section" document plus one document per case.
type Loader struct {
	opts []loam.Option
}

// New creates a Loam section loader. The repository is always opened
// strict and read-only; opts are appended.
func New(opts ...loam.Option) *Loader {
	return &Loader{opts: opts}
}

// Load reads the section directory at dir.
func (l *Loader) Load(ctx context.Context, dir string) (*domain.Section, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	opts := append([]loam.Option{loam.WithStrict(true), loam.WithReadOnly(true)}, l.opts...)
	repo, err := loam.Init(abs, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return Read(ctx, loam.NewTypedRepository[CaseMetadata](repo), abs)
}

// Read builds a section from an already opened repository rooted at dir.
func Read(ctx context.Context, repo *loam.TypedRepository[CaseMetadata], dir string) (*domain.Section, error) {
	docs, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	section := &domain.Section{Path: filepath.Join(dir, SectionDocument+".md")}
	var header bool
	cases := make(map[string]domain.Case)
	seen := make(map[string]string)

	for _, doc := range docs {
		meta := doc.Data
		docID := trimExtension(doc.ID)

		if meta.Kind == KindSection || (meta.Kind == "" && docID == SectionDocument) {
			if header {
				return nil, fmt.Errorf("%w: more than one section document", domain.ErrInvalidFlow)
			}
			header = true
			section.ID = strings.TrimSpace(meta.ID)
			section.Name = meta.Name
			section.Instruction = strings.TrimSpace(doc.Content)
			section.Start = strings.TrimSpace(meta.Start)
			section.Policy = domain.MentorPolicy(meta.Policy).Normalize()
			continue
		}
		if meta.Kind != "" && meta.Kind != KindCase {
			return nil, fmt.Errorf("%w: document '%s' has unknown kind '%s'", domain.ErrInvalidFlow, doc.ID, meta.Kind)
		}

		id := strings.TrimSpace(meta.ID)
		if id == "" {
			id = docID
		}
		if existing, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: case '%s' is defined in both '%s' and '%s': %w",
				id, existing, doc.ID, &domain.DuplicateCaseError{CaseID: id})
		}
		seen[id] = doc.ID
		cases[id] = domain.Case{
			ID:           id,
			Question:     strings.TrimSpace(doc.Content),
			MentorAnswer: strings.TrimSpace(meta.MentorAnswer),
			Next:         strings.TrimSpace(meta.Next),
			Assets:       meta.Assets,
		}
	}

	if !header {
		return nil, fmt.Errorf("%w: missing '%s' document in %s", domain.ErrInvalidFlow, SectionDocument, dir)
	}
	if section.ID == "" {
		section.ID = compiler.DeriveSectionID(dir)
	}
	section.Cases = orderCases(section.Start, cases)
	return section, nil
}

// orderCases lists the cases along the next chain from start, then the
// cases off the chain sorted by ID.
func orderCases(start string, cases map[string]domain.Case) []domain.Case {
	ids := make([]string, 0, len(cases))
	for id := range cases {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if start == "" && len(ids) > 0 {
		start = ids[0]
	}

	ordered := make([]domain.Case, 0, len(cases))
	placed := make(map[string]bool, len(cases))
	for ref := start; !domain.IsTotalRef(ref); {
		c, ok := cases[ref]
		if !ok || placed[ref] {
			break
		}
		placed[ref] = true
		ordered = append(ordered, c)
		ref = c.Next
	}
	for _, id := range ids {
		if !placed[id] {
			ordered = append(ordered, cases[id])
		}
	}
	return ordered
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
