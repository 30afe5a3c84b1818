package domain

import (
	"context"
	"time"
)

// BlockKind tags what part of an event a time block covers.
type BlockKind string

const (
	BlockKindSetup       BlockKind = "setup"
	BlockKindDoors       BlockKind = "doors"
	BlockKindPerformance BlockKind = "performance"
	BlockKindBreak       BlockKind = "break"
	BlockKindTeardown    BlockKind = "teardown"
	BlockKindGeneric     BlockKind = "generic"
)

// Valid reports whether k is a known block kind.
func (k BlockKind) Valid() bool {
	switch k {
	case BlockKindSetup, BlockKindDoors, BlockKindPerformance, BlockKindBreak, BlockKindTeardown, BlockKindGeneric:
		return true
	}
	return false
}

// Template is a reusable schedule definition expressed relative to an anchor
// time. Templates are created once and read-only thereafter; archiving hides
// a template from selection without deleting history.
type Template struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Archived  bool                   `json:"archived"`
	Blocks    []TemplateTimeBlockDef `json:"blocks"`
	Shifts    []TemplateShiftDef     `json:"shifts"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// TemplateTimeBlockDef defines one time block relative to the event anchor.
type TemplateTimeBlockDef struct {
	ID          string        `json:"id"`
	TemplateID  string        `json:"template_id"`
	Label       string        `json:"label"`
	Kind        BlockKind     `json:"kind"`
	StartOffset time.Duration `json:"start_offset"`
	EndOffset   time.Duration `json:"end_offset"`
	Position    int           `json:"position"`
}

// TemplateShiftDef defines one staffing need. BlockDefID is nil for shifts
// that span the whole event rather than one block.
type TemplateShiftDef struct {
	ID            string  `json:"id"`
	TemplateID    string  `json:"template_id"`
	Role          string  `json:"role"`
	RequiredCount int     `json:"required_count"`
	BlockDefID    *string `json:"block_def_id,omitempty"`
}

// TemplateRepository defines storage for templates. There is deliberately no
// Update: templates are immutable once created, only archivable.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *Template) error
	GetByID(ctx context.Context, id string) (*Template, error)
	List(ctx context.Context, includeArchived bool) ([]*Template, error)
	Archive(ctx context.Context, id string) error
}

// TemplateService defines template administration.
type TemplateService interface {
	CreateTemplate(ctx context.Context, tmpl *Template, actor Actor) (*Template, error)
	GetTemplate(ctx context.Context, id string) (*Template, error)
	ListTemplates(ctx context.Context, includeArchived bool) ([]*Template, error)
	ArchiveTemplate(ctx context.Context, id string, actor Actor) error
}
