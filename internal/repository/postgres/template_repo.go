package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"stagecrew/internal/domain"
)

type templateRepository struct {
	DB *sql.DB
}

// NewTemplateRepository returns a domain.TemplateRepository implemented with Postgres.
func NewTemplateRepository(db *sql.DB) domain.TemplateRepository {
	return &templateRepository{DB: db}
}

// Create inserts the template and all its definitions in one transaction.
// Offsets are stored as whole minutes from the anchor.
func (r *templateRepository) Create(ctx context.Context, tmpl *domain.Template) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO templates (name)
		VALUES ($1)
		RETURNING id, created_at, updated_at
	`, tmpl.Name).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		return err
	}

	// Callers reference blocks from shift defs by whatever local id they
	// used before insert; remember the mapping to the generated ids.
	blockIDByLocalID := make(map[string]string, len(tmpl.Blocks))
	for i := range tmpl.Blocks {
		def := &tmpl.Blocks[i]
		localID := def.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO template_time_block_defs (template_id, label, kind, start_offset_minutes, end_offset_minutes, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, tmpl.ID, def.Label, string(def.Kind),
			int64(def.StartOffset/time.Minute), int64(def.EndOffset/time.Minute), def.Position).
			Scan(&def.ID)
		if err != nil {
			return err
		}
		def.TemplateID = tmpl.ID
		if localID != "" {
			blockIDByLocalID[localID] = def.ID
		}
	}

	for i := range tmpl.Shifts {
		def := &tmpl.Shifts[i]
		var blockDefID sql.NullString
		if def.BlockDefID != nil {
			dbID, ok := blockIDByLocalID[*def.BlockDefID]
			if !ok {
				return fmt.Errorf("shift %q references unknown block definition: %w", def.Role, domain.ErrInvalidInput)
			}
			def.BlockDefID = &dbID
			blockDefID = sql.NullString{String: dbID, Valid: true}
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO template_shift_defs (template_id, role, required_count, block_def_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, tmpl.ID, def.Role, def.RequiredCount, blockDefID).Scan(&def.ID)
		if err != nil {
			return err
		}
		def.TemplateID = tmpl.ID
	}
	return tx.Commit()
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	tmpl := &domain.Template{}
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, name, archived, created_at, updated_at
		FROM templates
		WHERE id = $1
	`, id).Scan(&tmpl.ID, &tmpl.Name, &tmpl.Archived, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	if err := r.loadDefs(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

func (r *templateRepository) loadDefs(ctx context.Context, tmpl *domain.Template) error {
	blockRows, err := r.DB.QueryContext(ctx, `
		SELECT id, template_id, label, kind, start_offset_minutes, end_offset_minutes, position
		FROM template_time_block_defs
		WHERE template_id = $1
		ORDER BY position
	`, tmpl.ID)
	if err != nil {
		return err
	}
	defer blockRows.Close()

	for blockRows.Next() {
		var def domain.TemplateTimeBlockDef
		var kind string
		var startMin, endMin int64
		if err := blockRows.Scan(&def.ID, &def.TemplateID, &def.Label, &kind, &startMin, &endMin, &def.Position); err != nil {
			return err
		}
		def.Kind = domain.BlockKind(kind)
		def.StartOffset = time.Duration(startMin) * time.Minute
		def.EndOffset = time.Duration(endMin) * time.Minute
		tmpl.Blocks = append(tmpl.Blocks, def)
	}
	if err := blockRows.Err(); err != nil {
		return err
	}

	shiftRows, err := r.DB.QueryContext(ctx, `
		SELECT id, template_id, role, required_count, block_def_id
		FROM template_shift_defs
		WHERE template_id = $1
		ORDER BY id
	`, tmpl.ID)
	if err != nil {
		return err
	}
	defer shiftRows.Close()

	for shiftRows.Next() {
		var def domain.TemplateShiftDef
		var blockDefID sql.NullString
		if err := shiftRows.Scan(&def.ID, &def.TemplateID, &def.Role, &def.RequiredCount, &blockDefID); err != nil {
			return err
		}
		if blockDefID.Valid {
			def.BlockDefID = &blockDefID.String
		}
		tmpl.Shifts = append(tmpl.Shifts, def)
	}
	return shiftRows.Err()
}

func (r *templateRepository) List(ctx context.Context, includeArchived bool) ([]*domain.Template, error) {
	query := `
		SELECT id, name, archived, created_at, updated_at
		FROM templates
		WHERE archived = FALSE OR $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, includeArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*domain.Template
	for rows.Next() {
		tmpl := &domain.Template{}
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.Archived, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

func (r *templateRepository) Archive(ctx context.Context, id string) error {
	result, err := r.DB.ExecContext(ctx,
		`UPDATE templates SET archived = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
