package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"stagecrew/internal/domain"
)

func TestTemplateRepository_Create(t *testing.T) {
	ctx := context.Background()

	blockRef := "local-block"
	template := func() *domain.Template {
		return &domain.Template{
			Name: "Concert Night",
			Blocks: []domain.TemplateTimeBlockDef{
				{ID: "local-block", Label: "Setup", Kind: domain.BlockKindSetup, StartOffset: -2 * time.Hour, EndOffset: 0, Position: 0},
			},
			Shifts: []domain.TemplateShiftDef{
				{Role: "stagehand", RequiredCount: 2, BlockDefID: &blockRef},
			},
		}
	}

	t.Run("rewires shift defs to generated block ids", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO templates`).
			WithArgs("Concert Night").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("tpl-1", fixedTime, fixedTime))
		mock.ExpectQuery(`INSERT INTO template_time_block_defs`).
			WithArgs("tpl-1", "Setup", "setup", int64(-120), int64(0), 0).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("blk-def-1"))
		mock.ExpectQuery(`INSERT INTO template_shift_defs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("shift-def-1"))
		mock.ExpectCommit()

		repo := NewTemplateRepository(db)
		tmpl := template()
		require.NoError(t, repo.Create(ctx, tmpl))
		require.Equal(t, "tpl-1", tmpl.ID)
		require.Equal(t, "blk-def-1", tmpl.Blocks[0].ID)
		require.Equal(t, "blk-def-1", *tmpl.Shifts[0].BlockDefID)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown block reference", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery(`INSERT INTO templates`).
			WithArgs("Concert Night").
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow("tpl-1", fixedTime, fixedTime))
		mock.ExpectQuery(`INSERT INTO template_time_block_defs`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("blk-def-1"))
		mock.ExpectRollback()

		repo := NewTemplateRepository(db)
		tmpl := template()
		bogus := "no-such-block"
		tmpl.Shifts[0].BlockDefID = &bogus
		require.ErrorIs(t, repo.Create(ctx, tmpl), domain.ErrInvalidInput)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTemplateRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, archived, created_at, updated_at`).
		WithArgs("tpl-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "archived", "created_at", "updated_at"}).
			AddRow("tpl-1", "Concert Night", false, fixedTime, fixedTime))
	mock.ExpectQuery(`SELECT id, template_id, label, kind, start_offset_minutes, end_offset_minutes, position`).
		WithArgs("tpl-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "label", "kind", "start_offset_minutes", "end_offset_minutes", "position"}).
			AddRow("blk-def-1", "tpl-1", "Setup", "setup", int64(-120), int64(0), 0))
	mock.ExpectQuery(`SELECT id, template_id, role, required_count, block_def_id`).
		WithArgs("tpl-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "template_id", "role", "required_count", "block_def_id"}).
			AddRow("shift-def-1", "tpl-1", "stagehand", 2, "blk-def-1").
			AddRow("shift-def-2", "tpl-1", "runner", 1, nil))

	repo := NewTemplateRepository(db)
	tmpl, err := repo.GetByID(ctx, "tpl-1")
	require.NoError(t, err)
	require.Equal(t, -2*time.Hour, tmpl.Blocks[0].StartOffset)
	require.Len(t, tmpl.Shifts, 2)
	require.Equal(t, "blk-def-1", *tmpl.Shifts[0].BlockDefID)
	require.Nil(t, tmpl.Shifts[1].BlockDefID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_Archive(t *testing.T) {
	ctx := context.Background()

	t.Run("archives", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE templates SET archived = TRUE`).
			WithArgs("tpl-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewTemplateRepository(db)
		require.NoError(t, repo.Archive(ctx, "tpl-1"))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing template", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(`UPDATE templates SET archived = TRUE`).
			WithArgs("nope").
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewTemplateRepository(db)
		require.ErrorIs(t, repo.Archive(ctx, "nope"), domain.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
