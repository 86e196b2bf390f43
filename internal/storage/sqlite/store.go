// Package sqlite provides the single-file SQLite store for scene documents
// and evaluation audit rows.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/louisbranch/defilade/internal/geo"
	sqlitemigrate "github.com/louisbranch/defilade/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/defilade/internal/scene"
	"github.com/louisbranch/defilade/internal/storage"
	"github.com/louisbranch/defilade/internal/storage/listfilter"
	"github.com/louisbranch/defilade/internal/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// Store provides SQLite-backed persistence for scenes and evaluations.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a scene store at the provided path, applying embedded
// migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB, now: time.Now}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close closes the underlying SQLite database.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutScene upserts one scene document keyed by id. The created timestamp is
// kept on update.
func (s *Store) PutScene(ctx context.Context, doc scene.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(doc.ID) == "" {
		return fmt.Errorf("scene id is required")
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode scene payload: %w", err)
	}
	now := toMillis(s.now())
	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO scenes (id, name, grid_size, payload, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    grid_size = excluded.grid_size,
    payload = excluded.payload,
    updated_at = excluded.updated_at
`, doc.ID, doc.Name, doc.GridSize, string(payload), now, now)
	if err != nil {
		return fmt.Errorf("put scene: %w", err)
	}
	return nil
}

// GetScene loads one scene document by id.
func (s *Store) GetScene(ctx context.Context, id string) (scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return scene.Scene{}, err
	}
	if s == nil || s.sqlDB == nil {
		return scene.Scene{}, fmt.Errorf("storage is not configured")
	}

	var payload string
	err := s.sqlDB.QueryRowContext(ctx, "SELECT payload FROM scenes WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return scene.Scene{}, storage.ErrNotFound
	}
	if err != nil {
		return scene.Scene{}, fmt.Errorf("get scene: %w", err)
	}

	var doc scene.Scene
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return scene.Scene{}, fmt.Errorf("decode scene payload: %w", err)
	}
	doc.ID = id
	return doc, nil
}

// DeleteScene removes one scene document by id.
func (s *Store) DeleteScene(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	result, err := s.sqlDB.ExecContext(ctx, "DELETE FROM scenes WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scene: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ListScenes returns listing rows for all stored scenes, most recently
// updated first.
func (s *Store) ListScenes(ctx context.Context) ([]storage.SceneInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, name, grid_size, payload, updated_at
FROM scenes
ORDER BY updated_at DESC, id ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []storage.SceneInfo
	for rows.Next() {
		var (
			info      storage.SceneInfo
			payload   string
			updatedAt int64
		)
		if err := rows.Scan(&info.ID, &info.Name, &info.GridSize, &payload, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan scene row: %w", err)
		}
		var doc scene.Scene
		if err := json.Unmarshal([]byte(payload), &doc); err != nil {
			return nil, fmt.Errorf("decode scene payload: %w", err)
		}
		info.Tokens = len(doc.Tokens)
		info.Walls = len(doc.Walls)
		info.UpdatedAt = fromMillis(updatedAt)
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenes: %w", err)
	}
	return infos, nil
}

// AppendEvaluation persists one evaluation audit row.
func (s *Store) AppendEvaluation(ctx context.Context, eval storage.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(eval.ID) == "" {
		return fmt.Errorf("evaluation id is required")
	}
	if strings.TrimSpace(eval.TargetID) == "" {
		return fmt.Errorf("evaluation target id is required")
	}

	createdAt := eval.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	var originX, originY any
	if eval.Origin != nil {
		originX = eval.Origin.X
		originY = eval.Origin.Y
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO evaluations (
    id, scene_id, attacker_id, target_id, origin_x, origin_y,
    mode, wall_level, token_level, level, duration_us, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, eval.ID, eval.SceneID, eval.AttackerID, eval.TargetID, originX, originY,
		eval.Mode, eval.WallLevel, eval.TokenLevel, eval.Level,
		eval.Duration.Microseconds(), toMillis(createdAt))
	if err != nil {
		return fmt.Errorf("append evaluation: %w", err)
	}
	return nil
}

// ListEvaluations returns stored evaluation rows matching the AIP-160 filter
// expression, newest first.
func (s *Store) ListEvaluations(ctx context.Context, filter string, pageSize int) ([]storage.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	cond, err := listfilter.Parse(filter)
	if err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	query := `
SELECT id, scene_id, attacker_id, target_id, origin_x, origin_y,
       mode, wall_level, token_level, level, duration_us, created_at
FROM evaluations
`
	params := cond.Params
	if cond.Clause != "" {
		query += "WHERE " + cond.Clause + "\n"
	}
	query += "ORDER BY created_at DESC, id ASC LIMIT ?"
	params = append(params, pageSize)

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var evals []storage.Evaluation
	for rows.Next() {
		var (
			eval       storage.Evaluation
			originX    sql.NullFloat64
			originY    sql.NullFloat64
			durationUS int64
			createdAt  int64
		)
		if err := rows.Scan(
			&eval.ID, &eval.SceneID, &eval.AttackerID, &eval.TargetID,
			&originX, &originY, &eval.Mode, &eval.WallLevel, &eval.TokenLevel,
			&eval.Level, &durationUS, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		if originX.Valid && originY.Valid {
			eval.Origin = &geo.Point{X: originX.Float64, Y: originY.Float64}
		}
		eval.Duration = time.Duration(durationUS) * time.Microsecond
		eval.CreatedAt = fromMillis(createdAt)
		evals = append(evals, eval)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return evals, nil
}
