package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/database"
)

// EnrollmentRepo persists identities with their templates and images using sqlx.
// Template payloads live on the enrolled_identities row; images live on a
// fingerprint_images row that references it and is removed with it.
type EnrollmentRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewEnrollmentRepo(db *sqlx.DB) *EnrollmentRepo {
	return &EnrollmentRepo{db: db, now: time.Now}
}

// EnsureTables creates both tables if they do not exist (idempotent). The
// statements are run one by one since not every driver accepts a batch.
func (r *EnrollmentRepo) EnsureTables(ctx context.Context) error {
	for _, stmt := range schema(r.db.DriverName()) {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure enrollment tables: %w", err)
		}
	}
	return nil
}

func schema(driver string) []string {
	id, ref, ts, blob := "BIGSERIAL PRIMARY KEY", "BIGINT", "TIMESTAMPTZ", "BYTEA"
	if driver == database.DriverSQLite {
		id, ref, ts, blob = "INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER", "TIMESTAMP", "BLOB"
	}

	var identities strings.Builder
	fmt.Fprintf(&identities, `CREATE TABLE IF NOT EXISTS enrolled_identities (
  id %s,
  id_number TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  enrolled_at %s NOT NULL`, id, ts)
	for _, slot := range entity.TemplateSlots {
		fmt.Fprintf(&identities, ",\n  %s %s", slot, blob)
	}
	identities.WriteString("\n)")

	var images strings.Builder
	fmt.Fprintf(&images, `CREATE TABLE IF NOT EXISTS fingerprint_images (
  id %s,
  user_id %s NOT NULL UNIQUE REFERENCES enrolled_identities(id) ON DELETE CASCADE`, id, ref)
	for _, slot := range entity.ImageSlots {
		fmt.Fprintf(&images, ",\n  %s %s", slot, blob)
	}
	images.WriteString("\n)")

	return []string{identities.String(), images.String()}
}

// Save writes one identity, its ten templates and its thirteen images in a
// single transaction. Any failure rolls back every write made by the call.
func (r *EnrollmentRepo) Save(ctx context.Context, name, idNumber string, p *entity.EnrollmentPayload) (entity.SaveResult, error) {
	if !p.Complete() {
		return entity.SaveResult{}, fmt.Errorf("%w: payload is incomplete", apperr.ErrPayloadRejected)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return entity.SaveResult{}, storageErr("begin", err)
	}
	// no-op once committed
	defer tx.Rollback()

	enrolledAt := r.now().UTC()
	var id int64
	insert := tx.Rebind(`INSERT INTO enrolled_identities (id_number, name, enrolled_at) VALUES (?, ?, ?) RETURNING id`)
	if err := tx.GetContext(ctx, &id, insert, idNumber, name, enrolledAt); err != nil {
		if database.IsUniqueViolation(err) {
			return entity.SaveResult{}, fmt.Errorf("%w: id number %s", apperr.ErrDuplicateIdentity, idNumber)
		}
		return entity.SaveResult{}, storageErr("insert identity", err)
	}

	for _, slot := range entity.TemplateSlots {
		// column names come from the closed slot catalogue, never from input
		q := tx.Rebind(fmt.Sprintf(`UPDATE enrolled_identities SET %s = ? WHERE id = ?`, slot))
		if _, err := tx.ExecContext(ctx, q, p.Templates[slot], id); err != nil {
			return entity.SaveResult{}, storageErr("write template "+string(slot), err)
		}
	}

	if _, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO fingerprint_images (user_id) VALUES (?)`), id); err != nil {
		return entity.SaveResult{}, storageErr("insert images", err)
	}
	for _, slot := range entity.ImageSlots {
		q := tx.Rebind(fmt.Sprintf(`UPDATE fingerprint_images SET %s = ? WHERE user_id = ?`, slot))
		if _, err := tx.ExecContext(ctx, q, p.Images[slot], id); err != nil {
			return entity.SaveResult{}, storageErr("write image "+string(slot), err)
		}
	}

	if err := tx.Commit(); err != nil {
		if database.IsUniqueViolation(err) {
			return entity.SaveResult{}, fmt.Errorf("%w: id number %s", apperr.ErrDuplicateIdentity, idNumber)
		}
		return entity.SaveResult{}, storageErr("commit", err)
	}
	return entity.SaveResult{ID: id, Name: name, EnrolledAt: enrolledAt}, nil
}

// identityRow mirrors enrolled_identities column by column.
type identityRow struct {
	ID          int64     `db:"id"`
	IDNumber    string    `db:"id_number"`
	Name        string    `db:"name"`
	EnrolledAt  time.Time `db:"enrolled_at"`
	RightThumb  []byte    `db:"fmr_right_thumb"`
	RightIndex  []byte    `db:"fmr_right_index"`
	RightMiddle []byte    `db:"fmr_right_middle"`
	RightRing   []byte    `db:"fmr_right_ring"`
	RightLittle []byte    `db:"fmr_right_little"`
	LeftThumb   []byte    `db:"fmr_left_thumb"`
	LeftIndex   []byte    `db:"fmr_left_index"`
	LeftMiddle  []byte    `db:"fmr_left_middle"`
	LeftRing    []byte    `db:"fmr_left_ring"`
	LeftLittle  []byte    `db:"fmr_left_little"`
}

func (row identityRow) identity() entity.Identity {
	return entity.Identity{
		ID:         row.ID,
		IDNumber:   row.IDNumber,
		Name:       row.Name,
		EnrolledAt: row.EnrolledAt,
		Templates: entity.TemplateSet{
			entity.TemplateRightThumb:  row.RightThumb,
			entity.TemplateRightIndex:  row.RightIndex,
			entity.TemplateRightMiddle: row.RightMiddle,
			entity.TemplateRightRing:   row.RightRing,
			entity.TemplateRightLittle: row.RightLittle,
			entity.TemplateLeftThumb:   row.LeftThumb,
			entity.TemplateLeftIndex:   row.LeftIndex,
			entity.TemplateLeftMiddle:  row.LeftMiddle,
			entity.TemplateLeftRing:    row.LeftRing,
			entity.TemplateLeftLittle:  row.LeftLittle,
		},
	}
}

func templateColumns() string {
	cols := make([]string, len(entity.TemplateSlots))
	for i, slot := range entity.TemplateSlots {
		cols[i] = string(slot)
	}
	return strings.Join(cols, ", ")
}

// ListIdentities returns every identity with its template set, ordered by id.
// It runs as a single statement, so each row reflects committed state only.
func (r *EnrollmentRepo) ListIdentities(ctx context.Context) ([]entity.Identity, error) {
	q := `SELECT id, id_number, name, enrolled_at, ` + templateColumns() + ` FROM enrolled_identities ORDER BY id`
	var rows []identityRow
	if err := r.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, storageErr("list identities", err)
	}
	out := make([]entity.Identity, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.identity())
	}
	return out, nil
}

// GetImages loads the image set stored for identity id.
func (r *EnrollmentRepo) GetImages(ctx context.Context, id int64) (entity.ImageSet, error) {
	cols := make([]string, len(entity.ImageSlots))
	for i, slot := range entity.ImageSlots {
		cols[i] = string(slot)
	}
	q := r.db.Rebind(`SELECT ` + strings.Join(cols, ", ") + ` FROM fingerprint_images WHERE user_id = ?`)
	rows, err := r.db.QueryxContext(ctx, q, id)
	if err != nil {
		return nil, storageErr("get images", err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, storageErr("get images", err)
		}
		return nil, fmt.Errorf("%w: images for identity %d", apperr.ErrNotFound, id)
	}
	values := make([][]byte, len(entity.ImageSlots))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, storageErr("scan images", err)
	}
	set := make(entity.ImageSet, len(entity.ImageSlots))
	for i, slot := range entity.ImageSlots {
		set[slot] = values[i]
	}
	return set, nil
}

// Delete removes identity id; its image row goes with it through the
// foreign key cascade.
func (r *EnrollmentRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM enrolled_identities WHERE id = ?`), id)
	if err != nil {
		return storageErr("delete identity", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete identity", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: identity %d", apperr.ErrNotFound, id)
	}
	return nil
}

func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, apperr.ErrStorageUnavailable, err)
}
