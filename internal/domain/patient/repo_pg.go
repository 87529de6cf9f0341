package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/patientdesk/patientdesk/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return db.WithTx(ctx, r.pool, fn)
}

const patientCols = `id, first_name, middle_name, last_name, date_of_birth,
	status, address, provider_id, created_at, updated_at`

func (r *repoPG) List(ctx context.Context, providerID string) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patients WHERE provider_id = $1 ORDER BY created_at DESC`,
		providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID, providerID string) (*Patient, error) {
	p, err := scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients WHERE id = $1 AND provider_id = $2`, id, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (r *repoPG) Insert(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patients (
			id, first_name, middle_name, last_name, date_of_birth,
			status, address, provider_id, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, p.DateOfBirth.Time(),
		p.Status, p.Address, p.ProviderID, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

func (r *repoPG) Update(ctx context.Context, p *Patient) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE patients SET
			first_name=$2, middle_name=$3, last_name=$4, date_of_birth=$5,
			status=$6, address=$7, updated_at=NOW()
		WHERE id = $1 AND provider_id = $8`,
		p.ID, p.FirstName, p.MiddleName, p.LastName, p.DateOfBirth.Time(),
		p.Status, p.Address, p.ProviderID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID, providerID string) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM patients WHERE id = $1 AND provider_id = $2`, id, providerID)
	return err
}

func (r *repoPG) InsertStatusUpdate(ctx context.Context, su *StatusUpdate) error {
	su.ID = uuid.New()
	su.CreatedAt = time.Now().UTC()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO status_update (id, patient_id, status, created_at)
		VALUES ($1,$2,$3,$4)`,
		su.ID, su.PatientID, su.Status, su.CreatedAt,
	)
	return err
}

func (r *repoPG) ListStatusUpdates(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID][]StatusUpdate, error) {
	history := make(map[uuid.UUID][]StatusUpdate, len(patientIDs))
	if len(patientIDs) == 0 {
		return history, nil
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, patient_id, status, created_at
		FROM status_update WHERE patient_id = ANY($1) ORDER BY created_at`,
		patientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var su StatusUpdate
		if err := rows.Scan(&su.ID, &su.PatientID, &su.Status, &su.CreatedAt); err != nil {
			return nil, err
		}
		history[su.PatientID] = append(history[su.PatientID], su)
	}
	return history, rows.Err()
}

func (r *repoPG) DeleteStatusUpdates(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM status_update WHERE patient_id = $1`, patientID)
	return err
}

func (r *repoPG) Search(ctx context.Context, criteria Criteria) ([]*Patient, error) {
	where, args := buildSearchClauses(criteria)
	query := `SELECT ` + patientCols + ` FROM patients`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

// buildSearchClauses turns criteria into SQL predicates with positional args.
// Name fragments form one OR group (a row matches if any present fragment
// hits its column), location fragments another; the groups are ANDed with
// the remaining predicates.
func buildSearchClauses(criteria Criteria) ([]string, []interface{}) {
	var (
		where []string
		args  []interface{}
	)
	pred := func(clause string, arg interface{}) string {
		args = append(args, arg)
		return fmt.Sprintf(clause, len(args))
	}
	group := func(preds []string) {
		if len(preds) == 1 {
			where = append(where, preds[0])
		} else if len(preds) > 1 {
			where = append(where, `(`+strings.Join(preds, ` OR `)+`)`)
		}
	}

	var names []string
	if criteria.FirstName != nil {
		names = append(names, pred(`first_name ILIKE $%d`, "%"+*criteria.FirstName+"%"))
	}
	if criteria.MiddleName != nil {
		names = append(names, pred(`middle_name ILIKE $%d`, "%"+*criteria.MiddleName+"%"))
	}
	if criteria.LastName != nil {
		names = append(names, pred(`last_name ILIKE $%d`, "%"+*criteria.LastName+"%"))
	}
	group(names)

	var locations []string
	for _, loc := range criteria.Locations {
		locations = append(locations, pred(`address ILIKE $%d`, "%"+loc+"%"))
	}
	group(locations)

	if criteria.HasMiddleName != nil {
		if *criteria.HasMiddleName {
			where = append(where, `middle_name IS NOT NULL`)
		} else {
			where = append(where, `middle_name IS NULL`)
		}
	}
	if criteria.Status != nil {
		where = append(where, pred(`status = $%d`, *criteria.Status))
	}
	if criteria.BornAfter != nil {
		where = append(where, pred(`date_of_birth >= $%d`, criteria.BornAfter.Time()))
	}
	if criteria.BornBefore != nil {
		where = append(where, pred(`date_of_birth <= $%d`, criteria.BornBefore.Time()))
	}
	return where, args
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var (
		p   Patient
		dob time.Time
	)
	err := row.Scan(
		&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &dob,
		&p.Status, &p.Address, &p.ProviderID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.DateOfBirth = DateOf(dob)
	return &p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var patients []*Patient
	for rows.Next() {
		var (
			p   Patient
			dob time.Time
		)
		err := rows.Scan(
			&p.ID, &p.FirstName, &p.MiddleName, &p.LastName, &dob,
			&p.Status, &p.Address, &p.ProviderID, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		p.DateOfBirth = DateOf(dob)
		patients = append(patients, &p)
	}
	return patients, rows.Err()
}
