package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.CounterpartyRepository = (*CounterpartyRepo)(nil)

const counterpartyColumns = `id, owner_id, name, description, contact_email, contact_phone, address, created_at, updated_at`

var counterpartySort = map[string]string{
	"name":          "lower(name)",
	"contact_email": "contact_email",
	"created_at":    "created_at",
}

// CounterpartyRepo clientes (tabla clients) y proveedores (tabla suppliers) sobre PostgreSQL.
type CounterpartyRepo struct {
	q Querier
}

// NewCounterpartyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCounterpartyRepository(q Querier) *CounterpartyRepo {
	return &CounterpartyRepo{q: q}
}

func tableFor(kind string) (string, error) {
	switch kind {
	case entity.KindClient:
		return "clients", nil
	case entity.KindSupplier:
		return "suppliers", nil
	}
	return "", fmt.Errorf("tipo de contraparte desconocido %q: %w", kind, domain.ErrInvalidInput)
}

func scanCounterparty(row pgx.Row, kind string) (*entity.Counterparty, error) {
	c := entity.Counterparty{Kind: kind}
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.ContactEmail, &c.ContactPhone,
		&c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste un cliente o proveedor según c.Kind.
func (r *CounterpartyRepo) Create(ctx context.Context, c *entity.Counterparty) error {
	table, err := tableFor(c.Kind)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(ctx, `
		INSERT INTO `+table+` (`+counterpartyColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		c.ID, c.OwnerID, c.Name, c.Description, c.ContactEmail, c.ContactPhone, c.Address, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("insert "+c.Kind, err)
	}
	return nil
}

func (r *CounterpartyRepo) getOne(ctx context.Context, kind, where string, args ...any) (*entity.Counterparty, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	c, err := scanCounterparty(r.q.QueryRow(ctx, `SELECT `+counterpartyColumns+` FROM `+table+` WHERE `+where, args...), kind)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return c, nil
}

// GetByID obtiene la contraparte del owner por ID.
func (r *CounterpartyRepo) GetByID(ctx context.Context, kind, ownerID, id string) (*entity.Counterparty, error) {
	if !validID(id) {
		return nil, nil
	}
	return r.getOne(ctx, kind, `owner_id = $1 AND id = $2`, ownerID, id)
}

// GetByOwnerAndName busca por nombre sin distinguir mayúsculas.
func (r *CounterpartyRepo) GetByOwnerAndName(ctx context.Context, kind, ownerID, name string) (*entity.Counterparty, error) {
	return r.getOne(ctx, kind, `owner_id = $1 AND lower(name) = lower($2)`, ownerID, name)
}

// Update actualiza todos los campos editables.
func (r *CounterpartyRepo) Update(ctx context.Context, c *entity.Counterparty) error {
	table, err := tableFor(c.Kind)
	if err != nil {
		return err
	}
	cmd, err := r.q.Exec(ctx, `
		UPDATE `+table+`
		SET name = $3, description = $4, contact_email = $5, contact_phone = $6, address = $7, updated_at = $8
		WHERE owner_id = $1 AND id = $2`,
		c.OwnerID, c.ID, c.Name, c.Description, c.ContactEmail, c.ContactPhone, c.Address, c.UpdatedAt,
	)
	if err != nil {
		return mapWriteError("update "+c.Kind, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CounterpartyRepo) query(ctx context.Context, kind, ownerID, term string, byPhone bool, f repository.ListFilter) ([]*entity.Counterparty, int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, 0, err
	}
	where := ` WHERE owner_id = $1`
	args := []any{ownerID}
	if term != "" {
		args = append(args, likePattern(term))
		cond := `name ILIKE $%[1]d OR contact_email ILIKE $%[1]d`
		if byPhone {
			cond += ` OR contact_phone ILIKE $%[1]d`
		}
		where += fmt.Sprintf(` AND (`+cond+`)`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count %s: %w", table, err)
	}

	sql := `SELECT ` + counterpartyColumns + ` FROM ` + table + where +
		orderClause(f.SortBy, f.SortDirection, "created_at", counterpartySort) + `, id`
	limit, args := limitClause(f, args)
	rows, err := r.q.Query(ctx, sql+limit, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	list := make([]*entity.Counterparty, 0)
	for rows.Next() {
		c, err := scanCounterparty(rows, kind)
		if err != nil {
			return nil, 0, fmt.Errorf("scan %s: %w", kind, err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// List lista con búsqueda por nombre o email, orden y paginación.
func (r *CounterpartyRepo) List(ctx context.Context, kind, ownerID string, f repository.ListFilter) ([]*entity.Counterparty, int, error) {
	return r.query(ctx, kind, ownerID, f.Search, false, f)
}

// Search busca por nombre, email o teléfono; ordena por nombre.
func (r *CounterpartyRepo) Search(ctx context.Context, kind, ownerID, term string) ([]*entity.Counterparty, error) {
	list, _, err := r.query(ctx, kind, ownerID, term, true, repository.ListFilter{SortBy: "name", SortDirection: repository.SortAsc})
	return list, err
}

// Count cuenta las contrapartes del owner.
func (r *CounterpartyRepo) Count(ctx context.Context, kind, ownerID string) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM `+table+` WHERE owner_id = $1`, ownerID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// Delete elimina la contraparte; con pedidos asociados devuelve ErrConflict.
func (r *CounterpartyRepo) Delete(ctx context.Context, kind, ownerID, id string) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	if !validID(id) {
		return domain.ErrNotFound
	}
	cmd, err := r.q.Exec(ctx, `DELETE FROM `+table+` WHERE owner_id = $1 AND id = $2`, ownerID, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
