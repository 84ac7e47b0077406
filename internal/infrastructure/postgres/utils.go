package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasCode(err, "23505")
}

// isForeignKeyViolation verifica si un error es una violación de FK (23503).
func isForeignKeyViolation(err error) bool {
	return hasCode(err, "23503")
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return false
}

// mapWriteError traduce errores de escritura a errores de dominio.
func mapWriteError(op string, err error) error {
	switch {
	case isUniqueViolation(err):
		return domain.ErrDuplicate
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, domain.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID indica si id es un UUID; un id mal formado nunca existe en la base.
func validID(id string) bool {
	return uuid.Validate(id) == nil
}

// orderClause arma "ORDER BY" con columnas de una lista blanca; col ya debe estar validada.
func orderClause(col, dir, fallback string, allowed map[string]string) string {
	expr, ok := allowed[col]
	if !ok {
		expr = allowed[fallback]
	}
	d := "DESC"
	if dir == repository.SortAsc {
		d = "ASC"
	}
	return " ORDER BY " + expr + " " + d
}

// likePattern escapa comodines de LIKE y envuelve el término con %.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// limitClause agrega LIMIT/OFFSET como parámetros posicionales; Limit 0 = sin límite.
func limitClause(f repository.ListFilter, args []any) (string, []any) {
	if f.Limit <= 0 {
		if f.Offset > 0 {
			args = append(args, f.Offset)
			return fmt.Sprintf(" OFFSET $%d", len(args)), args
		}
		return "", args
	}
	args = append(args, f.Limit, f.Offset)
	return fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}
