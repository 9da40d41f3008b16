package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/chatrelay/internal/dbx"
	"github.com/dmitrijs2005/chatrelay/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, m *models.Message) error {
	query :=
		`INSERT INTO messages (id, user_id, content, role, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	_, err := r.db.ExecContext(ctx, query, m.ID, m.Owner.String(), m.Content, string(m.Role), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) Newest(ctx context.Context, owner models.OwnerRef, limit, offset int) ([]*models.Message, error) {
	query :=
		`SELECT id, content, role, created_at FROM messages
		 WHERE user_id = $1
		 ORDER BY created_at DESC, id DESC
		 LIMIT $2 OFFSET $3
		 `

	rows, err := r.db.QueryContext(ctx, query, owner.String(), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)

	for rows.Next() {
		m := &models.Message{Owner: owner}
		var role string

		if err := rows.Scan(&m.ID, &m.Content, &role, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		if m.Role, err = models.ParseRole(role); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}

		result = append(result, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) DeleteAll(ctx context.Context, owner models.OwnerRef) (int64, error) {
	query := `DELETE FROM messages WHERE user_id = $1`

	res, err := r.db.ExecContext(ctx, query, owner.String())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return n, nil
}
