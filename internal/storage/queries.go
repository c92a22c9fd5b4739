package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Transfer is one stored form response. Every column is kept as the text the
// form produced.
type Transfer struct {
	ID           int64
	Timestamp    string
	AgentName    string
	TransferTo   string
	CustomerName string
	ElectricBill string
	CreditScore  string
}

const listTransfers = `-- name: ListTransfers :many
SELECT id, timestamp, agent_name, transfer_to, customer_name, electric_bill, credit_score
FROM transfers
ORDER BY id
`

func (q *Queries) ListTransfers(ctx context.Context) ([]Transfer, error) {
	rows, err := q.db.QueryContext(ctx, listTransfers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Transfer
	for rows.Next() {
		var i Transfer
		if err := rows.Scan(
			&i.ID,
			&i.Timestamp,
			&i.AgentName,
			&i.TransferTo,
			&i.CustomerName,
			&i.ElectricBill,
			&i.CreditScore,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTransfers = `-- name: CountTransfers :one
SELECT COUNT(*) FROM transfers
`

func (q *Queries) CountTransfers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTransfers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const deleteAllTransfers = `-- name: DeleteAllTransfers :exec
DELETE FROM transfers
`

func (q *Queries) DeleteAllTransfers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllTransfers)
	return err
}

const createTransfer = `-- name: CreateTransfer :one
INSERT INTO transfers (timestamp, agent_name, transfer_to, customer_name, electric_bill, credit_score)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateTransferParams struct {
	Timestamp    string
	AgentName    string
	TransferTo   string
	CustomerName string
	ElectricBill string
	CreditScore  string
}

func (q *Queries) CreateTransfer(ctx context.Context, arg CreateTransferParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createTransfer,
		arg.Timestamp,
		arg.AgentName,
		arg.TransferTo,
		arg.CustomerName,
		arg.ElectricBill,
		arg.CreditScore,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}
