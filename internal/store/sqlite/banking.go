package sqlite

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/telecomnet/telecom-social/internal/model"
)

type banking struct{ q queryer }

const bankingColumns = `id, bank_name, account_name, account_number, branch_code, swift_code, instructions, is_active, created_at, updated_at`

func scanBanking(sc interface{ Scan(...any) error }) (*model.BankingDetails, error) {
	var b model.BankingDetails
	var created, updated int64
	if err := sc.Scan(&b.ID, &b.BankName, &b.AccountName, &b.AccountNumber, &b.BranchCode, &b.SwiftCode,
		&b.Instructions, &b.IsActive, &created, &updated); err != nil {
		return nil, err
	}
	b.CreatedAt = fromMicros(created)
	b.UpdatedAt = fromMicros(updated)
	return &b, nil
}

func (r *banking) Get(ctx context.Context, id string) (*model.BankingDetails, error) {
	b, err := scanBanking(r.q.QueryRowContext(ctx, `SELECT `+bankingColumns+` FROM banking_details WHERE id = ?`, id))
	if err != nil {
		return nil, dbErr("get banking details", err)
	}
	return b, nil
}

func (r *banking) List(ctx context.Context) ([]*model.BankingDetails, error) {
	return r.list(ctx, "list banking details", `SELECT `+bankingColumns+` FROM banking_details ORDER BY updated_at DESC, id`)
}

func (r *banking) ListActive(ctx context.Context) ([]*model.BankingDetails, error) {
	return r.list(ctx, "list active banking details",
		`SELECT `+bankingColumns+` FROM banking_details WHERE is_active = 1 ORDER BY updated_at DESC, id`)
}

func (r *banking) DemoteActive(ctx context.Context, exceptID string, at time.Time) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `
        UPDATE banking_details SET is_active = 0, updated_at = ?
        WHERE is_active = 1 AND id <> ?
        RETURNING id
    `, toMicros(at), exceptID)
	if err != nil {
		return nil, dbErr("demote banking details", err)
	}
	defer func() { _ = rows.Close() }()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, dbErr("demote banking details", err)
		}
		ids = append(ids, id)
	}
	return ids, dbErr("demote banking details", rows.Err())
}

func (r *banking) Put(ctx context.Context, rec *model.BankingDetails, at time.Time) (*model.BankingDetails, error) {
	id := rec.ID
	if id == "" {
		id = uuid.New().String()
	}
	b, err := scanBanking(r.q.QueryRowContext(ctx, `
        INSERT INTO banking_details (`+bankingColumns+`)
        VALUES (?,?,?,?,?,?,?,?,?,?)
        ON CONFLICT (id) DO UPDATE SET
            bank_name = excluded.bank_name,
            account_name = excluded.account_name,
            account_number = excluded.account_number,
            branch_code = excluded.branch_code,
            swift_code = excluded.swift_code,
            instructions = excluded.instructions,
            is_active = excluded.is_active,
            updated_at = excluded.updated_at
        RETURNING `+bankingColumns,
		id, rec.BankName, rec.AccountName, rec.AccountNumber, rec.BranchCode, rec.SwiftCode,
		rec.Instructions, rec.IsActive, toMicros(at), toMicros(at)))
	if err != nil {
		return nil, dbErr("put banking details", err)
	}
	return b, nil
}

func (r *banking) list(ctx context.Context, op, query string, args ...any) ([]*model.BankingDetails, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbErr(op, err)
	}
	defer func() { _ = rows.Close() }()
	var out []*model.BankingDetails
	for rows.Next() {
		b, err := scanBanking(rows)
		if err != nil {
			return nil, dbErr(op, err)
		}
		out = append(out, b)
	}
	return out, dbErr(op, rows.Err())
}
