package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx"
	"github.com/jmoiron/sqlx"
	pkgerrors "github.com/pkg/errors"
	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

const movementInsertQuery = `
    INSERT INTO stock_movements (
        id, owner_id, product_id, location_id, inventory_id, variant_sku,
        movement_type, quantity_change, quantity_before, quantity_after,
        reason, notes, reference_id, created_by, created_at
    )
    VALUES (
        :id, :owner_id, :product_id, :location_id, :inventory_id, :variant_sku,
        :movement_type, :quantity_change, :quantity_before, :quantity_after,
        :reason, :notes, :reference_id, :created_by, :created_at
    )
`

func (r *PGRepository) GetByID(ctx context.Context, id string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	query := `SELECT * FROM inventory_records WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &rec, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadVariations(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) GetByProductLocation(ctx context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	var rec model.InventoryRecord
	query := `SELECT * FROM inventory_records WHERE product_id = $1 AND location_id = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &rec, query, productID, locationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadVariations(ctx, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *PGRepository) loadVariations(ctx context.Context, rec *model.InventoryRecord) error {
	var variations []model.InventoryVariation
	err := r.DB.SelectContext(ctx, &variations,
		`SELECT inventory_id, sku, quantity FROM inventory_variations WHERE inventory_id = $1 ORDER BY sku`,
		rec.ID)
	if err != nil {
		return err
	}
	rec.Variations = variations
	return nil
}

func (r *PGRepository) Create(ctx context.Context, rec *model.InventoryRecord) error {
	query := `
        INSERT INTO inventory_records (
            id, owner_id, product_id, location_id, quantity, reorder_point,
            version, created_at, updated_at
        )
        VALUES (
            :id, :owner_id, :product_id, :location_id, :quantity, :reorder_point,
            :version, :created_at, :updated_at
        )
    `
	_, err := r.DB.NamedExecContext(ctx, query, rec)
	if err != nil {
		var pgErr pgx.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return inventory.ErrDuplicateRecord
		}
		return err
	}
	return nil
}

const uniqueViolationCode = "23505"

func (r *PGRepository) FindAll(ctx context.Context, f *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	var records []model.InventoryRecord
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OwnerID != "" {
		conditions = append(conditions, "owner_id = :owner_id")
		args["owner_id"] = f.OwnerID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.LowStock {
		conditions = append(conditions, "quantity <= reorder_point AND reorder_point > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM inventory_records" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM inventory_records" + whereClause + " ORDER BY updated_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	if err := nstmt.SelectContext(ctx, &records, args); err != nil {
		return nil, 0, err
	}

	if err := r.loadVariationsBatch(ctx, records); err != nil {
		return nil, 0, err
	}
	return records, count, nil
}

func (r *PGRepository) loadVariationsBatch(ctx context.Context, records []model.InventoryRecord) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}

	query, args, err := sqlx.In(
		`SELECT inventory_id, sku, quantity FROM inventory_variations WHERE inventory_id IN (?) ORDER BY sku`, ids)
	if err != nil {
		return err
	}
	query = r.DB.Rebind(query)

	var variations []model.InventoryVariation
	if err := r.DB.SelectContext(ctx, &variations, query, args...); err != nil {
		return err
	}

	byInventory := map[string][]model.InventoryVariation{}
	for _, v := range variations {
		byInventory[v.InventoryID] = append(byInventory[v.InventoryID], v)
	}
	for i := range records {
		records[i].Variations = byInventory[records[i].ID]
	}
	return nil
}

// ApplyDeltaWithMovement is the atomic-increment write path. The total
// (and the variation row when a SKU is given) move inside one
// transaction, each guarded against going negative in the UPDATE itself,
// and the ledger entry is inserted with the quantities actually stored.
func (r *PGRepository) ApplyDeltaWithMovement(ctx context.Context, d *inventory.DeltaChange, m *model.StockMovement) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// 1. Move the total, guarded.
	var newTotal int64
	err = tx.GetContext(ctx, &newTotal, `
        UPDATE inventory_records
        SET quantity = quantity + $2, version = version + 1, updated_at = now()
        WHERE id = $1 AND quantity + $2 >= 0
        RETURNING quantity
    `, d.InventoryID, d.TotalDelta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return r.classifyGuardFailure(ctx, tx, d.InventoryID)
		}
		return pkgerrors.Wrap(err, "apply total delta")
	}

	// 2. Move the variation row, guarded the same way.
	var newVariant int64
	if d.VariantSKU != nil {
		err = tx.GetContext(ctx, &newVariant, `
            INSERT INTO inventory_variations (inventory_id, sku, quantity)
            VALUES ($1, $2, $3)
            ON CONFLICT (inventory_id, sku)
            DO UPDATE SET quantity = inventory_variations.quantity + $3
            WHERE inventory_variations.quantity + $3 >= 0
            RETURNING quantity
        `, d.InventoryID, *d.VariantSKU, d.VariantDelta)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return inventory.ErrStockGuard
			}
			return pkgerrors.Wrap(err, "apply variant delta")
		}
	}

	// 3. Append the ledger entry with the post-update quantities.
	if d.VariantSKU != nil {
		m.QuantityAfter = newVariant
		m.QuantityBefore = newVariant - d.VariantDelta
	} else {
		m.QuantityAfter = newTotal
		m.QuantityBefore = newTotal - d.TotalDelta
	}
	if _, err := tx.NamedExecContext(ctx, movementInsertQuery, m); err != nil {
		return pkgerrors.Wrap(err, "log movement")
	}

	return tx.Commit()
}

// classifyGuardFailure distinguishes a missing record from a guard
// rejection after a zero-row guarded UPDATE.
func (r *PGRepository) classifyGuardFailure(ctx context.Context, tx *sqlx.Tx, inventoryID string) error {
	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM inventory_records WHERE id = $1)`, inventoryID); err != nil {
		return err
	}
	if !exists {
		return sql.ErrNoRows
	}
	return inventory.ErrStockGuard
}

func (r *PGRepository) SetTotal(ctx context.Context, inventoryID string, newTotal, expectedVersion int64) error {
	res, err := r.DB.ExecContext(ctx, `
        UPDATE inventory_records
        SET quantity = $2, version = version + 1, updated_at = now()
        WHERE id = $1 AND version = $3
    `, inventoryID, newTotal, expectedVersion)
	if err != nil {
		return pkgerrors.Wrap(err, "set total")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrVersionConflict
	}
	return nil
}

func (r *PGRepository) SetVariation(ctx context.Context, inventoryID, sku string, newQuantity, totalDelta, expectedVersion int64) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE inventory_records
        SET quantity = quantity + $2, version = version + 1, updated_at = now()
        WHERE id = $1 AND version = $3
    `, inventoryID, totalDelta, expectedVersion)
	if err != nil {
		return pkgerrors.Wrap(err, "set variation total")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return inventory.ErrVersionConflict
	}

	_, err = tx.ExecContext(ctx, `
        INSERT INTO inventory_variations (inventory_id, sku, quantity)
        VALUES ($1, $2, $3)
        ON CONFLICT (inventory_id, sku) DO UPDATE SET quantity = $3
    `, inventoryID, sku, newQuantity)
	if err != nil {
		return pkgerrors.Wrap(err, "set variation quantity")
	}

	return tx.Commit()
}

// ApplyTransfer commits both record updates and both ledger entries in
// one transaction. Either side failing its version check (or the source
// its non-negativity guard) rolls back the whole transfer.
func (r *PGRepository) ApplyTransfer(ctx context.Context, t *inventory.TransferApply) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
        UPDATE inventory_records
        SET quantity = quantity - $2, version = version + 1, updated_at = now()
        WHERE id = $1 AND version = $3 AND quantity - $2 >= 0
    `, t.SourceID, t.Amount, t.SourceVersion)
	if err != nil {
		return pkgerrors.Wrap(err, "transfer source update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inventory.ErrVersionConflict
	}

	res, err = tx.ExecContext(ctx, `
        UPDATE inventory_records
        SET quantity = quantity + $2, version = version + 1, updated_at = now()
        WHERE id = $1 AND version = $3
    `, t.DestID, t.Amount, t.DestVersion)
	if err != nil {
		return pkgerrors.Wrap(err, "transfer destination update")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return inventory.ErrVersionConflict
	}

	if t.VariantSKU != nil {
		res, err = tx.ExecContext(ctx, `
            UPDATE inventory_variations SET quantity = quantity - $3
            WHERE inventory_id = $1 AND sku = $2 AND quantity - $3 >= 0
        `, t.SourceID, *t.VariantSKU, t.Amount)
		if err != nil {
			return pkgerrors.Wrap(err, "transfer source variant")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return inventory.ErrStockGuard
		}

		_, err = tx.ExecContext(ctx, `
            INSERT INTO inventory_variations (inventory_id, sku, quantity)
            VALUES ($1, $2, $3)
            ON CONFLICT (inventory_id, sku) DO UPDATE SET quantity = inventory_variations.quantity + $3
        `, t.DestID, *t.VariantSKU, t.Amount)
		if err != nil {
			return pkgerrors.Wrap(err, "transfer destination variant")
		}
	}

	if _, err := tx.NamedExecContext(ctx, movementInsertQuery, t.OutMovement); err != nil {
		return pkgerrors.Wrap(err, "log transfer out")
	}
	if _, err := tx.NamedExecContext(ctx, movementInsertQuery, t.InMovement); err != nil {
		return pkgerrors.Wrap(err, "log transfer in")
	}

	return tx.Commit()
}

func (r *PGRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	_, err := r.DB.NamedExecContext(ctx, movementInsertQuery, m)
	return err
}

func (r *PGRepository) DeleteMovement(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM stock_movements WHERE id = $1`, id)
	return err
}

const movementSelectColumns = `
    m.*, p.name AS product_name, l.name AS location_name
`

const movementJoins = `
    FROM stock_movements m
    LEFT JOIN products p ON p.id = m.product_id
    LEFT JOIN locations l ON l.id = m.location_id
`

func (r *PGRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.MovementWithNames, int, error) {
	var movements []model.MovementWithNames
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OwnerID != "" {
		conditions = append(conditions, "m.owner_id = :owner_id")
		args["owner_id"] = f.OwnerID
	}
	if f.ProductID != "" {
		conditions = append(conditions, "m.product_id = :product_id")
		args["product_id"] = f.ProductID
	}
	if f.LocationID != "" {
		conditions = append(conditions, "m.location_id = :location_id")
		args["location_id"] = f.LocationID
	}
	if f.InventoryID != "" {
		conditions = append(conditions, "m.inventory_id = :inventory_id")
		args["inventory_id"] = f.InventoryID
	}
	if f.MovementType != "" {
		conditions = append(conditions, "m.movement_type = :movement_type")
		args["movement_type"] = f.MovementType
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM stock_movements m" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT " + movementSelectColumns + movementJoins + whereClause + " ORDER BY m.created_at DESC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &movements, args)
	return movements, count, err
}

func (r *PGRepository) MovementsForInventory(ctx context.Context, inventoryID string) ([]model.MovementWithNames, error) {
	var movements []model.MovementWithNames
	query := "SELECT " + movementSelectColumns + movementJoins +
		` WHERE m.inventory_id = $1 ORDER BY m.created_at ASC`
	err := r.DB.SelectContext(ctx, &movements, query, inventoryID)
	return movements, err
}

func (r *PGRepository) LatestMovementsForProduct(ctx context.Context, ownerID, productID string, limit int) ([]model.MovementWithNames, error) {
	var movements []model.MovementWithNames

	query := "SELECT " + movementSelectColumns + movementJoins + ` WHERE m.product_id = $1`
	args := []interface{}{productID}
	if ownerID != "" {
		query += ` AND m.owner_id = $2`
		args = append(args, ownerID)
	}
	query += fmt.Sprintf(" ORDER BY m.created_at DESC LIMIT %d", limit)

	err := r.DB.SelectContext(ctx, &movements, query, args...)
	return movements, err
}

func (r *PGRepository) TotalForProduct(ctx context.Context, ownerID, productID string) (int64, error) {
	var total int64

	query := `SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE product_id = $1`
	args := []interface{}{productID}
	if ownerID != "" {
		query += ` AND owner_id = $2`
		args = append(args, ownerID)
	}

	err := r.DB.GetContext(ctx, &total, query, args...)
	return total, err
}

func (r *PGRepository) StockValue(ctx context.Context, ownerID string) (float64, error) {
	var value float64

	// Missing prices count as zero so a partially priced catalog still
	// produces a total.
	query := `
        SELECT COALESCE(SUM(i.quantity * COALESCE(p.retail_price, 0)), 0)
        FROM inventory_records i
        LEFT JOIN products p ON p.id = i.product_id
    `
	args := []interface{}{}
	if ownerID != "" {
		query += ` WHERE i.owner_id = $1`
		args = append(args, ownerID)
	}

	err := r.DB.GetContext(ctx, &value, query, args...)
	return value, err
}

func (r *PGRepository) StockForSKU(ctx context.Context, productID, sku string, simple bool) (int64, error) {
	var total int64
	var err error

	if simple {
		err = r.DB.GetContext(ctx, &total,
			`SELECT COALESCE(SUM(quantity), 0) FROM inventory_records WHERE product_id = $1`, productID)
	} else {
		err = r.DB.GetContext(ctx, &total, `
            SELECT COALESCE(SUM(v.quantity), 0)
            FROM inventory_variations v
            JOIN inventory_records i ON i.id = v.inventory_id
            WHERE i.product_id = $1 AND v.sku = $2
        `, productID, sku)
	}
	return total, err
}
