package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

type PGRepository struct {
	DB *sqlx.DB
}

func NewPGRepository(db *sqlx.DB) *PGRepository {
	return &PGRepository{DB: db}
}

func (r *PGRepository) Create(ctx context.Context, loc *model.Location) error {
	query := `
        INSERT INTO locations (id, owner_id, name, created_at, updated_at)
        VALUES (:id, :owner_id, :name, :created_at, :updated_at)
    `
	_, err := r.DB.NamedExecContext(ctx, query, loc)
	return err
}

func (r *PGRepository) FindByID(ctx context.Context, id string) (*model.Location, error) {
	var loc model.Location
	query := `SELECT * FROM locations WHERE id = $1 LIMIT 1`
	err := r.DB.GetContext(ctx, &loc, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindByName(ctx context.Context, ownerID, name string) (*model.Location, error) {
	var loc model.Location
	query := `SELECT * FROM locations WHERE owner_id = $1 AND name = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &loc, query, ownerID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &loc, nil
}

func (r *PGRepository) FindAll(ctx context.Context, f *dto.LocationFilters) ([]model.Location, int, error) {
	var locations []model.Location
	var count int

	conditions := []string{}
	args := map[string]interface{}{}

	if f.OwnerID != "" {
		conditions = append(conditions, "owner_id = :owner_id")
		args["owner_id"] = f.OwnerID
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT count(*) FROM locations" + whereClause
	rows, err := r.DB.NamedQueryContext(ctx, countQuery, args)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	if rows.Next() {
		rows.Scan(&count)
	}

	query := "SELECT * FROM locations" + whereClause + " ORDER BY name ASC"
	if f.PageSize > 0 {
		offset := (f.Page - 1) * f.PageSize
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, offset)
	}

	nstmt, err := r.DB.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	defer nstmt.Close()

	err = nstmt.SelectContext(ctx, &locations, args)
	return locations, count, err
}

func (r *PGRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM locations WHERE id = $1`, id)
	return err
}

func (r *PGRepository) HasInventory(ctx context.Context, locationID string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM inventory_records WHERE location_id = $1)`
	err := r.DB.GetContext(ctx, &exists, query, locationID)
	return exists, err
}

func (r *PGRepository) FindAllWithTotals(ctx context.Context, ownerID string) ([]model.LocationTotals, error) {
	var totals []model.LocationTotals

	query := `
        SELECT l.*,
               COALESCE(SUM(i.quantity), 0) AS total_quantity,
               COUNT(i.id) AS record_count
        FROM locations l
        LEFT JOIN inventory_records i ON i.location_id = l.id
    `
	args := []interface{}{}
	if ownerID != "" {
		query += ` WHERE l.owner_id = $1`
		args = append(args, ownerID)
	}
	query += ` GROUP BY l.id ORDER BY l.name ASC`

	err := r.DB.SelectContext(ctx, &totals, query, args...)
	return totals, err
}
