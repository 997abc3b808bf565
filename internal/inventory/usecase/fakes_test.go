package usecase

import (
	"context"
	"database/sql"
	"sort"

	"github.com/stocklane/inventory-service/internal/inventory"
	"github.com/stocklane/inventory-service/internal/inventory/dto"
	"github.com/stocklane/inventory-service/internal/location"
	locdto "github.com/stocklane/inventory-service/internal/location/dto"
	"github.com/stocklane/inventory-service/internal/model"
)

// fakeRepo reimplements the postgres repository semantics in memory:
// guarded increments, version CAS and an append-only movement slice.
// Failure injection fields let tests drive the compensation paths.
type fakeRepo struct {
	records    map[string]*model.InventoryRecord
	variations map[string]map[string]int64
	byPair     map[string]string
	movements  []*model.StockMovement

	setTotalErr       error
	setTotalConflicts int
	deleteErr         error
	transferConflicts int

	// When set, the next Create loses the race: the winner's record is
	// stored instead and the insert reports the unique violation.
	createRaceWinner *model.InventoryRecord
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		records:    map[string]*model.InventoryRecord{},
		variations: map[string]map[string]int64{},
		byPair:     map[string]string{},
	}
}

func pairKey(productID, locationID string) string {
	return productID + "|" + locationID
}

func (r *fakeRepo) snapshot(rec *model.InventoryRecord) *model.InventoryRecord {
	cp := *rec
	cp.Variations = nil
	skus := make([]string, 0, len(r.variations[rec.ID]))
	for sku := range r.variations[rec.ID] {
		skus = append(skus, sku)
	}
	sort.Strings(skus)
	for _, sku := range skus {
		cp.Variations = append(cp.Variations, model.InventoryVariation{
			InventoryID: rec.ID,
			SKU:         sku,
			Quantity:    r.variations[rec.ID][sku],
		})
	}
	return &cp
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*model.InventoryRecord, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, nil
	}
	return r.snapshot(rec), nil
}

func (r *fakeRepo) GetByProductLocation(_ context.Context, productID, locationID string) (*model.InventoryRecord, error) {
	id, ok := r.byPair[pairKey(productID, locationID)]
	if !ok {
		return nil, nil
	}
	return r.snapshot(r.records[id]), nil
}

func (r *fakeRepo) Create(_ context.Context, rec *model.InventoryRecord) error {
	if winner := r.createRaceWinner; winner != nil {
		r.createRaceWinner = nil
		cp := *winner
		r.records[winner.ID] = &cp
		r.byPair[pairKey(winner.ProductID, winner.LocationID)] = winner.ID
		return inventory.ErrDuplicateRecord
	}

	cp := *rec
	r.records[rec.ID] = &cp
	r.byPair[pairKey(rec.ProductID, rec.LocationID)] = rec.ID
	return nil
}

func (r *fakeRepo) FindAll(_ context.Context, f *dto.InventoryFilters) ([]model.InventoryRecord, int, error) {
	var out []model.InventoryRecord
	for _, rec := range r.records {
		if f.OwnerID != "" && rec.OwnerID != f.OwnerID {
			continue
		}
		if f.ProductID != "" && rec.ProductID != f.ProductID {
			continue
		}
		if f.LocationID != "" && rec.LocationID != f.LocationID {
			continue
		}
		if f.LowStock && !rec.IsLowStock() {
			continue
		}
		out = append(out, *r.snapshot(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeRepo) ApplyDeltaWithMovement(_ context.Context, d *inventory.DeltaChange, m *model.StockMovement) error {
	rec, ok := r.records[d.InventoryID]
	if !ok {
		return sql.ErrNoRows
	}
	if rec.Quantity+d.TotalDelta < 0 {
		return inventory.ErrStockGuard
	}

	if d.VariantSKU != nil {
		cur := r.variations[rec.ID][*d.VariantSKU]
		if cur+d.VariantDelta < 0 {
			return inventory.ErrStockGuard
		}
		if r.variations[rec.ID] == nil {
			r.variations[rec.ID] = map[string]int64{}
		}
		r.variations[rec.ID][*d.VariantSKU] = cur + d.VariantDelta
		m.QuantityBefore = cur
		m.QuantityAfter = cur + d.VariantDelta
	} else {
		m.QuantityBefore = rec.Quantity
		m.QuantityAfter = rec.Quantity + d.TotalDelta
	}

	rec.Quantity += d.TotalDelta
	rec.Version++
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) SetTotal(_ context.Context, inventoryID string, newTotal, expectedVersion int64) error {
	if r.setTotalConflicts > 0 {
		r.setTotalConflicts--
		// A concurrent writer bumped the version between read and write.
		r.records[inventoryID].Version++
		return inventory.ErrVersionConflict
	}
	if r.setTotalErr != nil {
		return r.setTotalErr
	}
	rec, ok := r.records[inventoryID]
	if !ok || rec.Version != expectedVersion {
		return inventory.ErrVersionConflict
	}
	rec.Quantity = newTotal
	rec.Version++
	return nil
}

func (r *fakeRepo) SetVariation(_ context.Context, inventoryID, sku string, newQuantity, totalDelta, expectedVersion int64) error {
	rec, ok := r.records[inventoryID]
	if !ok || rec.Version != expectedVersion {
		return inventory.ErrVersionConflict
	}
	if r.variations[inventoryID] == nil {
		r.variations[inventoryID] = map[string]int64{}
	}
	r.variations[inventoryID][sku] = newQuantity
	rec.Quantity += totalDelta
	rec.Version++
	return nil
}

func (r *fakeRepo) ApplyTransfer(_ context.Context, t *inventory.TransferApply) error {
	if r.transferConflicts > 0 {
		r.transferConflicts--
		return inventory.ErrVersionConflict
	}

	src, ok := r.records[t.SourceID]
	if !ok || src.Version != t.SourceVersion {
		return inventory.ErrVersionConflict
	}
	dst, ok := r.records[t.DestID]
	if !ok || dst.Version != t.DestVersion {
		return inventory.ErrVersionConflict
	}
	if src.Quantity-t.Amount < 0 {
		return inventory.ErrVersionConflict
	}

	if t.VariantSKU != nil {
		if r.variations[src.ID][*t.VariantSKU]-t.Amount < 0 {
			return inventory.ErrStockGuard
		}
		r.variations[src.ID][*t.VariantSKU] -= t.Amount
		if r.variations[dst.ID] == nil {
			r.variations[dst.ID] = map[string]int64{}
		}
		r.variations[dst.ID][*t.VariantSKU] += t.Amount
	}

	src.Quantity -= t.Amount
	src.Version++
	dst.Quantity += t.Amount
	dst.Version++
	r.movements = append(r.movements, t.OutMovement, t.InMovement)
	return nil
}

func (r *fakeRepo) LogMovement(_ context.Context, m *model.StockMovement) error {
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeRepo) DeleteMovement(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	for i, m := range r.movements {
		if m.ID == id {
			r.movements = append(r.movements[:i], r.movements[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *fakeRepo) withNames(m *model.StockMovement) model.MovementWithNames {
	return model.MovementWithNames{StockMovement: *m}
}

func (r *fakeRepo) ListMovements(_ context.Context, f *dto.MovementFilters) ([]model.MovementWithNames, int, error) {
	var out []model.MovementWithNames
	for _, m := range r.movements {
		if f.OwnerID != "" && m.OwnerID != f.OwnerID {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.InventoryID != "" && m.InventoryID != f.InventoryID {
			continue
		}
		if f.MovementType != "" && string(m.Type) != f.MovementType {
			continue
		}
		out = append(out, r.withNames(m))
	}
	return out, len(out), nil
}

func (r *fakeRepo) MovementsForInventory(_ context.Context, inventoryID string) ([]model.MovementWithNames, error) {
	var out []model.MovementWithNames
	for _, m := range r.movements {
		if m.InventoryID == inventoryID {
			out = append(out, r.withNames(m))
		}
	}
	return out, nil
}

func (r *fakeRepo) LatestMovementsForProduct(_ context.Context, ownerID, productID string, limit int) ([]model.MovementWithNames, error) {
	var out []model.MovementWithNames
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.movements[i]
		if m.ProductID != productID {
			continue
		}
		if ownerID != "" && m.OwnerID != ownerID {
			continue
		}
		out = append(out, r.withNames(m))
	}
	return out, nil
}

func (r *fakeRepo) TotalForProduct(_ context.Context, ownerID, productID string) (int64, error) {
	var total int64
	for _, rec := range r.records {
		if rec.ProductID != productID {
			continue
		}
		if ownerID != "" && rec.OwnerID != ownerID {
			continue
		}
		total += rec.Quantity
	}
	return total, nil
}

func (r *fakeRepo) StockValue(_ context.Context, _ string) (float64, error) {
	// Valuation joins product prices; not modelled by the in-memory fake.
	return 0, nil
}

func (r *fakeRepo) StockForSKU(_ context.Context, productID, sku string, simple bool) (int64, error) {
	var total int64
	if simple {
		for _, rec := range r.records {
			if rec.ProductID == productID {
				total += rec.Quantity
			}
		}
		return total, nil
	}
	for id, rec := range r.records {
		if rec.ProductID != productID {
			continue
		}
		total += r.variations[id][sku]
	}
	return total, nil
}

// movementsOfType filters the ledger for assertions.
func (r *fakeRepo) movementsOfType(t model.MovementType) []*model.StockMovement {
	var out []*model.StockMovement
	for _, m := range r.movements {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

type fakeProducts struct {
	products map[string]*model.Product
}

func (f *fakeProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProducts) HasVariantSKU(_ context.Context, productID, sku string) (bool, error) {
	p, ok := f.products[productID]
	if !ok {
		return false, nil
	}
	for _, v := range p.Variants {
		if v.SKU == sku {
			return true, nil
		}
	}
	return false, nil
}

type fakeLocations struct {
	locations map[string]*model.Location
}

func (f *fakeLocations) FindByID(_ context.Context, id string) (*model.Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return nil, nil
	}
	cp := *loc
	return &cp, nil
}

func (f *fakeLocations) Create(_ context.Context, loc *model.Location) error {
	f.locations[loc.ID] = loc
	return nil
}

func (f *fakeLocations) FindByName(_ context.Context, ownerID, name string) (*model.Location, error) {
	for _, loc := range f.locations {
		if loc.OwnerID == ownerID && loc.Name == name {
			return loc, nil
		}
	}
	return nil, nil
}

func (f *fakeLocations) FindAll(_ context.Context, _ *locdto.LocationFilters) ([]model.Location, int, error) {
	return nil, 0, nil
}

func (f *fakeLocations) Delete(_ context.Context, id string) error {
	delete(f.locations, id)
	return nil
}

func (f *fakeLocations) HasInventory(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func (f *fakeLocations) FindAllWithTotals(_ context.Context, _ string) ([]model.LocationTotals, error) {
	return nil, nil
}

var _ inventory.Repository = (*fakeRepo)(nil)
var _ location.Repository = (*fakeLocations)(nil)
