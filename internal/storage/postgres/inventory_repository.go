package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/ultimate-stay/internal/domain"
)

type InventoryRepository struct {
	db
}

func NewInventoryRepository(pool *pgxpool.Pool) *InventoryRepository {
	return &InventoryRepository{db{pool: pool}}
}

const propertyColumns = `id, destination_id, name, property_type, star_rating, rating, popularity, amenities`

const unitColumns = `id, property_id, name, base_price, weekend_multiplier, peak_season_multiplier, total_capacity, max_occupancy, amenities`

func (r *InventoryRepository) CreateProperty(ctx context.Context, p domain.Property) error {
	const stmt = `
INSERT INTO properties (id, destination_id, name, property_type, star_rating, rating, popularity, amenities)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.exec(ctx, stmt, p.ID, p.DestinationID, p.Name, string(p.Type), p.StarRating, p.Rating, p.Popularity, p.Amenities.Names())
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		return wrap("create property", err)
	}
	return nil
}

func (r *InventoryRepository) ListProperties(ctx context.Context) ([]domain.Property, error) {
	rows, err := r.query(ctx, `SELECT `+propertyColumns+` FROM properties ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, wrap("list properties", err)
	}
	defer rows.Close()

	properties := []domain.Property{}
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	if rows.Err() != nil {
		return nil, wrap("iterate properties", rows.Err())
	}
	return properties, nil
}

func (r *InventoryRepository) GetProperty(ctx context.Context, propertyID string) (domain.Property, error) {
	p, err := scanProperty(r.queryRow(ctx, `SELECT `+propertyColumns+` FROM properties WHERE id = $1`, propertyID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.Property{}, domain.ErrInvalidID
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, domain.ErrPropertyNotFound
		}
		return domain.Property{}, err
	}
	return p, nil
}

func (r *InventoryRepository) CreateUnit(ctx context.Context, u domain.InventoryUnit) error {
	const stmt = `
INSERT INTO inventory_units (id, property_id, name, base_price, weekend_multiplier, peak_season_multiplier, total_capacity, max_occupancy, amenities)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.exec(ctx, stmt,
		u.ID,
		u.PropertyID,
		u.Name,
		u.BasePrice,
		u.WeekendMultiplier,
		u.PeakSeasonMultiplier,
		u.TotalCapacity,
		u.MaxOccupancy,
		u.Amenities.Names(),
	)
	if err != nil {
		if isInvalidUUID(err) {
			return domain.ErrInvalidID
		}
		if isForeignKeyViolation(err) {
			return domain.ErrPropertyNotFound
		}
		return wrap("create unit", err)
	}
	return nil
}

func (r *InventoryRepository) GetUnit(ctx context.Context, unitID string) (domain.InventoryUnit, error) {
	return getUnit(ctx, r.db, unitID, false)
}

func (r *InventoryRepository) ListUnitsByProperty(ctx context.Context, propertyID string) ([]domain.InventoryUnit, error) {
	var exists bool
	if err := r.queryRow(ctx, `SELECT EXISTS (SELECT 1 FROM properties WHERE id = $1)`, propertyID).Scan(&exists); err != nil {
		if isInvalidUUID(err) {
			return nil, domain.ErrInvalidID
		}
		return nil, wrap("check property", err)
	}
	if !exists {
		return nil, domain.ErrPropertyNotFound
	}

	rows, err := r.query(ctx, `SELECT `+unitColumns+` FROM inventory_units WHERE property_id = $1 ORDER BY id ASC`, propertyID)
	if err != nil {
		return nil, wrap("list units", err)
	}
	defer rows.Close()

	units := []domain.InventoryUnit{}
	for rows.Next() {
		u, err := scanUnit(rows)
		if err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	if rows.Err() != nil {
		return nil, wrap("iterate units", rows.Err())
	}
	return units, nil
}

func (r *InventoryRepository) ListUnitsByDestination(ctx context.Context, destinationID string) ([]domain.Listing, error) {
	const query = `
SELECT u.id, u.property_id, u.name, u.base_price, u.weekend_multiplier, u.peak_season_multiplier,
       u.total_capacity, u.max_occupancy, u.amenities,
       p.id, p.destination_id, p.name, p.property_type, p.star_rating, p.rating, p.popularity, p.amenities
FROM inventory_units u
JOIN properties p ON p.id = u.property_id
WHERE p.destination_id = $1
ORDER BY u.id ASC`
	rows, err := r.query(ctx, query, destinationID)
	if err != nil {
		return nil, wrap("list units by destination", err)
	}
	defer rows.Close()

	listings := []domain.Listing{}
	for rows.Next() {
		var (
			l                        domain.Listing
			ptype                    string
			unitAmenity, propAmenity []string
		)
		err := rows.Scan(
			&l.Unit.ID, &l.Unit.PropertyID, &l.Unit.Name, &l.Unit.BasePrice, &l.Unit.WeekendMultiplier, &l.Unit.PeakSeasonMultiplier,
			&l.Unit.TotalCapacity, &l.Unit.MaxOccupancy, &unitAmenity,
			&l.Property.ID, &l.Property.DestinationID, &l.Property.Name, &ptype, &l.Property.StarRating, &l.Property.Rating,
			&l.Property.Popularity, &propAmenity,
		)
		if err != nil {
			return nil, wrap("scan listing", err)
		}
		l.Property.Type = domain.PropertyType(ptype)
		if l.Unit.Amenities, err = domain.ParseAmenitySet(unitAmenity); err != nil {
			return nil, fmt.Errorf("unit %s amenities: %w", l.Unit.ID, err)
		}
		if l.Property.Amenities, err = domain.ParseAmenitySet(propAmenity); err != nil {
			return nil, fmt.Errorf("property %s amenities: %w", l.Property.ID, err)
		}
		listings = append(listings, l)
	}
	if rows.Err() != nil {
		return nil, wrap("iterate listings", rows.Err())
	}
	return listings, nil
}

func getUnit(ctx context.Context, d db, unitID string, forUpdate bool) (domain.InventoryUnit, error) {
	query := `SELECT ` + unitColumns + ` FROM inventory_units WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	u, err := scanUnit(d.queryRow(ctx, query, unitID))
	if err != nil {
		if isInvalidUUID(err) {
			return domain.InventoryUnit{}, domain.ErrUnknownUnit
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.InventoryUnit{}, domain.ErrUnknownUnit
		}
		return domain.InventoryUnit{}, err
	}
	return u, nil
}

func scanProperty(row pgx.Row) (domain.Property, error) {
	var (
		p         domain.Property
		ptype     string
		amenities []string
	)
	if err := row.Scan(&p.ID, &p.DestinationID, &p.Name, &ptype, &p.StarRating, &p.Rating, &p.Popularity, &amenities); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.Property{}, err
		}
		return domain.Property{}, wrap("scan property", err)
	}
	p.Type = domain.PropertyType(ptype)
	set, err := domain.ParseAmenitySet(amenities)
	if err != nil {
		return domain.Property{}, fmt.Errorf("property %s amenities: %w", p.ID, err)
	}
	p.Amenities = set
	return p, nil
}

func scanUnit(row pgx.Row) (domain.InventoryUnit, error) {
	var (
		u         domain.InventoryUnit
		amenities []string
	)
	err := row.Scan(&u.ID, &u.PropertyID, &u.Name, &u.BasePrice, &u.WeekendMultiplier, &u.PeakSeasonMultiplier,
		&u.TotalCapacity, &u.MaxOccupancy, &amenities)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidUUID(err) {
			return domain.InventoryUnit{}, err
		}
		return domain.InventoryUnit{}, wrap("scan unit", err)
	}
	set, err := domain.ParseAmenitySet(amenities)
	if err != nil {
		return domain.InventoryUnit{}, fmt.Errorf("unit %s amenities: %w", u.ID, err)
	}
	u.Amenities = set
	return u, nil
}
