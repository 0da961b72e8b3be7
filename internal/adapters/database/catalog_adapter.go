package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/entities"
	"github.com/zatekoja/clinicdesk/backend/internal/domain/repositories"
	"github.com/zatekoja/clinicdesk/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/zatekoja/clinicdesk/backend/pkg/errors"
)

const defaultCatalogLimit = 50

var catalogColumns = columns(
	"id", "domain", "name", "unit_price", "tax_rate_percent", "hsn_code",
	"stock", "form_f_needed", "is_active", "created_at", "updated_at",
)

// CatalogAdapter implements CatalogRepository
type CatalogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

var _ repositories.CatalogRepository = (*CatalogAdapter)(nil)

// NewCatalogAdapter creates a new catalog adapter
func NewCatalogAdapter(client *postgres.Client) *CatalogAdapter {
	return &CatalogAdapter{
		client: client,
		db:     client.Goqu(),
	}
}

// Create inserts a catalog item
func (a *CatalogAdapter) Create(ctx context.Context, item *entities.CatalogItem) error {
	record := goqu.Record{
		"id":               item.ID,
		"domain":           item.Domain,
		"name":             item.Name,
		"unit_price":       item.UnitPrice,
		"tax_rate_percent": item.TaxRatePercent,
		"hsn_code":         item.HSNCode,
		"stock":            item.Stock,
		"form_f_needed":    item.FormFNeeded,
		"is_active":        item.IsActive,
		"created_at":       item.CreatedAt,
		"updated_at":       item.UpdatedAt,
	}

	query, args, err := a.db.Insert("catalog_items").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return queryError("failed to create catalog item", err)
	}
	return nil
}

// GetByID retrieves a catalog item by ID
func (a *CatalogAdapter) GetByID(ctx context.Context, id string) (*entities.CatalogItem, error) {
	query, args, err := a.db.Select(catalogColumns...).From("catalog_items").
		Where(goqu.Ex{"id": id}).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	item, err := scanCatalogItem(a.client.DB().QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, scanError(err, fmt.Sprintf("catalog item %s not found", id), "failed to load catalog item")
	}
	return item, nil
}

// Search finds items of a domain whose name contains the query, ignoring case
func (a *CatalogAdapter) Search(ctx context.Context, params repositories.CatalogSearchParams) ([]*entities.CatalogItem, error) {
	ds := a.db.Select(catalogColumns...).From("catalog_items").
		Where(goqu.Ex{"domain": params.Domain})

	if q := strings.TrimSpace(params.Query); q != "" {
		ds = ds.Where(goqu.I("name").ILike("%" + escapeLike(q) + "%"))
	}
	if params.ActiveOnly {
		ds = ds.Where(goqu.Ex{"is_active": true})
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultCatalogLimit
	}
	ds = ds.Order(goqu.I("name").Asc()).Limit(uint(limit))
	if params.Offset > 0 {
		ds = ds.Offset(uint(params.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, queryError("failed to search catalog", err)
	}
	defer rows.Close()

	items := []*entities.CatalogItem{}
	for rows.Next() {
		item, err := scanCatalogItem(rows)
		if err != nil {
			return nil, queryError("failed to scan catalog item", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("failed to search catalog", err)
	}
	return items, nil
}

func scanCatalogItem(row rowScanner) (*entities.CatalogItem, error) {
	item := &entities.CatalogItem{}
	err := row.Scan(
		&item.ID, &item.Domain, &item.Name, &item.UnitPrice, &item.TaxRatePercent, &item.HSNCode,
		&item.Stock, &item.FormFNeeded, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
