package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Product is a line item owned by exactly one manufacturer.  Products have
// no table of their own: the owning manufacturer row stores the whole
// ordered array as a JSON document, so a product never exists detached
// from its parent.
type Product struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	TotalPrice float64 `json:"totalPrice"`
	BillPrice  float64 `json:"billPrice"`
	Foc        bool    `json:"foc"`
	Plan       float64 `json:"plan"`
	Fact       float64 `json:"fact"`
}

// ProductUpdate carries a partial product mutation.  Nil fields are left
// untouched on the stored product.
type ProductUpdate struct {
	Name       *string  `json:"name"`
	TotalPrice *float64 `json:"totalPrice"`
	BillPrice  *float64 `json:"billPrice"`
	Foc        *bool    `json:"foc"`
	Plan       *float64 `json:"plan"`
	Fact       *float64 `json:"fact"`
}

// Manufacturer mirrors one row of the 'manufacturers' table.  The row is
// treated as a single document: every product mutation reads it, rewrites
// the products array in memory and writes the array back in one UPDATE
// guarded by the version column.
type Manufacturer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Buyer     string    `json:"buyer"`
	Currency  string    `json:"currency"`
	Products  []Product `json:"products"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ManufacturerRepo struct{ DB *sql.DB }

func NewManufacturerRepo(db *sql.DB) *ManufacturerRepo { return &ManufacturerRepo{DB: db} }

const manufacturerCols = "id,name,buyer,currency,products,version,created_at,updated_at"

func scanManufacturer(row interface{ Scan(...any) error }) (Manufacturer, error) {
	var m Manufacturer
	var products []byte
	err := row.Scan(&m.ID, &m.Name, &m.Buyer, &m.Currency, &products,
		&m.Version, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return Manufacturer{}, err
	}
	if err := json.Unmarshal(products, &m.Products); err != nil {
		return Manufacturer{}, err
	}
	if m.Products == nil {
		m.Products = []Product{}
	}
	return m, nil
}

// Create inserts a manufacturer with an empty product list and fresh
// timestamps.  The generated id is written back into m.
func (r *ManufacturerRepo) Create(ctx context.Context, m *Manufacturer) error {
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.Version = 1
	m.CreatedAt = now
	m.UpdatedAt = now
	if m.Products == nil {
		m.Products = []Product{}
	}
	products, err := json.Marshal(m.Products)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO manufacturers (id, name, buyer, currency, products, version, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?)",
		m.ID, m.Name, m.Buyer, m.Currency, products, m.Version, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isDuplicate(err) {
			return ErrManufacturerExists
		}
		return err
	}
	return nil
}

// likeEscaper neutralizes the LIKE metacharacters so a filter matches them
// literally instead of as wildcards.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// List returns manufacturers, optionally filtered by a case-insensitive
// substring match on the name.  The utf8mb4 collation makes LIKE
// case-insensitive, matching the /i regex of the original API.
func (r *ManufacturerRepo) List(ctx context.Context, nameFilter string) ([]Manufacturer, error) {
	query := "SELECT " + manufacturerCols + " FROM manufacturers"
	args := []any{}
	if nameFilter != "" {
		query += " WHERE name LIKE ?"
		args = append(args, "%"+likeEscaper.Replace(nameFilter)+"%")
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Manufacturer{}
	for rows.Next() {
		m, err := scanManufacturer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetByID fetches one manufacturer with its full product list.
func (r *ManufacturerRepo) GetByID(ctx context.Context, id string) (Manufacturer, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+manufacturerCols+" FROM manufacturers WHERE id=? LIMIT 1", id)
	m, err := scanManufacturer(row)
	if err == sql.ErrNoRows {
		return Manufacturer{}, ErrManufacturerNotFound
	}
	return m, err
}

// Update persists the scalar fields of m with a conditional write keyed on
// the version m was read at.  A lost race surfaces as ErrVersionConflict
// instead of silently overwriting the concurrent change.
func (r *ManufacturerRepo) Update(ctx context.Context, m *Manufacturer) error {
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE manufacturers SET name=?, buyer=?, currency=?, version=version+1, updated_at=? WHERE id=? AND version=?",
		m.Name, m.Buyer, m.Currency, now, m.ID, m.Version)
	if err != nil {
		if isDuplicate(err) {
			return ErrManufacturerExists
		}
		return err
	}
	if err := r.checkAffected(ctx, res, m.ID); err != nil {
		return err
	}
	m.Version++
	m.UpdatedAt = now
	return nil
}

// Delete removes a manufacturer and, with it, every product it owns.
func (r *ManufacturerRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM manufacturers WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrManufacturerNotFound
	}
	return nil
}

// AddProduct appends a product to the end of the manufacturer's list,
// assigns it a fresh id and writes the whole list back.
func (r *ManufacturerRepo) AddProduct(ctx context.Context, manufacturerID string, p Product) (Product, error) {
	m, err := r.GetByID(ctx, manufacturerID)
	if err != nil {
		return Product{}, err
	}
	p.ID = uuid.NewString()
	m.Products = append(m.Products, p)
	if err := r.saveProducts(ctx, &m); err != nil {
		return Product{}, err
	}
	return p, nil
}

// UpdateProduct merges the provided fields onto the matched product and
// persists the parent document.
func (r *ManufacturerRepo) UpdateProduct(ctx context.Context, manufacturerID, productID string, upd ProductUpdate) (Product, error) {
	m, err := r.GetByID(ctx, manufacturerID)
	if err != nil {
		return Product{}, err
	}
	idx := -1
	for i := range m.Products {
		if m.Products[i].ID == productID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Product{}, ErrProductNotFound
	}
	p := &m.Products[idx]
	if upd.Name != nil {
		p.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.TotalPrice != nil {
		p.TotalPrice = *upd.TotalPrice
	}
	if upd.BillPrice != nil {
		p.BillPrice = *upd.BillPrice
	}
	if upd.Foc != nil {
		p.Foc = *upd.Foc
	}
	if upd.Plan != nil {
		p.Plan = *upd.Plan
	}
	if upd.Fact != nil {
		p.Fact = *upd.Fact
	}
	if err := r.saveProducts(ctx, &m); err != nil {
		return Product{}, err
	}
	return m.Products[idx], nil
}

// DeleteProduct removes a product by id from the manufacturer's list.  A
// no-op removal (unknown product id) is detected by comparing the list
// length before and after and reported as ErrProductNotFound without a
// write.
func (r *ManufacturerRepo) DeleteProduct(ctx context.Context, manufacturerID, productID string) error {
	m, err := r.GetByID(ctx, manufacturerID)
	if err != nil {
		return err
	}
	kept := m.Products[:0:0]
	for _, p := range m.Products {
		if p.ID != productID {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(m.Products) {
		return ErrProductNotFound
	}
	m.Products = kept
	return r.saveProducts(ctx, &m)
}

// saveProducts writes the manufacturer's product array back as one unit,
// conditional on the version the document was read at.
func (r *ManufacturerRepo) saveProducts(ctx context.Context, m *Manufacturer) error {
	products, err := json.Marshal(m.Products)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	res, err := r.DB.ExecContext(ctx,
		"UPDATE manufacturers SET products=?, version=version+1, updated_at=? WHERE id=? AND version=?",
		products, now, m.ID, m.Version)
	if err != nil {
		return err
	}
	if err := r.checkAffected(ctx, res, m.ID); err != nil {
		return err
	}
	m.Version++
	m.UpdatedAt = now
	return nil
}

// checkAffected distinguishes a vanished row from a version conflict after
// a conditional UPDATE touched nothing.
func (r *ManufacturerRepo) checkAffected(ctx context.Context, res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM manufacturers WHERE id=? LIMIT 1", id).Scan(&exists)
	if err == sql.ErrNoRows {
		return ErrManufacturerNotFound
	}
	if err != nil {
		return err
	}
	return ErrVersionConflict
}

// FilterProductsByName returns the products whose name contains the given
// substring, compared case-insensitively.  An empty filter returns the
// list unchanged.  The filter runs in memory over the already-loaded
// document.
func FilterProductsByName(products []Product, nameFilter string) []Product {
	if nameFilter == "" {
		return products
	}
	needle := strings.ToLower(nameFilter)
	out := []Product{}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
