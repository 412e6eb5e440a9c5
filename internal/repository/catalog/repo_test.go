package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kailas-cloud/marketsearch/internal/domain/product"
)

var schema = []string{`
	CREATE TABLE categories (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		parent_id INTEGER
	)`, `
	CREATE TABLE productsnew (
		id INTEGER PRIMARY KEY,
		name TEXT,
		brand TEXT,
		model TEXT,
		condition TEXT,
		price REAL,
		category_id INTEGER,
		subcategory_id INTEGER,
		sales_area TEXT,
		year INTEGER,
		supplier_id INTEGER,
		description TEXT,
		created_at TIMESTAMP,
		image_url TEXT
	)`,
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:catalog_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := Open(&Config{Driver: DriverSQLite, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seed(t *testing.T, db *gorm.DB) {
	t.Helper()
	stmts := []string{
		`INSERT INTO categories (id, name) VALUES (1, 'Imaging'), (2, 'Ultrasound')`,
		`INSERT INTO productsnew (id, name, brand, model, condition, price, category_id, subcategory_id,
			sales_area, year, supplier_id, description, image_url)
		 VALUES (2, 'Ultrasound Scanner', 'Acme', 'U-1', 'used', 300, 1, 2,
			'Texas', 2019, 7, 'Portable', 'img/2.png')`,
		`INSERT INTO productsnew (id, name, price, sales_area, category_id)
		 VALUES (1, 'MRI Coil', 1200.5, 'Ohio', 99)`,
		`INSERT INTO productsnew (id, name, sales_area) VALUES (3, 'Gel', 'Texas')`,
	}
	for _, s := range stmts {
		require.NoError(t, db.Exec(s).Error)
	}
}

func TestFetchAll(t *testing.T) {
	db := openTestDB(t)
	seed(t, db)

	rows, err := New(db).FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	// Ordered by id.
	assert.Equal(t, int64(1), rows[0].ID)
	assert.Equal(t, int64(2), rows[1].ID)
	assert.Equal(t, int64(3), rows[2].ID)

	scanner := rows[1]
	assert.Equal(t, "Ultrasound Scanner", scanner.Name)
	assert.Equal(t, "Acme", scanner.Brand)
	assert.Equal(t, "used", scanner.Condition)
	assert.Equal(t, "Imaging", scanner.CategoryName)
	assert.Equal(t, "Ultrasound", scanner.SubcategoryName)
	assert.Equal(t, "Texas", scanner.SalesArea)
	assert.Equal(t, 2019, scanner.Year)
	assert.Equal(t, int64(7), scanner.SupplierID)
	assert.Equal(t, "img/2.png", scanner.ImageURL)
	require.NotNil(t, scanner.Price)
	assert.InDelta(t, 300.0, *scanner.Price, 1e-9)

	// Unknown category resolves to empty names.
	coil := rows[0]
	assert.Empty(t, coil.CategoryName)
	assert.Empty(t, coil.SubcategoryName)
	require.NotNil(t, coil.Price)
	assert.InDelta(t, 1200.5, *coil.Price, 1e-9)

	// NULL price stays nil so the row can be rejected at build time.
	assert.Nil(t, rows[2].Price)
	assert.Empty(t, rows[2].Condition)
}

func TestFetchAll_Empty(t *testing.T) {
	db := openTestDB(t)

	rows, err := New(db).FetchAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestFetchAll_MissingTable(t *testing.T) {
	dsn := fmt.Sprintf("file:catalog_missing_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := Open(&Config{Driver: DriverSQLite, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)

	_, err = New(db).FetchAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch catalog")
}

func TestPingAndClose(t *testing.T) {
	db := openTestDB(t)
	repo := New(db)

	require.NoError(t, repo.Ping(context.Background()))
	require.NoError(t, repo.Close())
	assert.Error(t, repo.Ping(context.Background()))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&Config{Driver: "oracle"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported catalog driver")
}

func TestStatic(t *testing.T) {
	price := 10.0
	s := NewStatic([]product.Row{{ID: 1, Name: "Probe", SalesArea: "Texas", Price: &price}})

	rows, err := s.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)

	rows[0].Name = "mutated"
	again, _ := s.FetchAll(context.Background())
	assert.Equal(t, "Probe", again[0].Name)
	assert.NoError(t, s.Ping(context.Background()))
}
