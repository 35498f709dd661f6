// Package memory provides in-process storage: a YAML-backed product catalog
// with hot reload, and a key/value cart storage.
package memory

import (
	"context"
	"io"
	"os"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/go-faster/errors"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/xenking/velostore/db"
	"github.com/xenking/velostore/internal/domain/product"
	"github.com/xenking/velostore/internal/search"
)

var (
	_ product.Repository = (*Catalog)(nil)
	_ search.PageSource  = (*Catalog)(nil)
)

// CatalogFile is the YAML document layout of a catalog.
type CatalogFile struct {
	Products []ProductRecord `yaml:"products"`
	Pages    []search.Page   `yaml:"pages"`
}

// ProductRecord is the YAML layout of one product.
type ProductRecord struct {
	ID          int    `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Price       string `yaml:"price"`
	Image       string `yaml:"image"`
	Description string `yaml:"description"`
	Performance int    `yaml:"performance"`
	Specs       struct {
		Frame  string `yaml:"frame"`
		Gears  string `yaml:"gears"`
		Brakes string `yaml:"brakes"`
		Weight string `yaml:"weight"`
	} `yaml:"specs"`
	DetailImages struct {
		Frame   string `yaml:"frame"`
		Gears   string `yaml:"gears"`
		Brakes  string `yaml:"brakes"`
		Cockpit string `yaml:"cockpit"`
	} `yaml:"detail_images"`
	Featured struct {
		Enabled    bool   `yaml:"enabled"`
		Badge      string `yaml:"badge"`
		Reason     string `yaml:"reason"`
		SalesCount int    `yaml:"sales_count"`
	} `yaml:"featured"`
}

// Product converts the record to a validated domain product.
func (r ProductRecord) Product() (product.Product, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil {
		return product.Product{}, errors.Wrapf(err, "product %d: price %q", r.ID, r.Price)
	}
	p := product.Product{
		ID:          r.ID,
		Name:        r.Name,
		Category:    product.Category(r.Category),
		Price:       price,
		Description: r.Description,
		Image:       r.Image,
		Performance: r.Performance,
		Specs: product.Specs{
			Frame:  r.Specs.Frame,
			Gears:  r.Specs.Gears,
			Brakes: r.Specs.Brakes,
			Weight: r.Specs.Weight,
		},
		DetailImages: product.DetailImages{
			Frame:   r.DetailImages.Frame,
			Gears:   r.DetailImages.Gears,
			Brakes:  r.DetailImages.Brakes,
			Cockpit: r.DetailImages.Cockpit,
		},
		Featured: product.Featured{
			Enabled:    r.Featured.Enabled,
			Badge:      r.Featured.Badge,
			Reason:     r.Featured.Reason,
			SalesCount: r.Featured.SalesCount,
		},
	}
	return p, p.Validate()
}

// Snapshot is an immutable, validated catalog.
type Snapshot struct {
	Products []product.Product
	Pages    []search.Page
	byID     map[int]int
}

// ParseCatalog decodes and validates a YAML catalog. Product ids must be
// unique.
func ParseCatalog(data []byte) (*Snapshot, error) {
	var f CatalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}

	s := &Snapshot{
		Products: make([]product.Product, 0, len(f.Products)),
		Pages:    f.Pages,
		byID:     make(map[int]int, len(f.Products)),
	}
	for _, rec := range f.Products {
		p, err := rec.Product()
		if err != nil {
			return nil, err
		}
		if _, dup := s.byID[p.ID]; dup {
			return nil, errors.Errorf("product %d: duplicate id", p.ID)
		}
		s.byID[p.ID] = len(s.Products)
		s.Products = append(s.Products, p)
	}
	for _, pg := range s.Pages {
		if pg.ID == "" || pg.Title == "" {
			return nil, errors.Errorf("page %q: id and title required", pg.ID)
		}
	}
	return s, nil
}

// ReadCatalogFile reads a catalog file, transparently decompressing paths
// ending in ".gz".
func ReadCatalogFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open catalog")
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		zr, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrap(err, "open gzip catalog")
		}
		defer func() { _ = zr.Close() }()
		r = zr
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read catalog")
	}
	return data, nil
}

// Catalog serves products and static pages from an atomically swapped
// snapshot.
type Catalog struct {
	snap atomic.Pointer[Snapshot]
}

// NewCatalog creates a Catalog from YAML data.
func NewCatalog(data []byte) (*Catalog, error) {
	c := &Catalog{}
	if err := c.Reload(data); err != nil {
		return nil, err
	}
	return c, nil
}

// DefaultCatalog creates a Catalog from the embedded seed.
func DefaultCatalog() (*Catalog, error) {
	return NewCatalog(db.Catalog)
}

// OpenCatalog creates a Catalog from a file.
func OpenCatalog(path string) (*Catalog, error) {
	data, err := ReadCatalogFile(path)
	if err != nil {
		return nil, err
	}
	return NewCatalog(data)
}

// Reload replaces the catalog with data. On error the current snapshot is
// kept.
func (c *Catalog) Reload(data []byte) error {
	s, err := ParseCatalog(data)
	if err != nil {
		return err
	}
	c.snap.Store(s)
	return nil
}

// Snapshot returns the current snapshot.
func (c *Catalog) Snapshot() *Snapshot {
	return c.snap.Load()
}

// List implements product.Repository. Products are returned in file order.
func (c *Catalog) List(_ context.Context) ([]product.Product, error) {
	return slices.Clone(c.snap.Load().Products), nil
}

// GetByID implements product.Repository.
func (c *Catalog) GetByID(_ context.Context, id int) (*product.Product, error) {
	s := c.snap.Load()
	i, ok := s.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	p := s.Products[i]
	return &p, nil
}

// Pages implements search.PageSource.
func (c *Catalog) Pages(_ context.Context) ([]search.Page, error) {
	return slices.Clone(c.snap.Load().Pages), nil
}

// Ping reports whether a snapshot is loaded.
func (c *Catalog) Ping(_ context.Context) error {
	if c.snap.Load() == nil {
		return errors.New("catalog not loaded")
	}
	return nil
}
