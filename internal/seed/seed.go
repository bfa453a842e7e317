package seed

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"log"
	"os"

	"storefront/internal/domain"
	usersvc "storefront/internal/service/user"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Catalog is the seed document: the demo products plus the admin profile.
type Catalog struct {
	Admin    AdminProfile  `yaml:"admin"`
	Products []ProductSeed `yaml:"products"`
}

type AdminProfile struct {
	Name    string      `yaml:"name"`
	Phone   string      `yaml:"phone"`
	Address AddressSeed `yaml:"address"`
}

type AddressSeed struct {
	Street  string `yaml:"street"`
	City    string `yaml:"city"`
	State   string `yaml:"state"`
	ZipCode string `yaml:"zipCode"`
	Country string `yaml:"country"`
}

func (a AddressSeed) address() domain.Address {
	return domain.Address{Street: a.Street, City: a.City, State: a.State, ZipCode: a.ZipCode, Country: a.Country}
}

type ProductSeed struct {
	Name           string            `yaml:"name"`
	Brand          string            `yaml:"brand"`
	Category       string            `yaml:"category"`
	Subcategory    string            `yaml:"subcategory"`
	Description    string            `yaml:"description"`
	Price          decimal.Decimal   `yaml:"price"`
	OriginalPrice  decimal.Decimal   `yaml:"originalPrice"`
	Rating         float64           `yaml:"rating"`
	Reviews        int               `yaml:"reviews"`
	Image          string            `yaml:"image"`
	Images         []string          `yaml:"images"`
	Features       []string          `yaml:"features"`
	Specifications map[string]string `yaml:"specifications"`
	Tags           []string          `yaml:"tags"`
	Seller         string            `yaml:"seller"`
	Warranty       string            `yaml:"warranty"`
	ReturnPolicy   string            `yaml:"returnPolicy"`
	InStock        bool              `yaml:"inStock"`
	StockQuantity  int               `yaml:"stockQuantity"`
	FastDelivery   bool              `yaml:"fastDelivery"`
}

func (p ProductSeed) product() domain.Product {
	return domain.Product{
		Name:           p.Name,
		Brand:          p.Brand,
		Category:       domain.Category(p.Category),
		Subcategory:    p.Subcategory,
		Description:    p.Description,
		Price:          p.Price,
		OriginalPrice:  p.OriginalPrice,
		Rating:         p.Rating,
		Reviews:        p.Reviews,
		Image:          p.Image,
		Images:         p.Images,
		Features:       p.Features,
		Specifications: p.Specifications,
		Tags:           p.Tags,
		Seller:         p.Seller,
		Warranty:       p.Warranty,
		ReturnPolicy:   p.ReturnPolicy,
		InStock:        p.InStock,
		StockQuantity:  p.StockQuantity,
		FastDelivery:   p.FastDelivery,
	}
}

// LoadCatalog reads the catalog at path, or the built-in one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		if data, err = os.ReadFile(path); err != nil {
			return nil, fmt.Errorf("read catalog: %w", err)
		}
	}
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Products) == 0 {
		return nil, fmt.Errorf("catalog %q has no products", path)
	}
	return &c, nil
}

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
}

type AdminWriter interface {
	EnsureAdmin(ctx context.Context, email, password string) (*domain.User, error)
	UpdateProfile(ctx context.Context, id string, in usersvc.ProfileInput) (*domain.User, error)
}

// Result summarizes a seed run.
type Result struct {
	Products int
	AdminID  string
}

type Seeder struct {
	products ProductWriter
	admins   AdminWriter
	logger   *log.Logger
}

func New(products ProductWriter, admins AdminWriter, logger *log.Logger) *Seeder {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Seeder{products: products, admins: admins, logger: logger}
}

// Apply upserts every catalog product and ensures the admin account. It is
// idempotent: products are keyed by brand and name.
func (s *Seeder) Apply(ctx context.Context, c *Catalog, adminEmail, adminPassword string) (Result, error) {
	var res Result
	for _, ps := range c.Products {
		p, err := s.products.Upsert(ctx, ps.product())
		if err != nil {
			return res, fmt.Errorf("upsert product %q: %w", ps.Name, err)
		}
		s.logger.Printf("seed: product id=%s name=%q", p.ID, p.Name)
		res.Products++
	}

	admin, err := s.admins.EnsureAdmin(ctx, adminEmail, adminPassword)
	if err != nil {
		return res, fmt.Errorf("ensure admin: %w", err)
	}
	res.AdminID = admin.ID

	// Fill the profile only once so operator edits survive reseeding.
	if admin.Phone == "" && c.Admin.Phone != "" {
		addr := c.Admin.Address.address()
		if _, err := s.admins.UpdateProfile(ctx, admin.ID, usersvc.ProfileInput{
			Name:    c.Admin.Name,
			Phone:   c.Admin.Phone,
			Address: &addr,
		}); err != nil {
			return res, fmt.Errorf("admin profile: %w", err)
		}
	}
	s.logger.Printf("seed: admin id=%s email=%s", admin.ID, admin.Email)
	return res, nil
}
