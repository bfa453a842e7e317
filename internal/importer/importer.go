package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"storefront/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// Column names understood by the importer. Unknown columns are ignored.
const (
	colID             = "id"
	colName           = "name"
	colBrand          = "brand"
	colCategory       = "category"
	colSubcategory    = "subcategory"
	colDescription    = "description"
	colPrice          = "price"
	colOriginalPrice  = "originalPrice"
	colRating         = "rating"
	colReviews        = "reviews"
	colImage          = "image"
	colImages         = "images"
	colFeatures       = "features"
	colTags           = "tags"
	colSpecifications = "specifications"
	colSeller         = "seller"
	colWarranty       = "warranty"
	colReturnPolicy   = "returnPolicy"
	colInStock        = "inStock"
	colStockQuantity  = "stockQuantity"
	colFastDelivery   = "fastDelivery"
)

// CSVImporter reads catalog CSV exports and upserts products.
//
// A row with a name starts a product. Rows without a name that only carry
// an image URL are continuation rows adding gallery images to the product
// above them. List columns use ';' as separator and specifications are
// written as "key=value;key=value".
type CSVImporter struct {
	reader *csv.Reader
	writer ProductWriter
	logger *log.Logger
}

func NewCSVImporter(r io.Reader, w ProductWriter, logger *log.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // continuation rows may be short
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &CSVImporter{
		reader: csvr,
		writer: w,
		logger: logger,
	}
}

type csvRow struct {
	line    int
	product domain.Product
}

// Run parses CSV rows and upserts one product per leading row.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index[colName]; !ok {
		return 0, fmt.Errorf("missing %q column", colName)
	}

	var (
		current  *csvRow
		imported int
	)

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		if pick(record, index, colName) == "" {
			// Continuation rows (images) belong to the current product.
			if img := firstNonEmpty(pick(record, index, colImages), pick(record, index, colImage)); img != "" && current != nil {
				current.product.Images = append(current.product.Images, splitList(img)...)
			}
			continue
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if current != nil {
			if err := i.save(ctx, current); err != nil {
				return imported, err
			}
			imported++
		}
		current = row
	}

	if current != nil {
		if err := i.save(ctx, current); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	p := row.product
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	saved, err := i.writer.Upsert(ctx, p)
	if err != nil {
		return fmt.Errorf("line %d: upsert product %q: %w", row.line, p.Name, err)
	}
	i.logger.Printf("importer: upserted product id=%s name=%q", saved.ID, saved.Name)
	return nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	p := domain.Product{
		ID:           pick(record, index, colID),
		Name:         pick(record, index, colName),
		Brand:        pick(record, index, colBrand),
		Category:     domain.Category(pick(record, index, colCategory)),
		Subcategory:  pick(record, index, colSubcategory),
		Description:  pick(record, index, colDescription),
		Image:        pick(record, index, colImage),
		Images:       splitList(pick(record, index, colImages)),
		Features:     splitList(pick(record, index, colFeatures)),
		Tags:         splitList(pick(record, index, colTags)),
		Seller:       pick(record, index, colSeller),
		Warranty:     pick(record, index, colWarranty),
		ReturnPolicy: pick(record, index, colReturnPolicy),
		InStock:      true,
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return nil, fmt.Errorf("line %d: invalid id %q", line, p.ID)
		}
	}

	var err error
	if p.Price, err = parseDecimal(pick(record, index, colPrice)); err != nil {
		return nil, fmt.Errorf("line %d: price: %w", line, err)
	}
	if p.OriginalPrice, err = parseDecimal(pick(record, index, colOriginalPrice)); err != nil {
		return nil, fmt.Errorf("line %d: originalPrice: %w", line, err)
	}
	if p.OriginalPrice.IsZero() {
		p.OriginalPrice = p.Price
	}
	if raw := pick(record, index, colRating); raw != "" {
		if p.Rating, err = strconv.ParseFloat(raw, 64); err != nil {
			return nil, fmt.Errorf("line %d: rating: %w", line, err)
		}
	}
	if p.Reviews, err = parseInt(pick(record, index, colReviews)); err != nil {
		return nil, fmt.Errorf("line %d: reviews: %w", line, err)
	}
	if p.StockQuantity, err = parseInt(pick(record, index, colStockQuantity)); err != nil {
		return nil, fmt.Errorf("line %d: stockQuantity: %w", line, err)
	}
	if raw := pick(record, index, colInStock); raw != "" {
		if p.InStock, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("line %d: inStock: %w", line, err)
		}
	}
	if raw := pick(record, index, colFastDelivery); raw != "" {
		if p.FastDelivery, err = strconv.ParseBool(raw); err != nil {
			return nil, fmt.Errorf("line %d: fastDelivery: %w", line, err)
		}
	}
	if p.Specifications, err = parseSpecs(pick(record, index, colSpecifications)); err != nil {
		return nil, fmt.Errorf("line %d: specifications: %w", line, err)
	}

	return &csvRow{line: line, product: p}, nil
}

func parseDecimal(raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(raw)
}

func parseInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}

func parseSpecs(raw string) (map[string]string, error) {
	if raw == "" {
		return nil, nil
	}
	specs := map[string]string{}
	for _, pair := range splitList(raw) {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("malformed pair %q", pair)
		}
		specs[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return specs, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
