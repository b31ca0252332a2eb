package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/shopspring/decimal"
	"github.com/vvka-141/shopload/internal/checksum"
	"github.com/vvka-141/shopload/internal/files/filesystem"
	"github.com/vvka-141/shopload/pkg/shopload"
)

// Required columns per input file.
var (
	customerColumns = []string{"customer_id", "name", "email"}
	productColumns  = []string{"product_id", "product_name", "price"}
	orderColumns    = []string{"order_id", "date_time", "customer_id", "product_id"}
)

// Loader reads the three input files from a data directory.
type Loader struct {
	fs     filesystem.FileSystemProvider
	logger shopload.Logger
}

// New creates a Loader reading through fsProvider.
func New(fsProvider filesystem.FileSystemProvider, logger shopload.Logger) *Loader {
	return &Loader{fs: fsProvider, logger: logger}
}

// Load reads customers, products and orders from dataDir.
func (l *Loader) Load(dataDir string) (*shopload.DataSet, error) {
	info, err := l.fs.Stat(dataDir)
	if err != nil {
		return nil, fmt.Errorf("%w: data directory %s: %w", shopload.ErrInvalidData, dataDir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", shopload.ErrInvalidData, dataDir)
	}

	data := &shopload.DataSet{Dropped: make(map[string]int)}

	customers, err := l.readTable(dataDir, shopload.CustomersFile, customerColumns)
	if err != nil {
		return nil, err
	}
	if data.Customers, err = parseCustomers(customers); err != nil {
		return nil, err
	}
	data.Dropped[shopload.CustomersFile] = customers.dropped

	products, err := l.readTable(dataDir, shopload.ProductsFile, productColumns)
	if err != nil {
		return nil, err
	}
	if data.Products, err = parseProducts(products); err != nil {
		return nil, err
	}
	data.Dropped[shopload.ProductsFile] = products.dropped

	orders, err := l.readTable(dataDir, shopload.OrdersFile, orderColumns)
	if err != nil {
		return nil, err
	}
	if data.Orders, err = parseOrders(orders); err != nil {
		return nil, err
	}
	data.Dropped[shopload.OrdersFile] = orders.dropped

	return data, nil
}

// record is one complete input row with its source line for error messages.
type record struct {
	line   int
	fields []string
}

type table struct {
	file    string
	columns []string
	index   map[string]int
	records []record
	dropped int
}

func (t *table) value(r record, column string) string {
	return r.fields[t.index[column]]
}

func (t *table) invalid(r record, column, format string, args ...any) error {
	return fmt.Errorf("%w: %s line %d, column %s: %s", shopload.ErrInvalidData, t.file, r.line, column, fmt.Sprintf(format, args...))
}

// readTable parses one CSV file, checks the required header columns and drops
// rows with an empty value in any column.
func (l *Loader) readTable(dataDir, name string, required []string) (*table, error) {
	path := filepath.Join(dataDir, name)

	rc, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot open %s: %w", shopload.ErrInvalidData, path, err)
	}
	defer rc.Close()

	digest := checksum.New()
	reader := csv.NewReader(digest.Reader(rc))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s is empty", shopload.ErrInvalidData, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", shopload.ErrInvalidData, name, err)
	}

	t := &table{file: name, index: make(map[string]int, len(header))}
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		t.columns = append(t.columns, col)
		if _, dup := t.index[col]; !dup {
			t.index[col] = i
		}
	}

	var missing []string
	for _, col := range required {
		if _, ok := t.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s is missing required column(s): %s", shopload.ErrInvalidData, name, strings.Join(missing, ", "))
	}

	l.logger.Info("%s columns: %s", name, strings.Join(t.columns, ", "))

	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", shopload.ErrInvalidData, name, err)
		}
		line, _ := reader.FieldPos(0)

		if !complete(fields, len(t.columns)) {
			t.dropped++
			continue
		}
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		t.records = append(t.records, record{line: line, fields: fields})
	}

	if t.dropped > 0 {
		l.logger.Verbose("Dropped %d incomplete row(s) from %s", t.dropped, name)
	}
	l.logger.Verbose("Read %s: %d row(s), %d bytes, sha256 %s", name, len(t.records), digest.Size(), digest.Short())

	return t, nil
}

// missingMarkers are cell values read as absent, matching the default NA
// set of common dataframe CSV readers. Matching is case-sensitive.
var missingMarkers = map[string]struct{}{
	"":         {},
	"#N/A":     {},
	"#N/A N/A": {},
	"#NA":      {},
	"-1.#IND":  {},
	"-1.#QNAN": {},
	"-NaN":     {},
	"-nan":     {},
	"1.#IND":   {},
	"1.#QNAN":  {},
	"<NA>":     {},
	"N/A":      {},
	"NA":       {},
	"NULL":     {},
	"NaN":      {},
	"None":     {},
	"n/a":      {},
	"nan":      {},
	"null":     {},
}

func isMissing(field string) bool {
	_, ok := missingMarkers[strings.TrimSpace(field)]
	return ok
}

// complete reports whether a row has a present value for every header column.
func complete(fields []string, width int) bool {
	if len(fields) < width {
		return false
	}
	for _, f := range fields {
		if isMissing(f) {
			return false
		}
	}
	return true
}

func parseCustomers(t *table) ([]shopload.Customer, error) {
	out := make([]shopload.Customer, 0, len(t.records))
	for _, r := range t.records {
		id, err := parseID(t, r, "customer_id")
		if err != nil {
			return nil, err
		}
		out = append(out, shopload.Customer{
			CustomerID: id,
			Name:       t.value(r, "name"),
			Email:      t.value(r, "email"),
		})
	}
	return out, nil
}

func parseProducts(t *table) ([]shopload.Product, error) {
	out := make([]shopload.Product, 0, len(t.records))
	for _, r := range t.records {
		id, err := parseID(t, r, "product_id")
		if err != nil {
			return nil, err
		}

		raw := t.value(r, "price")
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, t.invalid(r, "price", "%q is not a decimal number", raw)
		}
		if price.IsNegative() {
			return nil, t.invalid(r, "price", "%s is negative", raw)
		}

		out = append(out, shopload.Product{
			ProductID:   id,
			ProductName: t.value(r, "product_name"),
			Price:       price,
		})
	}
	return out, nil
}

func parseOrders(t *table) ([]shopload.Order, error) {
	out := make([]shopload.Order, 0, len(t.records))
	for _, r := range t.records {
		id, err := parseID(t, r, "order_id")
		if err != nil {
			return nil, err
		}
		customerID, err := parseID(t, r, "customer_id")
		if err != nil {
			return nil, err
		}
		productID, err := parseID(t, r, "product_id")
		if err != nil {
			return nil, err
		}
		when, err := ParseTimestamp(t.value(r, "date_time"))
		if err != nil {
			return nil, t.invalid(r, "date_time", "%v", err)
		}

		out = append(out, shopload.Order{
			OrderID:    id,
			DateTime:   when,
			CustomerID: customerID,
			ProductID:  productID,
		})
	}
	return out, nil
}

func parseID(t *table, r record, column string) (int64, error) {
	raw := t.value(r, column)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, t.invalid(r, column, "%q is not an integer", raw)
	}
	return id, nil
}

// ParseTimestamp parses s in any common layout and returns the instant in UTC.
// Values without an offset are taken as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("cannot parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
