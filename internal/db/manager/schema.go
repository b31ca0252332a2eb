package manager

import (
	"fmt"
	"strings"

	"github.com/vvka-141/shopload/pkg/shopload"
)

const (
	tableCustomers = "customers"
	tableProducts  = "products"
	tableOrders    = "orders"
)

// dropOrder drops dependents before the tables they reference.
var dropOrder = []string{tableOrders, tableProducts, tableCustomers}

type tableDef struct {
	name    string
	key     string
	columns []string
}

var (
	customersTable = tableDef{name: tableCustomers, key: "customer_id", columns: []string{"customer_id", "name", "email"}}
	productsTable  = tableDef{name: tableProducts, key: "product_id", columns: []string{"product_id", "product_name", "price"}}
	ordersTable    = tableDef{name: tableOrders, key: "order_id", columns: []string{"order_id", "date_time", "customer_id", "product_id"}}
)

type ddlStatement struct {
	table string
	sql   string
}

// statements holds every SQL text the manager issues for one dialect.
type statements struct {
	create []ddlStatement

	upsertCustomer string
	upsertProduct  string
	upsertOrder    string
}

func statementsFor(d shopload.Dialect) (*statements, error) {
	var timestampType string
	switch d {
	case shopload.DialectMySQL:
		timestampType = "DATETIME"
	case shopload.DialectPostgres, shopload.DialectSQLite:
		timestampType = "TIMESTAMP"
	default:
		return nil, fmt.Errorf("%q: %w", d, shopload.ErrUnsupportedDialect)
	}

	return &statements{
		create: []ddlStatement{
			{tableCustomers, `CREATE TABLE customers (
    customer_id INT PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    email VARCHAR(255) NOT NULL
)`},
			{tableProducts, `CREATE TABLE products (
    product_id INT PRIMARY KEY,
    product_name VARCHAR(255) NOT NULL,
    price DECIMAL(10, 5) NOT NULL
)`},
			{tableOrders, fmt.Sprintf(`CREATE TABLE orders (
    order_id INT PRIMARY KEY,
    date_time %s NOT NULL,
    customer_id INT,
    product_id INT,
    FOREIGN KEY (customer_id) REFERENCES customers(customer_id),
    FOREIGN KEY (product_id) REFERENCES products(product_id)
)`, timestampType)},
		},
		upsertCustomer: upsertSQL(d, customersTable),
		upsertProduct:  upsertSQL(d, productsTable),
		upsertOrder:    upsertSQL(d, ordersTable),
	}, nil
}

func dropTableSQL(table string) string {
	return "DROP TABLE IF EXISTS " + table
}

func sampleSQL(t tableDef, limit int) string {
	return fmt.Sprintf("SELECT %s FROM %s ORDER BY %s LIMIT %d", strings.Join(t.columns, ", "), t.name, t.key, limit)
}

// upsertSQL builds an insert that updates every non-key column when the key exists.
func upsertSQL(d shopload.Dialect, t tableDef) string {
	placeholders := make([]string, len(t.columns))
	for i := range t.columns {
		if d == shopload.DialectPostgres {
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		} else {
			placeholders[i] = "?"
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES (%s)", t.name, strings.Join(t.columns, ", "), strings.Join(placeholders, ", "))

	var updates []string
	for _, col := range t.columns {
		if col == t.key {
			continue
		}
		switch d {
		case shopload.DialectMySQL:
			updates = append(updates, fmt.Sprintf("%s = new.%s", col, col))
		case shopload.DialectPostgres:
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
		default:
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", col, col))
		}
	}

	if d == shopload.DialectMySQL {
		fmt.Fprintf(&sb, " AS new ON DUPLICATE KEY UPDATE %s", strings.Join(updates, ", "))
	} else {
		fmt.Fprintf(&sb, " ON CONFLICT (%s) DO UPDATE SET %s", t.key, strings.Join(updates, ", "))
	}

	return sb.String()
}
