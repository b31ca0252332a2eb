package manager

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vvka-141/shopload/internal/files/loader"
	"github.com/vvka-141/shopload/pkg/shopload"
)

const timestampLayout = "2006-01-02 15:04:05"

// The drivers hand back different Go types for the same column: int32 or
// int64 for INT, string or float64 for DECIMAL, time.Time or text for
// timestamps. The helpers below fold them into the model types.

func asInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float64:
		if val == float64(int64(val)) {
			return int64(val), nil
		}
	case string:
		return strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	case []byte:
		return strconv.ParseInt(strings.TrimSpace(string(val)), 10, 64)
	}
	return 0, fmt.Errorf("cannot read %T (%v) as integer", v, v)
}

func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []byte:
		return string(val)
	case nil:
		return ""
	default:
		return fmt.Sprint(val)
	}
}

func asDecimal(v any) (decimal.Decimal, error) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, nil
	case string:
		return decimal.NewFromString(val)
	case []byte:
		return decimal.NewFromString(string(val))
	case float64:
		return decimal.NewFromFloat(val), nil
	case int64:
		return decimal.NewFromInt(val), nil
	}
	return decimal.Zero, fmt.Errorf("cannot read %T (%v) as decimal", v, v)
}

func asTime(v any) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case string:
		return loader.ParseTimestamp(val)
	case []byte:
		return loader.ParseTimestamp(string(val))
	}
	return time.Time{}, fmt.Errorf("cannot read %T (%v) as timestamp", v, v)
}

func decodeCustomers(rs *shopload.ResultSet) ([]shopload.Customer, error) {
	out := make([]shopload.Customer, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("customers.customer_id: %w", err)
		}
		out = append(out, shopload.Customer{CustomerID: id, Name: asString(row[1]), Email: asString(row[2])})
	}
	return out, nil
}

func decodeProducts(rs *shopload.ResultSet) ([]shopload.Product, error) {
	out := make([]shopload.Product, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("products.product_id: %w", err)
		}
		price, err := asDecimal(row[2])
		if err != nil {
			return nil, fmt.Errorf("products.price: %w", err)
		}
		out = append(out, shopload.Product{ProductID: id, ProductName: asString(row[1]), Price: price})
	}
	return out, nil
}

func decodeOrders(rs *shopload.ResultSet) ([]shopload.Order, error) {
	out := make([]shopload.Order, 0, len(rs.Rows))
	for _, row := range rs.Rows {
		id, err := asInt64(row[0])
		if err != nil {
			return nil, fmt.Errorf("orders.order_id: %w", err)
		}
		when, err := asTime(row[1])
		if err != nil {
			return nil, fmt.Errorf("orders.date_time: %w", err)
		}
		customerID, err := asInt64(row[2])
		if err != nil {
			return nil, fmt.Errorf("orders.customer_id: %w", err)
		}
		productID, err := asInt64(row[3])
		if err != nil {
			return nil, fmt.Errorf("orders.product_id: %w", err)
		}
		out = append(out, shopload.Order{OrderID: id, DateTime: when, CustomerID: customerID, ProductID: productID})
	}
	return out, nil
}

// writeSample prints each table as a heading followed by one tuple per row.
func writeSample(w io.Writer, s *shopload.DataSet) {
	fmt.Fprintln(w, "\nCustomers:")
	for _, c := range s.Customers {
		fmt.Fprintf(w, "(%d, %s, %s)\n", c.CustomerID, quote(c.Name), quote(c.Email))
	}

	fmt.Fprintln(w, "\nProducts:")
	for _, p := range s.Products {
		fmt.Fprintf(w, "(%d, %s, %s)\n", p.ProductID, quote(p.ProductName), p.Price.StringFixed(5))
	}

	fmt.Fprintln(w, "\nOrders:")
	for _, o := range s.Orders {
		fmt.Fprintf(w, "(%d, %s, %d, %d)\n", o.OrderID, o.DateTime.Format(timestampLayout), o.CustomerID, o.ProductID)
	}
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}
