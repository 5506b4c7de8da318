// Package dataset holds the canonical demo data: three small retail
// tables with ten rows each. Every backend seeds from these literals, so
// a query result is reproducible across restarts and backends.
package dataset

import (
	"fmt"
	"strings"
)

type Customer struct {
	CustomerID       int64   `json:"customer_id" parquet:"customer_id"`
	Name             string  `json:"name" parquet:"name"`
	Email            string  `json:"email" parquet:"email"`
	RegistrationDate string  `json:"registration_date" parquet:"registration_date"`
	LoyaltyTier      string  `json:"loyalty_tier" parquet:"loyalty_tier"`
	TotalSpent       float64 `json:"total_spent" parquet:"total_spent"`
}

type Order struct {
	OrderID    int64   `json:"order_id" parquet:"order_id"`
	CustomerID int64   `json:"customer_id" parquet:"customer_id"`
	OrderDate  string  `json:"order_date" parquet:"order_date"`
	Amount     float64 `json:"amount" parquet:"amount"`
	Status     string  `json:"status" parquet:"status"`
}

type Product struct {
	ProductID     int64   `json:"product_id" parquet:"product_id"`
	Name          string  `json:"name" parquet:"name"`
	Category      string  `json:"category" parquet:"category"`
	Price         float64 `json:"price" parquet:"price"`
	StockQuantity int64   `json:"stock_quantity" parquet:"stock_quantity"`
}

func TableNames() []string {
	return []string{"customers", "orders", "products"}
}

// Schema returns CREATE TABLE statements that parse identically on DuckDB
// and PostgreSQL.
func Schema() []string {
	return []string{
		`CREATE TABLE customers (
			customer_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			registration_date DATE,
			loyalty_tier TEXT DEFAULT 'Bronze',
			total_spent DECIMAL(10,2) DEFAULT 0.00
		)`,
		`CREATE TABLE orders (
			order_id INTEGER PRIMARY KEY,
			customer_id INTEGER,
			order_date DATE,
			amount DECIMAL(10,2),
			status TEXT DEFAULT 'Pending',
			FOREIGN KEY (customer_id) REFERENCES customers (customer_id)
		)`,
		`CREATE TABLE products (
			product_id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			category TEXT,
			price DECIMAL(10,2),
			stock_quantity INTEGER DEFAULT 0
		)`,
	}
}

// Reset drops the demo tables in dependency order. Used by backends that
// reuse a database across process runs.
func Reset() []string {
	return []string{
		`DROP TABLE IF EXISTS orders`,
		`DROP TABLE IF EXISTS products`,
		`DROP TABLE IF EXISTS customers`,
	}
}

func Customers() []Customer {
	return []Customer{
		{1, "Alice Johnson", "alice@email.com", "2023-01-15", "Gold", 2500.00},
		{2, "Bob Smith", "bob@email.com", "2023-02-20", "Silver", 1200.00},
		{3, "Carol Davis", "carol@email.com", "2023-03-10", "Bronze", 450.00},
		{4, "David Wilson", "david@email.com", "2023-04-05", "Platinum", 5000.00},
		{5, "Eva Brown", "eva@email.com", "2023-05-12", "Gold", 3200.00},
		{6, "Frank Miller", "frank@email.com", "2023-06-01", "Silver", 1800.00},
		{7, "Grace Lee", "grace@email.com", "2023-07-15", "Bronze", 650.00},
		{8, "Henry Garcia", "henry@email.com", "2023-08-20", "Platinum", 6200.00},
		{9, "Iris Chen", "iris@email.com", "2023-09-10", "Gold", 2800.00},
		{10, "Jack Thompson", "jack@email.com", "2023-10-05", "Silver", 1500.00},
	}
}

func Orders() []Order {
	return []Order{
		{1, 1, "2023-06-01", 1499.98, "Completed"},
		{2, 2, "2023-06-02", 289.98, "Completed"},
		{3, 3, "2023-06-03", 219.98, "Pending"},
		{4, 4, "2023-06-04", 929.98, "Completed"},
		{5, 5, "2023-06-05", 1099.98, "Shipped"},
		{6, 6, "2023-06-06", 649.98, "Completed"},
		{7, 7, "2023-06-07", 179.98, "Pending"},
		{8, 8, "2023-06-08", 1599.98, "Completed"},
		{9, 9, "2023-06-09", 799.98, "Shipped"},
		{10, 10, "2023-06-10", 449.98, "Completed"},
	}
}

func Products() []Product {
	return []Product{
		{1, "Laptop Pro", "Electronics", 1299.99, 50},
		{2, "Wireless Headphones", "Electronics", 199.99, 100},
		{3, "Coffee Maker", "Appliances", 89.99, 75},
		{4, "Running Shoes", "Sports", 129.99, 200},
		{5, "Smartphone", "Electronics", 799.99, 30},
		{6, "Tablet", "Electronics", 499.99, 40},
		{7, "Blender", "Appliances", 149.99, 60},
		{8, "Yoga Mat", "Sports", 39.99, 150},
		{9, "Smart Watch", "Electronics", 299.99, 80},
		{10, "Air Fryer", "Appliances", 119.99, 90},
	}
}

// Seed returns one INSERT statement per row, ready to execute on any
// backend after Schema.
func Seed() []string {
	statements := make([]string, 0, 30)
	for _, c := range Customers() {
		statements = append(statements, fmt.Sprintf(
			"INSERT INTO customers (customer_id, name, email, registration_date, loyalty_tier, total_spent) VALUES (%d, %s, %s, %s, %s, %.2f)",
			c.CustomerID, quoteLiteral(c.Name), quoteLiteral(c.Email), quoteLiteral(c.RegistrationDate), quoteLiteral(c.LoyaltyTier), c.TotalSpent,
		))
	}
	for _, o := range Orders() {
		statements = append(statements, fmt.Sprintf(
			"INSERT INTO orders (order_id, customer_id, order_date, amount, status) VALUES (%d, %d, %s, %.2f, %s)",
			o.OrderID, o.CustomerID, quoteLiteral(o.OrderDate), o.Amount, quoteLiteral(o.Status),
		))
	}
	for _, p := range Products() {
		statements = append(statements, fmt.Sprintf(
			"INSERT INTO products (product_id, name, category, price, stock_quantity) VALUES (%d, %s, %s, %.2f, %d)",
			p.ProductID, quoteLiteral(p.Name), quoteLiteral(p.Category), p.Price, p.StockQuantity,
		))
	}
	return statements
}

// Description is the schema context handed to the hosted model with
// every prompt.
func Description() string {
	return `Database Schema:

1. customers table:
   - customer_id (INTEGER PRIMARY KEY)
   - name (TEXT NOT NULL)
   - email (TEXT UNIQUE NOT NULL)
   - registration_date (DATE)
   - loyalty_tier (TEXT: Bronze, Silver, Gold, Platinum)
   - total_spent (DECIMAL)

2. orders table:
   - order_id (INTEGER PRIMARY KEY)
   - customer_id (INTEGER, foreign key to customers)
   - order_date (DATE)
   - amount (DECIMAL)
   - status (TEXT: Pending, Completed, Shipped)

3. products table:
   - product_id (INTEGER PRIMARY KEY)
   - name (TEXT NOT NULL)
   - category (TEXT: Electronics, Appliances, Sports)
   - price (DECIMAL)
   - stock_quantity (INTEGER)`
}

func quoteLiteral(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}
