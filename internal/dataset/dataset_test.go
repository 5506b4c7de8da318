package dataset

import (
	"strings"
	"testing"
)

func TestSeedRowCounts(t *testing.T) {
	if got := len(Customers()); got != 10 {
		t.Fatalf("customers = %d, want 10", got)
	}
	if got := len(Orders()); got != 10 {
		t.Fatalf("orders = %d, want 10", got)
	}
	if got := len(Products()); got != 10 {
		t.Fatalf("products = %d, want 10", got)
	}
}

func TestSeedStatements(t *testing.T) {
	statements := Seed()
	if len(statements) != 30 {
		t.Fatalf("seed statements = %d, want 30", len(statements))
	}
	counts := map[string]int{}
	for _, stmt := range statements {
		if !strings.HasPrefix(stmt, "INSERT INTO ") {
			t.Fatalf("unexpected statement %q", stmt)
		}
		table := strings.Fields(stmt)[2]
		counts[table]++
	}
	for _, table := range TableNames() {
		if counts[table] != 10 {
			t.Fatalf("table %s has %d inserts, want 10", table, counts[table])
		}
	}
}

func TestSchemaCoversAllTables(t *testing.T) {
	statements := Schema()
	if len(statements) != 3 {
		t.Fatalf("schema statements = %d, want 3", len(statements))
	}
	for i, table := range TableNames() {
		found := false
		for _, stmt := range statements {
			if strings.Contains(stmt, "CREATE TABLE "+table) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("schema statement %d missing table %s", i, table)
		}
	}
}

func TestResetDropsOrdersBeforeCustomers(t *testing.T) {
	statements := Reset()
	ordersIdx, customersIdx := -1, -1
	for i, stmt := range statements {
		if strings.Contains(stmt, "orders") {
			ordersIdx = i
		}
		if strings.Contains(stmt, "customers") {
			customersIdx = i
		}
	}
	if ordersIdx < 0 || customersIdx < 0 || ordersIdx > customersIdx {
		t.Fatalf("orders must drop before customers: %v", statements)
	}
}

func TestDescriptionMentionsAllTables(t *testing.T) {
	desc := Description()
	for _, table := range TableNames() {
		if !strings.Contains(desc, table+" table") {
			t.Fatalf("description missing %s", table)
		}
	}
}

func TestQuoteLiteralEscapesSingleQuotes(t *testing.T) {
	if got := quoteLiteral("O'Brien"); got != "'O''Brien'" {
		t.Fatalf("quoteLiteral = %q", got)
	}
}
