package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestRun_ValidateOnly(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-validate"}, env(nil), &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "configuration is valid")
}

func TestRun_InvalidConfig(t *testing.T) {
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{"-storage=oracle"}, env(nil), &out, &errOut)
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut.String(), "error: storage.kind")
}

func TestRun_BadFlag(t *testing.T) {
	var out, errOut bytes.Buffer
	assert.Equal(t, 2, run(context.Background(), []string{"-bogus"}, env(nil), &out, &errOut))
}

func TestRun_LoadsAndPrintsSummary(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.csv")
	body := "Row ID,Order ID,Order Date,Ship Date,Ship Mode,Customer ID,Customer Name,Segment,Country,City,State,Postal Code,Region,Product ID,Category,Sub-Category,Product Name,Sales,Quantity,Discount,Profit\n" +
		"1,CA-1,1/2/2020,1/5/2020,Same Day,C1,Ann,Consumer,US,Austin,Texas,73301,Central,P1,Technology,Phones,Phone,10,2,0,1\n" +
		"2,CA-2,1/2/2020,1/5/2020,Same Day,C1,Ann,Consumer,US,Austin,Texas,73301,Central,P1,Technology,Phones,Phone,10,0,0,1\n"
	if err := os.WriteFile(src, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	rejects := filepath.Join(dir, "rejects.csv")
	code := run(context.Background(), []string{"-rejects", rejects}, env(map[string]string{
		"SALESETL_SOURCE":    src,
		"SALESETL_DSN":       filepath.Join(dir, "sales.db"),
		"SALESETL_LOG_LEVEL": "error",
	}), &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())

	s := out.String()
	assert.Contains(t, s, "rows valid")
	assert.Contains(t, s, "quantity")
	assert.Contains(t, s, rejects+" (1 rows)")
	assert.True(t, strings.Contains(s, "order_items") && strings.Contains(s, "1 rows, 1 distinct keys"), s)
}

func TestRun_MissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{
		"-source", filepath.Join(dir, "nope.csv"),
		"-dsn", filepath.Join(dir, "sales.db"),
		"-log_level", "error",
	}, env(nil), &out, &errOut)
	assert.Equal(t, 1, code)
}
