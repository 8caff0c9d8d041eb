package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const invoiceText = "Product DetailsSKUSizeQtyColorOrder No.mfymzabrFree Size1Gold204827517525195264_1" +
	"BILL TO / SHIP TO Jane Doe, 12 MG Road Sold by : FAIZAN AHMAD Shop No 4 GSTIN - 10DQLPA9951C1Z5 " +
	"Purchase Order No.204827517525195264Invoice No.d2rnq26255Order Date01.10.2025Invoice Date01.10.2025" +
	"DescriptionHSNQtyGross AmountDiscountTaxable ValueTaxesTotal" +
	"Kanaka Mayuri Jhumka - Free Size711790NARs.570.00Rs.0.00Rs.553.40IGST @3.0% Rs.16.60Rs.570.00" +
	"TotalRs.17.85Rs.613.00"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("INVOICE_CONFIG", "")
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExtractCmd_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inv.txt")
	require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o600))

	out, err := run(t, "extract", path, "--format", "json")
	require.NoError(t, err)

	var docs []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "OK", docs[0]["status"])
}

func TestExtractCmd_Console(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inv.txt")
	require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o600))

	out, err := run(t, "extract", path)
	require.NoError(t, err)
	assert.Contains(t, out, "INVOICE TOTALS")
	assert.Contains(t, out, "Rs.613.00")
}

func TestExtractCmd_BadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "inv.txt")
	require.NoError(t, os.WriteFile(path, []byte(invoiceText), 0o600))

	_, err := run(t, "extract", path, "--format", "csv")
	assert.Error(t, err)
}

func TestBatchCmd_InMemory(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	require.NoError(t, os.MkdirAll(in, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.txt"), []byte(invoiceText), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "b.txt"), []byte("not an invoice"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.md"), []byte("ignored"), 0o600))
	xlsx := filepath.Join(root, "out.xlsx")
	jsonOut := filepath.Join(root, "out.json")

	out, err := run(t, "batch", "--dir", in, "--inmem", "--out", xlsx, "--json", jsonOut, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	assert.NotContains(t, out, "notes.md")

	f, err := excelize.OpenFile(xlsx)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Invoices")
	require.NoError(t, err)
	assert.Len(t, rows, 3, "header plus one row per page")

	b, err := os.ReadFile(jsonOut)
	require.NoError(t, err)
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(b, &docs))
	assert.Len(t, docs, 2)
}

func TestBatchCmd_RequiresDir(t *testing.T) {
	_, err := run(t, "batch", "--inmem")
	assert.Error(t, err)
}
