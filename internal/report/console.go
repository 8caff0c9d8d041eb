package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/invoice-extractor/internal/entity"
)

const shipToWidth = 50

// amounts print with thousands grouping: 1,234.50
var printer = message.NewPrinter(language.English)

// Page prints one processed page: a status line, review issues, then the invoice.
func Page(w io.Writer, source string, p entity.PageResult) error {
	if _, err := fmt.Fprintf(w, "\n== %s, page %d [%s] ==\n", source, p.Page, p.Status); err != nil {
		return err
	}
	if p.ErrorMessage != "" {
		fmt.Fprintf(w, "error: %s\n", p.ErrorMessage)
	}
	for _, issue := range p.Issues {
		fmt.Fprintf(w, "review: %s\n", issue)
	}
	return Invoice(w, p.Record)
}

// Invoice prints the header block, the product table and the totals of one record.
func Invoice(w io.Writer, rec entity.InvoiceRecord) error {
	section(w, "INVOICE HEADER")
	keyValues(w, [][]string{
		{"SKU", rec.SKU},
		{"Size", rec.Size},
		{"Qty", strconv.Itoa(rec.Qty)},
		{"Color", rec.Color},
		{"Order No", rec.OrderNo},
		{"Ship To", TruncateShipTo(rec.ShipTo)},
		{"Seller Name", rec.SellerName},
		{"Seller GSTIN", rec.SellerGSTIN},
		{"Purchase Order No", rec.PurchaseOrderNo},
		{"Invoice No", rec.InvoiceNo},
		{"Order Date", rec.OrderDate},
		{"Invoice Date", rec.InvoiceDate},
	})

	section(w, "PRODUCT DETAILS")
	if len(rec.LineItems) == 0 {
		fmt.Fprintln(w, "(no products found)")
	} else {
		t := tablewriter.NewWriter(w)
		t.SetHeader([]string{"#", "Product", "HSN", "Qty", "Gross Amount", "Discount", "Taxable Value", "Tax", "Total"})
		t.SetAutoWrapText(false)
		t.SetColumnAlignment([]int{
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT,
			tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_LEFT,
			tablewriter.ALIGN_RIGHT,
		})
		for i, it := range rec.LineItems {
			t.Append([]string{
				strconv.Itoa(i + 1), it.Description, it.HSN, it.Qty,
				Rupees(it.GrossAmount), Rupees(it.Discount), Rupees(it.TaxableValue), it.TaxClause, Rupees(it.Total),
			})
		}
		t.Render()
	}

	section(w, "INVOICE TOTALS")
	keyValues(w, [][]string{
		{"Total Tax", Rupees(rec.TotalTax)},
		{"Grand Total", Rupees(rec.GrandTotal)},
	})
	return nil
}

// FileSummary is one row of the batch summary table.
type FileSummary struct {
	Source                     string
	Pages                      int
	OK, Partial, Empty, Failed int
	Skipped                    bool
	Err                        string
}

// Summary prints one row per processed file.
func Summary(w io.Writer, rows []FileSummary) {
	t := tablewriter.NewWriter(w)
	t.SetHeader([]string{"File", "Pages", "OK", "Partial", "Empty", "Failed", "Note"})
	t.SetAutoWrapText(false)
	var total FileSummary
	for _, r := range rows {
		note := r.Err
		if r.Skipped {
			note = "already processed"
		}
		t.Append([]string{
			r.Source, strconv.Itoa(r.Pages),
			strconv.Itoa(r.OK), strconv.Itoa(r.Partial), strconv.Itoa(r.Empty), strconv.Itoa(r.Failed),
			note,
		})
		total.Pages += r.Pages
		total.OK += r.OK
		total.Partial += r.Partial
		total.Empty += r.Empty
		total.Failed += r.Failed
	}
	t.SetFooter([]string{
		fmt.Sprintf("%d files", len(rows)), strconv.Itoa(total.Pages),
		strconv.Itoa(total.OK), strconv.Itoa(total.Partial), strconv.Itoa(total.Empty), strconv.Itoa(total.Failed),
		"",
	})
	t.Render()
}

// Rupees renders an amount as Rs.<amount> with two decimals and thousands grouping.
func Rupees(m entity.Money) string {
	fixed := m.String()
	sign, digits := "", fixed
	if strings.HasPrefix(digits, "-") {
		sign, digits = "-", digits[1:]
	}
	whole, frac, _ := strings.Cut(digits, ".")
	// only the integer part goes through the printer, so the paise stay exact
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		whole = printer.Sprintf("%d", n)
	}
	return "Rs." + sign + whole + "." + frac
}

// TruncateShipTo shortens long addresses for display: 47 characters and "...".
func TruncateShipTo(s string) string {
	r := []rune(s)
	if len(r) <= shipToWidth {
		return s
	}
	return string(r[:shipToWidth-3]) + "..."
}

func section(w io.Writer, title string) {
	bar := strings.Repeat("=", 72)
	fmt.Fprintf(w, "\n%s\n%*s\n%s\n", bar, 36+len(title)/2, title, bar)
}

func keyValues(w io.Writer, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetBorder(false)
	t.SetColumnSeparator("")
	t.SetAutoWrapText(false)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	for _, r := range rows {
		t.Append([]string{r[0] + ":", r[1]})
	}
	t.Render()
}
