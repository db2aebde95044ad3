// Package invoice renders the current product list as a printable PDF
// bill: a shop header, one table row per product and a grand total.
package invoice

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Itstouseef/billing-system/internal/models"
)

// Header identifies the shop on the invoice.
type Header struct {
	ShopName string
	Address  string
	Phone    string
}

// Generator renders invoices for a fixed shop header.
type Generator struct {
	header Header
	now    func() time.Time
}

// NewGenerator creates a Generator for the given shop header.
func NewGenerator(header Header) *Generator {
	return &Generator{
		header: header,
		now:    time.Now,
	}
}

var tableWidths = []float64{12, 70, 35, 20, 35}

// Render writes a PDF invoice for the given products to w. The grand
// total is recomputed from price and quantity, not read from the stored
// totalPrice. An empty product list is an error.
func (g *Generator) Render(products []models.Product, w io.Writer) error {
	if len(products) == 0 {
		return fmt.Errorf("no products to generate invoice")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Shop header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, g.header.ShopName)
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, g.header.Address)
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Phone: %s", g.header.Phone))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Date: %s", g.now().Format("02/01/2006")))
	pdf.Ln(12)

	// Table head
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(46, 125, 50)
	pdf.SetTextColor(255, 255, 255)
	head := []string{"#", "Product Name", "Price", "Qty", "Total"}
	for i, title := range head {
		pdf.CellFormat(tableWidths[i], 8, title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	// Line items
	pdf.SetFont("Helvetica", "", 11)
	pdf.SetTextColor(0, 0, 0)
	var grandTotal float64
	for i, p := range products {
		lineTotal := p.Price * float64(p.Quantity)
		grandTotal += lineTotal

		pdf.CellFormat(tableWidths[0], 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(tableWidths[1], 8, p.Name, "1", 0, "L", false, 0, "")
		pdf.CellFormat(tableWidths[2], 8, formatAmount(p.Price), "1", 0, "R", false, 0, "")
		pdf.CellFormat(tableWidths[3], 8, fmt.Sprintf("%d", p.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(tableWidths[4], 8, formatAmount(lineTotal), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	// Total section
	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 10, fmt.Sprintf("Grand Total: %s", formatAmount(grandTotal)))
	pdf.Ln(14)

	// Footer
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 8, "Thank you for shopping with us!")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render invoice PDF: %w", err)
	}
	return nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("Rs. %.2f", v)
}
