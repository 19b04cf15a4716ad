// Package receipt formats completed sales for printing.
package receipt

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"pos-service/internal/i18n"
	"pos-service/internal/models"

	"go.uber.org/zap"
)

const lineWidth = 32

// Printer sends a rendered receipt to an output device
type Printer interface {
	Print(ctx context.Context, saleID, receipt string) error
}

// Renderer turns sale records into plain-text receipts
type Renderer struct {
	shopName string
}

// NewRenderer creates a renderer that heads every receipt with shopName
func NewRenderer(shopName string) *Renderer {
	return &Renderer{shopName: shopName}
}

// ShortID is the display token printed on receipts
func ShortID(saleID string) string {
	id := strings.ReplaceAll(saleID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return strings.ToUpper(id)
}

// Render formats record in the given locale
func (r *Renderer) Render(record models.SaleRecord, loc i18n.Locale) string {
	var b strings.Builder
	rule := strings.Repeat("-", lineWidth)
	currency := i18n.T(loc, i18n.LabelCurrency)

	b.WriteString(center(r.shopName))
	b.WriteString("\n")
	b.WriteString(center(i18n.T(loc, i18n.LabelReceipt) + " #" + ShortID(record.ID)))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s: %s\n", i18n.T(loc, i18n.LabelDate), record.Date)
	fmt.Fprintf(&b, "%s: %s\n", i18n.T(loc, i18n.LabelTime), record.Time)
	b.WriteString(rule + "\n")

	for _, item := range record.Items {
		fmt.Fprintf(&b, "%s x%d\n", item.Name, item.Quantity)
		b.WriteString(right(i18n.FormatAmount(item.LineTotal())))
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%s: %s %s\n", i18n.T(loc, i18n.LabelTotal), i18n.FormatAmount(record.Total), currency)
	b.WriteString(rule + "\n")
	b.WriteString(center(i18n.T(loc, i18n.LabelThankYou)))
	b.WriteString("\n")

	return b.String()
}

func center(s string) string {
	n := len([]rune(s))
	if n >= lineWidth {
		return s
	}
	return strings.Repeat(" ", (lineWidth-n)/2) + s
}

func right(s string) string {
	n := len([]rune(s))
	if n >= lineWidth {
		return s
	}
	return strings.Repeat(" ", lineWidth-n) + s
}

// LogPrinter writes receipts to the structured log
type LogPrinter struct {
	logger *zap.Logger
}

// NewLogPrinter creates a printer backed by logger
func NewLogPrinter(logger *zap.Logger) *LogPrinter {
	return &LogPrinter{logger: logger}
}

// Print logs the receipt body
func (p *LogPrinter) Print(_ context.Context, saleID, receipt string) error {
	p.logger.Info("Receipt printed",
		zap.String("sale_id", saleID),
		zap.String("receipt", receipt))
	return nil
}

// WriterPrinter appends receipts to an io.Writer such as a spool file
type WriterPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterPrinter creates a printer that writes to w
func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: w}
}

// Print writes the receipt followed by a form feed
func (p *WriterPrinter) Print(_ context.Context, saleID, receipt string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := io.WriteString(p.w, receipt+"\f\n"); err != nil {
		return fmt.Errorf("failed to print receipt %s: %w", saleID, err)
	}
	return nil
}
