package receipt

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/ports"
)

const lineWidth = 40

// Formatter builds printable receipts from completed transactions. Both
// methods are pure: the source transaction is never mutated and nothing is
// persisted.
type Formatter struct {
	header domain.ReceiptHeader
}

func NewFormatter(header domain.ReceiptHeader) ports.ReceiptService {
	return &Formatter{header: header}
}

// Format converts a transaction into a receipt value object. Every money
// field is rendered through the engine's single rounding rule.
func (f *Formatter) Format(tx *domain.Transaction) *domain.Receipt {
	r := &domain.Receipt{
		Header:        f.header,
		TransactionID: tx.ID,
		Date:          tx.Timestamp.Format("02/01/2006 15:04:05"),
		Customer:      tx.CustomerRef,
		Subtotal:      tx.Subtotal.String(),
		Discount:      tx.Discount.String(),
		VoucherCode:   tx.VoucherCode,
		NetTotal:      tx.NetTotal.String(),
		Cash:          tx.Cash.String(),
		Card:          tx.Card.String(),
		ChangeDue:     tx.ChangeDue.String(),
	}

	for _, l := range tx.Lines {
		item := domain.ReceiptItem{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice.String(),
			Total:     (l.UnitPrice.Mul(l.Quantity) - l.LineDiscount).String(),
		}
		if l.LineDiscount > 0 {
			item.Discount = l.LineDiscount.String()
		}
		r.Items = append(r.Items, item)
	}

	return r
}

// Render produces the fixed-width text for a 40-column thermal printer.
func (f *Formatter) Render(r *domain.Receipt) string {
	var b strings.Builder

	writeCentered(&b, r.Header.StoreName)
	if r.Header.Address != "" {
		writeCentered(&b, r.Header.Address)
	}
	if r.Header.Phone != "" {
		writeCentered(&b, r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		writeCentered(&b, "CNPJ "+r.Header.TaxID)
	}
	writeRule(&b)

	writeRow(&b, "CUPOM", r.TransactionID)
	writeRow(&b, "DATA", r.Date)
	if r.Customer != "" {
		writeRow(&b, "CLIENTE", r.Customer)
	}
	writeRule(&b)

	for _, item := range r.Items {
		b.WriteString(truncate(item.Name, lineWidth))
		b.WriteByte('\n')
		writeRow(&b, fmt.Sprintf("  %d x %s", item.Quantity, item.UnitPrice), item.Total)
		if item.Discount != "" {
			writeRow(&b, "  desconto item", "-"+item.Discount)
		}
	}
	writeRule(&b)

	writeRow(&b, "SUBTOTAL", r.Subtotal)
	if r.VoucherCode != "" {
		writeRow(&b, "VALE "+r.VoucherCode, "-"+r.Discount)
	}
	writeRow(&b, "TOTAL", r.NetTotal)
	writeRule(&b)

	if r.Cash != "0.00" {
		writeRow(&b, "DINHEIRO", r.Cash)
	}
	if r.Card != "0.00" {
		writeRow(&b, "CARTAO", r.Card)
	}
	writeRow(&b, "TROCO", r.ChangeDue)
	writeRule(&b)

	writeCentered(&b, "OBRIGADO, VOLTE SEMPRE")

	return b.String()
}

func writeRule(b *strings.Builder) {
	b.WriteString(strings.Repeat("-", lineWidth))
	b.WriteByte('\n')
}

// Widths are counted in runes, not bytes. Product names carry accented
// characters and the printer advances one column per character.
func writeCentered(b *strings.Builder, s string) {
	s = truncate(s, lineWidth)
	pad := (lineWidth - utf8.RuneCountInString(s)) / 2
	if pad > 0 {
		b.WriteString(strings.Repeat(" ", pad))
	}
	b.WriteString(s)
	b.WriteByte('\n')
}

// writeRow prints a left label and right-aligned value on one line.
func writeRow(b *strings.Builder, label, value string) {
	gap := lineWidth - utf8.RuneCountInString(label) - utf8.RuneCountInString(value)
	if gap < 1 {
		gap = 1
	}
	b.WriteString(label)
	b.WriteString(strings.Repeat(" ", gap))
	b.WriteString(value)
	b.WriteByte('\n')
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
