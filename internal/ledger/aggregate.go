package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NoDepositsNote is the text of the placeholder row shown for an empty ledger.
const NoDepositsNote = "No deposits yet."

// DisplayRow is one line of the deposit listing. A placeholder row only
// carries Note.
type DisplayRow struct {
	Amount string `json:"amount,omitempty"`
	Method string `json:"method,omitempty"`
	Date   string `json:"date,omitempty"`
	Note   string `json:"note,omitempty"`
}

// Total sums the amounts of records.
func Total(records []DepositRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// Render maps records to display rows in ledger order, dates in loc.
func Render(records []DepositRecord, loc *time.Location) []DisplayRow {
	if len(records) == 0 {
		return []DisplayRow{{Note: NoDepositsNote}}
	}
	if loc == nil {
		loc = time.Local
	}
	rows := make([]DisplayRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, DisplayRow{
			Amount: FormatUSD(r.Amount),
			Method: r.Method.Label(),
			Date:   r.Timestamp.In(loc).Format("2006-01-02"),
		})
	}
	return rows
}

// FormatUSD renders an amount as "$250.00".
func FormatUSD(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

var pendingPrinter = message.NewPrinter(language.AmericanEnglish)

// FormatPending renders the pending-payments figure with digit grouping.
func FormatPending(total decimal.Decimal) string {
	return pendingPrinter.Sprintf("$%.2f", total.InexactFloat64())
}

// View is what every display surface shows for the ledger.
type View struct {
	Rows    []DisplayRow `json:"rows"`
	Count   int          `json:"count"`
	Total   string       `json:"total"`
	Pending string       `json:"pending"`
}

// Dashboard builds views of the ledger held by a Store.
type Dashboard struct {
	store *Store
	loc   *time.Location
}

func NewDashboard(store *Store, loc *time.Location) *Dashboard {
	return &Dashboard{store: store, loc: loc}
}

func (d *Dashboard) Snapshot(ctx context.Context) View {
	return buildView(d.store.ReadAll(ctx), d.loc)
}

func buildView(records []DepositRecord, loc *time.Location) View {
	total := Total(records)
	return View{
		Rows:    Render(records, loc),
		Count:   len(records),
		Total:   FormatUSD(total),
		Pending: FormatPending(total),
	}
}
