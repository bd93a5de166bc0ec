package view

import "minicart/internal/domain"

// Row describes one rendered cart line: everything the visual surface needs,
// nothing tied to a view technology.
type Row struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"image"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// Pending describes the removal-confirmation modal state.
type Pending struct {
	Token string `json:"token"`
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Page is the full projection of the cart. When ErrorMessage is set it
// replaces the row list.
type Page struct {
	Rows         []Row    `json:"rows"`
	Subtotal     string   `json:"subtotal"`
	Total        string   `json:"total"`
	ItemCount    int      `json:"itemCount"`
	Empty        bool     `json:"empty"`
	ErrorMessage string   `json:"errorMessage,omitempty"`
	Pending      *Pending `json:"pending,omitempty"`
}

// Project maps a snapshot to its page description. Pure: aggregates are
// recomputed from the item list, nothing is read from prior renders.
func Project(snapshot *domain.Snapshot, f *Formatter) Page {
	agg := snapshot.Aggregates()
	rows := make([]Row, 0, len(snapshot.Items))
	for _, item := range snapshot.Items {
		rows = append(rows, Row{
			ID:        item.ID,
			Title:     item.Title,
			ImageURL:  item.ImageURL,
			Quantity:  item.Quantity,
			UnitPrice: f.Format(item.UnitPriceCents),
			LineTotal: f.Format(item.UnitPriceCents * int64(item.Quantity)),
		})
	}
	return Page{
		Rows:      rows,
		Subtotal:  f.Format(agg.SubtotalCents),
		Total:     f.Format(agg.SubtotalCents),
		ItemCount: agg.ItemCount,
		Empty:     snapshot.Empty(),
	}
}

// ErrorPage projects a failed load: no rows, zeroed totals, the message in
// place of the item list.
func ErrorPage(message string, f *Formatter) Page {
	page := Project(&domain.Snapshot{}, f)
	page.ErrorMessage = message
	return page
}
