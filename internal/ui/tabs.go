package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/foodbridge/foodbridge/internal/foodbridge"
	"github.com/foodbridge/foodbridge/internal/state"
)

// Tab is one top-level view.
type Tab int

const (
	TabCenters Tab = iota
	TabListings
	TabProviders
	TabReservations
	TabAlerts
	TabTax
	TabLogs
	tabCount
)

var tabNames = [tabCount]string{"centers", "listings", "providers", "reservations", "alerts", "tax", "logs"}

var tabTitles = [tabCount]string{"Centers", "Listings", "Providers", "Reservations", "Alerts", "Tax Records", "Logs"}

// String returns the name persisted in prefs.
func (t Tab) String() string {
	if t < 0 || t >= tabCount {
		return ""
	}
	return tabNames[t]
}

// Title returns the label shown in the tab bar.
func (t Tab) Title() string {
	if t < 0 || t >= tabCount {
		return ""
	}
	return tabTitles[t]
}

func parseTab(name string) (Tab, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range tabNames {
		if n == name {
			return Tab(i), true
		}
	}
	return 0, false
}

// tabsFor returns the tabs a session can see, in display order.
func tabsFor(sess state.Session) []Tab {
	switch sess.Role() {
	case foodbridge.RoleAdmin:
		return []Tab{TabCenters, TabListings, TabProviders, TabLogs}
	case foodbridge.RoleProvider:
		return []Tab{TabListings, TabCenters, TabTax, TabLogs}
	case foodbridge.RoleRecipient:
		return []Tab{TabListings, TabReservations, TabAlerts, TabCenters, TabLogs}
	default:
		return []Tab{TabCenters, TabListings, TabLogs}
	}
}

// canDelete reports whether the session may delete rows on tab. Admins manage
// centers; providers manage their own listings.
func canDelete(sess state.Session, tab Tab) bool {
	switch tab {
	case TabCenters:
		return sess.Is(foodbridge.RoleAdmin)
	case TabListings:
		return sess.Is(foodbridge.RoleProvider)
	}
	return false
}

type column struct {
	title string
	width int
	wide  bool // hidden below LayoutWideWidth
}

type row struct {
	id     int64
	cells  []string
	status string // rendered as a badge in the status column
}

type tableView struct {
	columns   []column
	statusCol int // -1 when the table has no status column
	rows      []row
	empty     string
	footer    string
	loading   bool
	err       error
}

// tableFor builds the rows for tab from the current snapshot.
func (m Model) tableFor(tab Tab) tableView {
	s := m.snap
	switch tab {
	case TabCenters:
		tv := tableView{
			columns: []column{
				{"ID", 6, false}, {"Name", 28, false}, {"Status", 14, false},
				{"Capacity", 9, false}, {"Hours", 18, false}, {"Address", 36, true},
			},
			statusCol: 2,
			empty:     "No distribution centers yet.",
			loading:   s.Centers.Loading(),
			err:       s.Centers.Err(),
		}
		for _, c := range s.Centers.List() {
			tv.rows = append(tv.rows, row{
				id:     c.ID,
				cells:  []string{fmt.Sprint(c.ID), c.Name, string(c.Status), fmt.Sprint(c.Capacity), c.OperatingHours, c.Address},
				status: string(c.Status),
			})
		}
		return tv

	case TabListings:
		tv := tableView{
			columns: []column{
				{"ID", 6, false}, {"Title", 28, false}, {"Type", 10, false}, {"Quantity", 12, false},
				{"Expires", 17, false}, {"Status", 11, false}, {"Allergens", 24, true},
			},
			statusCol: 5,
			empty:     "No listings.",
			loading:   s.Listings.Loading(),
			err:       s.Listings.Err(),
		}
		for _, l := range m.visibleListings() {
			exp := l.ExpirationDate
			if t := l.ParsedExpiration(); !t.IsZero() {
				exp = t.Local().Format("2006-01-02 15:04")
			}
			tv.rows = append(tv.rows, row{
				id: l.ID,
				cells: []string{
					fmt.Sprint(l.ID), l.Title, titleCase(string(l.FoodType)), formatQuantity(l.Quantity, l.Unit),
					exp, string(l.Status), strings.Join(l.Allergens, ", "),
				},
				status: string(l.Status),
			})
		}
		if m.snap.Session.Is(foodbridge.RoleRecipient) {
			tv.footer = "Showing available listings without your active allergens."
		}
		return tv

	case TabProviders:
		tv := tableView{
			columns: []column{
				{"ID", 6, false}, {"Business", 28, false}, {"Type", 16, false},
				{"Phone", 14, false}, {"Email", 26, true}, {"Address", 36, true},
			},
			statusCol: -1,
			empty:     "No providers.",
			loading:   s.Providers.Loading(),
			err:       s.Providers.Err(),
		}
		providers := state.NearbyProviders(s)
		if len(providers) > 0 {
			tv.footer = "Ranked by distance."
		} else {
			providers = s.Providers.List()
		}
		for _, p := range providers {
			tv.rows = append(tv.rows, row{
				id:    p.ID,
				cells: []string{fmt.Sprint(p.ID), p.BusinessName, p.BusinessType, p.Phone, p.Email, p.Address},
			})
		}
		return tv

	case TabReservations:
		tv := tableView{
			columns: []column{
				{"ID", 6, false}, {"Listing", 28, false}, {"Pickup", 17, false},
				{"Status", 11, false}, {"Notes", 32, true},
			},
			statusCol: 3,
			empty:     "No reservations.",
			loading:   s.Reservations.Loading(),
			err:       s.Reservations.Err(),
		}
		for _, r := range s.Reservations.List() {
			listing := fmt.Sprintf("#%d", r.ListingID)
			if l, ok := s.Listings.Get(r.ListingID); ok {
				listing = l.Title
			}
			pickup := r.PickupTime
			if t := r.ParsedPickupTime(); !t.IsZero() {
				pickup = t.Local().Format("2006-01-02 15:04")
			}
			tv.rows = append(tv.rows, row{
				id:     r.ID,
				cells:  []string{fmt.Sprint(r.ID), listing, pickup, string(r.Status), r.Notes},
				status: string(r.Status),
			})
		}
		return tv

	case TabAlerts:
		tv := tableView{
			columns:   []column{{"ID", 6, false}, {"Allergen", 28, false}, {"Status", 10, false}},
			statusCol: 2,
			empty:     "No allergen alerts.",
			loading:   s.AllergenAlerts.Loading(),
			err:       s.AllergenAlerts.Err(),
		}
		for _, a := range s.AllergenAlerts.List() {
			status := ternary(a.IsActive, "active", "inactive")
			tv.rows = append(tv.rows, row{
				id:     a.ID,
				cells:  []string{fmt.Sprint(a.ID), a.AllergenName, status},
				status: status,
			})
		}
		if p := s.AllergenPreferences; p != nil && len(p.Allergens) > 0 {
			tv.footer = "Notify on: " + strings.Join(p.Allergens, ", ")
		}
		return tv

	case TabTax:
		tv := tableView{
			columns: []column{
				{"ID", 6, false}, {"Receipt", 16, false}, {"Donated", 12, false},
				{"Food value", 13, false}, {"Deduction", 13, false}, {"Year", 6, false},
			},
			statusCol: -1,
			empty:     "No tax records.",
			loading:   s.TaxRecords.Loading(),
			err:       s.TaxRecords.Err(),
		}
		records := state.TaxRecordsForYear(s, 0)
		for _, r := range records {
			tv.rows = append(tv.rows, row{
				id: r.ID,
				cells: []string{
					fmt.Sprint(r.ID), r.ReceiptNumber, truncate(r.DonationDate, 10),
					formatMoney(r.FoodValue), formatMoney(r.TaxDeductionAmount), fmt.Sprint(r.TaxYear),
				},
			})
		}
		if len(records) > 0 {
			tv.footer = "Total deduction: " + formatMoney(state.TotalDeduction(records))
		}
		return tv
	}
	return tableView{statusCol: -1}
}

// visibleListings applies the role's view of the listings table.
func (m Model) visibleListings() []foodbridge.FoodListing {
	switch m.snap.Session.Role() {
	case foodbridge.RoleProvider:
		p, ok := state.SessionProvider(m.snap)
		if !ok {
			return nil
		}
		return state.ListingsByProvider(m.snap, p.ID)
	case foodbridge.RoleRecipient:
		return state.SafeListings(m.snap, m.now())
	default:
		return m.snap.Listings.List()
	}
}

// renderTable draws tv into a width x height box with selected highlighted.
func (m Model) renderTable(tv tableView, selected, width, height int) string {
	styles := m.theme.Styles()

	cols := make([]int, 0, len(tv.columns))
	for i, c := range tv.columns {
		if c.wide && width < LayoutWideWidth {
			continue
		}
		cols = append(cols, i)
	}

	var b strings.Builder
	header := make([]string, 0, len(cols))
	for _, i := range cols {
		header = append(header, padRight(tv.columns[i].title, tv.columns[i].width))
	}
	b.WriteString(styles.AccentText.Bold(true).Render(truncate(strings.Join(header, " "), width)))
	b.WriteString("\n")

	if len(tv.rows) == 0 {
		b.WriteString(styles.MutedText.Render(ternary(tv.loading, "Loading...", tv.empty)))
		b.WriteString("\n")
		return b.String()
	}

	visible := maxInt(1, height-2)
	start := 0
	if selected >= visible {
		start = selected - visible + 1
	}
	end := start + visible
	if end > len(tv.rows) {
		end = len(tv.rows)
	}

	for idx := start; idx < end; idx++ {
		r := tv.rows[idx]
		cells := make([]string, 0, len(cols))
		for _, i := range cols {
			w := tv.columns[i].width
			text := ""
			if i < len(r.cells) {
				text = r.cells[i]
			}
			if i == tv.statusCol && idx != selected {
				badge := styles.StatusStyle(r.status).Render(titleCase(text))
				cells = append(cells, badge+strings.Repeat(" ", maxInt(0, w-lipgloss.Width(badge))))
				continue
			}
			if i == tv.statusCol {
				text = titleCase(text)
			}
			cells = append(cells, padRight(truncate(text, w), w))
		}
		line := strings.Join(cells, " ")
		if idx == selected {
			line = styles.Selected.Render(padRight(line, width))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if tv.footer != "" {
		b.WriteString(styles.FaintText.Render(tv.footer))
		b.WriteString("\n")
	}
	return b.String()
}
