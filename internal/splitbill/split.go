// Package splitbill divides a receipt among the people who shared it.
package splitbill

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"pocket-ledger/internal/receipt"
)

var (
	ErrNoPeople       = errors.New("splitbill: bill has no people")
	ErrUnassignedItem = errors.New("splitbill: item is not assigned to anyone")
	ErrUnknownPerson  = errors.New("splitbill: item assigned to unknown person")
)

var hundred = decimal.NewFromInt(100)

type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Item struct {
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	AssignedTo []string        `json:"assignedTo"`
}

// Bill is a receipt plus who had what. When TaxPercent is set it takes
// precedence over the fixed Tax.
type Bill struct {
	Items      []Item           `json:"items"`
	People     []Person         `json:"people"`
	Tax        decimal.Decimal  `json:"tax"`
	TaxPercent *decimal.Decimal `json:"taxPercent,omitempty"`
	Tip        decimal.Decimal  `json:"tip"`
}

type ShareItem struct {
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Quantity int             `json:"quantity"`
	Shared   bool            `json:"shared"`
}

type PersonTotal struct {
	PersonID   string          `json:"personId"`
	PersonName string          `json:"personName"`
	Items      []ShareItem     `json:"items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	Tip        decimal.Decimal `json:"tip"`
	Total      decimal.Decimal `json:"total"`
}

type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Tip      decimal.Decimal `json:"tip"`
	Total    decimal.Decimal `json:"total"`
	People   []PersonTotal   `json:"people"`
}

// FromReceipt builds an unassigned bill from a parsed receipt.
func FromReceipt(r receipt.ParsedReceipt, people []Person) Bill {
	items := make([]Item, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, Item{Name: it.Name, Price: it.Price, Quantity: it.Quantity})
	}
	return Bill{Items: items, People: people, Tax: r.Tax, TaxPercent: r.TaxPercent, Tip: r.Tip}
}

// Split computes what each person owes. Each item's line total is divided
// equally among its distinct assignees; tax and tip follow each person's share
// of the subtotal. Every item must be assigned, so the people's totals always
// add up to the bill total.
func Split(bill Bill) (Breakdown, error) {
	if len(bill.People) == 0 {
		return Breakdown{}, ErrNoPeople
	}

	index := make(map[string]int, len(bill.People))
	totals := make([]PersonTotal, len(bill.People))
	for i, p := range bill.People {
		index[p.ID] = i
		totals[i] = PersonTotal{PersonID: p.ID, PersonName: p.Name, Items: []ShareItem{}}
	}

	subtotal := decimal.Zero
	for _, it := range bill.Items {
		assignees := uniqueIDs(it.AssignedTo)
		if len(assignees) == 0 {
			return Breakdown{}, fmt.Errorf("%w: %q", ErrUnassignedItem, it.Name)
		}
		lineTotal := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(lineTotal)

		share := lineTotal.Div(decimal.NewFromInt(int64(len(assignees))))
		for _, id := range assignees {
			i, ok := index[id]
			if !ok {
				return Breakdown{}, fmt.Errorf("%w: %q", ErrUnknownPerson, id)
			}
			totals[i].Items = append(totals[i].Items, ShareItem{
				Name:     it.Name,
				Amount:   share,
				Quantity: it.Quantity,
				Shared:   len(assignees) > 1,
			})
			totals[i].Subtotal = totals[i].Subtotal.Add(share)
		}
	}

	tax := bill.Tax
	if bill.TaxPercent != nil && !bill.TaxPercent.IsZero() {
		tax = subtotal.Mul(*bill.TaxPercent).Div(hundred)
	}

	for i := range totals {
		pt := &totals[i]
		if subtotal.IsPositive() {
			pt.Tax = pt.Subtotal.Mul(tax).Div(subtotal)
			pt.Tip = pt.Subtotal.Mul(bill.Tip).Div(subtotal)
		}
		pt.Total = pt.Subtotal.Add(pt.Tax).Add(pt.Tip)
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Tip:      bill.Tip,
		Total:    subtotal.Add(tax).Add(bill.Tip),
		People:   totals,
	}, nil
}

// uniqueIDs drops repeated ids, keeping first occurrences in order.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
