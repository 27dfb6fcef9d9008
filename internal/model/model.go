package model

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

type Amount struct {
	Value decimal.Decimal
	Unit  *string
}

type amountWire struct {
	Value json.Number `json:"value"`
	Unit  *string     `json:"unit,omitempty"`
}

func (a Amount) String() string {
	s := a.Value.StringFixed(2)
	if a.Unit != nil && *a.Unit != "" {
		s += " " + *a.Unit
	}
	return s
}

func (a Amount) MarshalJSON() ([]byte, error) {
	// decimal marshals as a quoted string by default; the server expects a JSON number.
	return json.Marshal(amountWire{Value: json.Number(a.Value.String()), Unit: a.Unit})
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	var w amountWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Value == "" {
		return errors.New("amount: missing value")
	}
	v, err := decimal.NewFromString(w.Value.String())
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	a.Value = v
	a.Unit = w.Unit
	return nil
}

type ItemKind int

const (
	// ItemRich carries server-assigned structure (name, amount, category).
	ItemRich ItemKind = iota
	// ItemFreeText carries only the text the user typed.
	ItemFreeText
)

func (k ItemKind) String() string {
	switch k {
	case ItemRich:
		return "rich"
	case ItemFreeText:
		return "freeText"
	default:
		return fmt.Sprintf("ItemKind(%d)", int(k))
	}
}

// Item is one list entry. Kind decides which of the remaining fields are meaningful:
// Name/Amount/Category for ItemRich, Text for ItemFreeText.
type Item struct {
	Kind ItemKind
	ID   string

	Name     string
	Amount   *Amount
	Category *string

	Text string
}

func NewFreeText(id, text string) Item {
	return Item{Kind: ItemFreeText, ID: id, Text: text}
}

// Edit returns the item rebuilt as free text with the same id.
//
// Rich fields are not carried over: an edited item loses its amount and category until the
// server parses the new text again.
func (it Item) Edit(text string) Item {
	return NewFreeText(it.ID, text)
}

// DisplayText is the text shown for the item, without any category marker.
func (it Item) DisplayText() string {
	if it.Kind == ItemFreeText {
		return it.Text
	}
	if it.Amount != nil {
		return it.Amount.String() + " " + it.Name
	}
	return it.Name
}

func (it Item) CategoryID() string {
	if it.Kind != ItemRich || it.Category == nil {
		return ""
	}
	return *it.Category
}

type richWire struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Amount   *Amount `json:"amount,omitempty"`
	Category *string `json:"category,omitempty"`
}

type freeTextWire struct {
	ID   string `json:"id"`
	Text string `json:"stringRepresentation"`
}

func (it Item) MarshalJSON() ([]byte, error) {
	switch it.Kind {
	case ItemRich:
		return json.Marshal(richWire{ID: it.ID, Name: it.Name, Amount: it.Amount, Category: it.Category})
	case ItemFreeText:
		return json.Marshal(freeTextWire{ID: it.ID, Text: it.Text})
	default:
		return nil, fmt.Errorf("item %s: unknown kind %v", it.ID, it.Kind)
	}
}

// UnmarshalJSON decodes either item shape. The wire format carries no tag, so a record is
// rich when it has a "name" key and free text when it has "stringRepresentation".
func (it *Item) UnmarshalJSON(b []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	if _, ok := keys["id"]; !ok {
		return errors.New("item: missing id")
	}

	if _, ok := keys["name"]; ok {
		var w richWire
		if err := json.Unmarshal(b, &w); err != nil {
			return fmt.Errorf("item: %w", err)
		}
		*it = Item{Kind: ItemRich, ID: w.ID, Name: w.Name, Amount: w.Amount, Category: w.Category}
		return nil
	}

	if _, ok := keys["stringRepresentation"]; ok {
		var w freeTextWire
		if err := json.Unmarshal(b, &w); err != nil {
			return fmt.Errorf("item: %w", err)
		}
		*it = NewFreeText(w.ID, w.Text)
		return nil
	}

	return errors.New("item: neither name nor stringRepresentation present")
}

type CategoryDefinition struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Color     string `json:"color"`
	LightText bool   `json:"lightText"`
}

type List struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// Clone returns a deep copy; items hold pointers that must not be shared between the
// acknowledged snapshot and the working copy.
func (l List) Clone() List {
	out := List{ID: l.ID, Title: l.Title, Items: make([]Item, len(l.Items))}
	for i, it := range l.Items {
		out.Items[i] = it.clone()
	}
	return out
}

func (it Item) clone() Item {
	out := it
	if it.Amount != nil {
		a := *it.Amount
		if it.Amount.Unit != nil {
			u := *it.Amount.Unit
			a.Unit = &u
		}
		out.Amount = &a
	}
	if it.Category != nil {
		c := *it.Category
		out.Category = &c
	}
	return out
}

// Snapshot is a list as last acknowledged by the server.
type Snapshot struct {
	List
	Token    string `json:"token"`
	ChangeID string `json:"changeId"`
}

func (s Snapshot) Clone() Snapshot {
	return Snapshot{List: s.List.Clone(), Token: s.Token, ChangeID: s.ChangeID}
}

func CloneCategories(defs []CategoryDefinition) []CategoryDefinition {
	if defs == nil {
		return nil
	}
	out := make([]CategoryDefinition, len(defs))
	copy(out, defs)
	return out
}

// FindCategory returns the definition with the given id, if any.
func FindCategory(defs []CategoryDefinition, id string) (CategoryDefinition, bool) {
	if id == "" {
		return CategoryDefinition{}, false
	}
	for _, d := range defs {
		if d.ID == id {
			return d, true
		}
	}
	return CategoryDefinition{}, false
}
