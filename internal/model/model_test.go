package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func strPtr(s string) *string { return &s }

func TestItemUnmarshal_DisambiguatesByShape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		wantKind ItemKind
		wantText string
		wantCat  string
		wantErr  bool
	}{
		{
			name:     "rich with amount and category",
			in:       `{"id":"i1","name":"milk","amount":{"value":1.5,"unit":"l"},"category":"c1"}`,
			wantKind: ItemRich,
			wantText: "1.50 l milk",
			wantCat:  "c1",
		},
		{
			name:     "rich name only",
			in:       `{"id":"i2","name":"bread"}`,
			wantKind: ItemRich,
			wantText: "bread",
		},
		{
			name:     "rich amount without unit",
			in:       `{"id":"i3","name":"eggs","amount":{"value":6}}`,
			wantKind: ItemRich,
			wantText: "6.00 eggs",
		},
		{
			name:     "free text",
			in:       `{"id":"i4","stringRepresentation":"2 apples"}`,
			wantKind: ItemFreeText,
			wantText: "2 apples",
		},
		{
			name:     "name wins over stringRepresentation",
			in:       `{"id":"i5","name":"salt","stringRepresentation":"ignored"}`,
			wantKind: ItemRich,
			wantText: "salt",
		},
		{
			name:    "missing id",
			in:      `{"name":"salt"}`,
			wantErr: true,
		},
		{
			name:    "neither shape",
			in:      `{"id":"i6"}`,
			wantErr: true,
		},
		{
			name:    "not an object",
			in:      `"milk"`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var it Item
			err := json.Unmarshal([]byte(tt.in), &it)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error; got item %+v", it)
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if it.Kind != tt.wantKind {
				t.Fatalf("kind: got %v want %v", it.Kind, tt.wantKind)
			}
			if got := it.DisplayText(); got != tt.wantText {
				t.Fatalf("display: got %q want %q", got, tt.wantText)
			}
			if got := it.CategoryID(); got != tt.wantCat {
				t.Fatalf("category: got %q want %q", got, tt.wantCat)
			}
		})
	}
}

func TestItemMarshal_OmitsAbsentFields(t *testing.T) {
	t.Parallel()

	rich := Item{Kind: ItemRich, ID: "i1", Name: "milk"}
	b, err := json.Marshal(rich)
	if err != nil {
		t.Fatalf("marshal rich: %v", err)
	}
	if got := string(b); got != `{"id":"i1","name":"milk"}` {
		t.Fatalf("rich json: %s", got)
	}

	rich.Amount = &Amount{Value: decimal.RequireFromString("2.5")}
	rich.Category = strPtr("c1")
	b, err = json.Marshal(rich)
	if err != nil {
		t.Fatalf("marshal rich with amount: %v", err)
	}
	if got := string(b); got != `{"id":"i1","name":"milk","amount":{"value":2.5},"category":"c1"}` {
		t.Fatalf("rich json with amount: %s", got)
	}
	if strings.Contains(string(b), "null") {
		t.Fatalf("unexpected null in %s", b)
	}

	b, err = json.Marshal(NewFreeText("i2", "3 pears"))
	if err != nil {
		t.Fatalf("marshal free text: %v", err)
	}
	if got := string(b); got != `{"id":"i2","stringRepresentation":"3 pears"}` {
		t.Fatalf("free text json: %s", got)
	}
}

func TestItemEdit_KeepsIDAndDowngrades(t *testing.T) {
	t.Parallel()

	rich := Item{
		Kind:     ItemRich,
		ID:       "i1",
		Name:     "milk",
		Amount:   &Amount{Value: decimal.NewFromInt(1), Unit: strPtr("l")},
		Category: strPtr("c1"),
	}
	edited := rich.Edit("oat milk")
	if edited.ID != "i1" {
		t.Fatalf("id changed: %q", edited.ID)
	}
	if edited.Kind != ItemFreeText {
		t.Fatalf("expected free text; got %v", edited.Kind)
	}
	if edited.Amount != nil || edited.Category != nil || edited.Name != "" {
		t.Fatalf("rich fields survived edit: %+v", edited)
	}
	if got := edited.DisplayText(); got != "oat milk" {
		t.Fatalf("display: %q", got)
	}
}

func TestSnapshotJSON_FlattensList(t *testing.T) {
	t.Parallel()

	in := `{"id":"Demo","title":"Groceries","items":[{"id":"i1","stringRepresentation":"eggs"}],"token":"t1","changeId":"c1"}`
	var s Snapshot
	if err := json.Unmarshal([]byte(in), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.ID != "Demo" || s.Title != "Groceries" || s.Token != "t1" || s.ChangeID != "c1" {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
	if len(s.Items) != 1 || s.Items[0].Text != "eggs" {
		t.Fatalf("unexpected items: %+v", s.Items)
	}

	out, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != in {
		t.Fatalf("flattened json mismatch:\n got %s\nwant %s", out, in)
	}
}

func TestListClone_IsDeep(t *testing.T) {
	t.Parallel()

	l := List{ID: "Demo", Items: []Item{{
		Kind:     ItemRich,
		ID:       "i1",
		Name:     "milk",
		Amount:   &Amount{Value: decimal.NewFromInt(1), Unit: strPtr("l")},
		Category: strPtr("c1"),
	}}}
	c := l.Clone()
	*c.Items[0].Category = "c2"
	*c.Items[0].Amount.Unit = "ml"
	c.Items[0].Name = "cream"

	if l.Items[0].CategoryID() != "c1" || *l.Items[0].Amount.Unit != "l" || l.Items[0].Name != "milk" {
		t.Fatalf("clone shares state with original: %+v", l.Items[0])
	}

	if empty := (List{}).Clone(); empty.Items == nil {
		t.Fatalf("expected non-nil items on clone of empty list")
	}
}

func TestFindCategory(t *testing.T) {
	t.Parallel()

	defs := []CategoryDefinition{{ID: "a", Name: "Dairy"}, {ID: "b", Name: "Fruit"}}
	if d, ok := FindCategory(defs, "b"); !ok || d.Name != "Fruit" {
		t.Fatalf("expected Fruit; got %+v ok=%v", d, ok)
	}
	if _, ok := FindCategory(defs, "zzz"); ok {
		t.Fatalf("expected unresolved category")
	}
	if _, ok := FindCategory(defs, ""); ok {
		t.Fatalf("empty id must not resolve")
	}
}
