package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"

	"shop-cli/internal/model"
)

// IncludeCategories asks the server to return the category definitions with the list.
const IncludeCategories = "categories"

// CurrentState is the working list as submitted to the server. The list id travels in the
// URL and in previousSync, so it is not repeated here.
type CurrentState struct {
	Title string       `json:"title"`
	Items []model.Item `json:"items"`
}

type SyncRequest struct {
	PreviousSync      model.Snapshot               `json:"previousSync"`
	CurrentState      CurrentState                 `json:"currentState"`
	IncludeInResponse []string                     `json:"includeInResponse"`
	Categories        *[]model.CategoryDefinition `json:"categories,omitempty"`
}

// SyncResponse is a decoded server reply. HasCategories distinguishes "no categories field"
// from an empty category array.
type SyncResponse struct {
	Snapshot      model.Snapshot
	Categories    []model.CategoryDefinition
	HasCategories bool
}

type wrappedResponse struct {
	List       json.RawMessage            `json:"list"`
	Categories []model.CategoryDefinition `json:"categories"`
}

// DecodeResponse accepts both reply shapes: a bare snapshot, or {list, categories}.
func DecodeResponse(b []byte) (SyncResponse, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return SyncResponse{}, &DecodeError{What: "sync response", Err: errors.New("empty body")}
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return SyncResponse{}, &DecodeError{What: "sync response", Err: err}
	}

	var out SyncResponse
	snapJSON := b
	if raw, ok := keys["list"]; ok && !isNull(raw) {
		var w wrappedResponse
		if err := json.Unmarshal(b, &w); err != nil {
			return SyncResponse{}, &DecodeError{What: "sync response", Err: err}
		}
		snapJSON = w.List
	}
	if raw, ok := keys["categories"]; ok && !isNull(raw) {
		var defs []model.CategoryDefinition
		if err := json.Unmarshal(raw, &defs); err != nil {
			return SyncResponse{}, &DecodeError{What: "categories", Err: err}
		}
		out.Categories = defs
		out.HasCategories = true
	}

	snap, err := decodeSnapshot(snapJSON)
	if err != nil {
		return SyncResponse{}, err
	}
	out.Snapshot = snap
	return out, nil
}

func decodeSnapshot(b []byte) (model.Snapshot, error) {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return model.Snapshot{}, &DecodeError{What: "snapshot", Err: err}
	}
	if _, ok := keys["token"]; !ok {
		return model.Snapshot{}, &DecodeError{What: "snapshot", Err: errors.New("missing token")}
	}
	var snap model.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return model.Snapshot{}, &DecodeError{What: "snapshot", Err: err}
	}
	if snap.Items == nil {
		snap.Items = []model.Item{}
	}
	return snap, nil
}

func isNull(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "null"
}
