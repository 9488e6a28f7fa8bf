package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/mamadbah2/dairy/internal/domain/models"
)

// DraftSchemaVersion is bumped whenever the RowState JSON layout changes.
const DraftSchemaVersion = 1

type draftEnvelope struct {
	Version int               `json:"version"`
	Rows    []models.RowState `json:"rows"`
}

// EncodeDraft serializes rows into the versioned draft format.
func EncodeDraft(rows []models.RowState) ([]byte, error) {
	if rows == nil {
		rows = []models.RowState{}
	}
	data, err := json.Marshal(draftEnvelope{Version: DraftSchemaVersion, Rows: rows})
	if err != nil {
		return nil, fmt.Errorf("encode draft: %w", err)
	}
	return data, nil
}

// DecodeDraft parses a draft blob. Blank input yields no rows. A bare JSON
// array is accepted as a version 0 draft.
func DecodeDraft(data []byte) ([]models.RowState, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []models.RowState{}, nil
	}

	if trimmed[0] == '[' {
		var rows []models.RowState
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("decode legacy draft: %w", err)
		}
		return nonNil(rows), nil
	}

	var envelope draftEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	if envelope.Version > DraftSchemaVersion {
		return nil, fmt.Errorf("decode draft: unsupported version %d", envelope.Version)
	}
	return nonNil(envelope.Rows), nil
}

func nonNil(rows []models.RowState) []models.RowState {
	if rows == nil {
		return []models.RowState{}
	}
	return rows
}
