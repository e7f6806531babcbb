package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/typemnm/Mornoningo/internal/models"
	appErrors "github.com/typemnm/Mornoningo/pkg/errors"
)

// EncodeState serialises the study state into the single persisted text blob.
func EncodeState(state *models.StudyState) ([]byte, error) {
	if state == nil {
		return nil, fmt.Errorf("encode state: nil state")
	}
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return payload, nil
}

// DecodeState parses a persisted blob. Unparseable data and schema versions newer than this
// build understands are reported as ErrCorruptState. An empty blob decodes to nil.
func DecodeState(raw []byte) (*models.StudyState, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var state models.StudyState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, appErrors.WrapAs(appErrors.ErrCorruptState, err, "")
	}
	if state.SchemaVersion > models.CurrentSchemaVersion {
		return nil, appErrors.WrapAs(appErrors.ErrCorruptState,
			fmt.Errorf("schema version %d is newer than %d", state.SchemaVersion, models.CurrentSchemaVersion), "")
	}
	return &state, nil
}
