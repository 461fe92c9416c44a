package panchangam

import (
	"encoding/json"

	"github.com/novaephem/panchangam/orchestrate"
)

func encodeMonth(rec *orchestrate.MonthRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeMonth(data []byte) (*orchestrate.MonthRecord, error) {
	var rec orchestrate.MonthRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
