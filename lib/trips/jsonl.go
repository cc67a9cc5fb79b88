package trips

import (
	"encoding/json"
	"io"
)

// WriteJSONL writes one JSON object per record, newline-delimited. this
// is the layout the downstream warehouse ingests partitions from.
func WriteJSONL(w io.Writer, records []Record) error {
	enc := json.NewEncoder(w)
	for _, record := range records {
		err := enc.Encode(record)
		if err != nil {
			return err
		}
	}
	return nil
}
