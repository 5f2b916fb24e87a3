package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/pevans/festa/record"
)

// WriteJSON writes records as a JSON array indented by four spaces. Nil is
// written as an empty array.
func WriteJSON(w io.Writer, records []record.Record) error {
	if records == nil {
		records = []record.Record{}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
