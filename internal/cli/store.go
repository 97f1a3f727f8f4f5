package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/mesh-intelligence/pantry/pkg/pantry"
	"github.com/mesh-intelligence/pantry/pkg/types"
)

// jsonValue is the row type the CLI stores: any JSON value, kept verbatim.
type jsonValue = json.RawMessage

// withStore opens the configured store in mode, runs fn and closes the
// store. A close failure is reported when fn succeeded.
func (a *app) withStore(mode string, fn func(db types.Pantry[jsonValue]) error) (err error) {
	cfg, err := a.storeConfig()
	if err != nil {
		return err
	}
	cfg.Mode = mode

	db, err := pantry.Open[jsonValue](cfg, pantry.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store: %w", cerr)
		}
	}()
	return fn(db)
}

// parseValue turns a command-line argument into a row value. Valid JSON is
// stored as given (compacted); anything else is stored as a JSON string.
func parseValue(arg string) (jsonValue, error) {
	if json.Valid([]byte(arg)) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(arg)); err != nil {
			return nil, fmt.Errorf("compact value: %w", err)
		}
		return jsonValue(buf.Bytes()), nil
	}
	data, err := json.Marshal(arg)
	if err != nil {
		return nil, fmt.Errorf("encode value: %w", err)
	}
	return jsonValue(data), nil
}

// parseID parses a row identifier argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid row id %q: must be an integer", arg)
	}
	return id, nil
}

// writeJSON prints v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
