package jsonedit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrFieldNotFound is returned when the pointer does not lead to an object member.
var ErrFieldNotFound = errors.New("field not found")

// Rename moves the member addressed by pointer to target within the same
// parent object. An existing target member is overwritten.
func Rename(value any, pointer []string, target string) error {
	parent, ok := value.(map[string]any)
	if !ok || len(pointer) == 0 {
		return ErrFieldNotFound
	}

	for i, key := range pointer {
		child, found := parent[key]
		if !found {
			return ErrFieldNotFound
		}

		if i == len(pointer)-1 {
			delete(parent, key)
			parent[target] = child

			return nil
		}

		if parent, ok = child.(map[string]any); !ok {
			return ErrFieldNotFound
		}
	}

	return ErrFieldNotFound
}

// RewriteStream renames the field in every JSON value of data, a stream of
// whitespace-separated values such as JSON lines. Each value is re-encoded
// compactly on its own line with object keys sorted. changed reports whether
// at least one value had the field.
func RewriteStream(data []byte, pointer []string, target string) (out []byte, changed bool, err error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var buf bytes.Buffer

	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	for line := 1; ; line++ {
		var value any

		err = decoder.Decode(&value)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, false, fmt.Errorf("decode value %d: %w", line, err)
		}

		switch err = Rename(value, pointer, target); {
		case err == nil:
			changed = true
		case !errors.Is(err, ErrFieldNotFound):
			return nil, false, err
		}

		// Encode appends the newline separating values.
		if err = encoder.Encode(value); err != nil {
			return nil, false, fmt.Errorf("encode value %d: %w", line, err)
		}
	}

	return buf.Bytes(), changed, nil
}
