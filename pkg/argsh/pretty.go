// SPDX-License-Identifier: MPL-2.0

package argsh

import (
	"encoding/json"
	"fmt"
	"io"
	"reflect"
)

// printResult pretty-prints a command's return value. Absent values print
// nothing; scalars print on one line; composite values print as indented
// JSON, the closest stable rendering for dynamic literal data.
func printResult(w io.Writer, v any) {
	if v == nil {
		return
	}
	fmt.Fprintln(w, formatValue(v))
}

func formatValue(v any) string {
	switch v.(type) {
	case string, bool, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64,
		fmt.Stringer, error:
		return fmt.Sprintf("%v", v)
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct, reflect.Pointer:
		if b, err := json.MarshalIndent(v, "", "  "); err == nil {
			return string(b)
		}
	}
	return fmt.Sprintf("%v", v)
}
