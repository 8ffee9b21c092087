package gateway

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Int64String is a 64-bit integer carried as a JSON string, as protobuf JSON
// encodes int64 and uint64 fields. It accepts bare JSON numbers on input.
type Int64String string

func ToInt64String(v int64) Int64String {
	return Int64String(strconv.FormatInt(v, 10))
}

func (s Int64String) Int64() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
}

func (s Int64String) Uint64() (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(string(s)), 10, 64)
}

func (s *Int64String) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = Int64String(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*s = Int64String(n.String())
	return nil
}
