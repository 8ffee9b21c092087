package gateway

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

const encTable = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

// decTable maps an input byte to its sextet, or -1. Both the standard and
// the URL-safe alphabet decode to the same values.
var decTable [256]int8

func init() {
	for i := range decTable {
		decTable[i] = -1
	}
	for i := 0; i < len(encTable); i++ {
		decTable[encTable[i]] = int8(i)
	}
	decTable['-'] = decTable['+']
	decTable['_'] = decTable['/']
}

// EncodeBase64 encodes bytes with the standard alphabet and padding, the
// representation protobuf JSON uses for bytes fields.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 accepts standard and URL-safe input, padded or not, and
// ignores whitespace anywhere in the string. Padding resets the group so
// concatenated padded chunks decode as well.
func DecodeBase64(s string) ([]byte, error) {
	out := make([]byte, 0, len(s)*3/4)
	var (
		group int
		prev  byte
	)
	for i := 0; i < len(s); i++ {
		c := s[i]
		v := decTable[c]
		if v < 0 {
			switch c {
			case '=':
				if group == 1 {
					return nil, fmt.Errorf("%w: dangling sextet before padding at offset %d", ErrInvalidBase64, i)
				}
				group = 0
				continue
			case '\n', '\r', '\t', ' ':
				continue
			default:
				return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrInvalidBase64, c, i)
			}
		}
		b := byte(v)
		switch group {
		case 0:
			prev = b
			group = 1
		case 1:
			out = append(out, prev<<2|(b&48)>>4)
			prev = b
			group = 2
		case 2:
			out = append(out, (prev&15)<<4|(b&60)>>2)
			prev = b
			group = 3
		case 3:
			out = append(out, (prev&3)<<6|b)
			group = 0
		}
	}
	if group == 1 {
		return nil, fmt.Errorf("%w: truncated final group", ErrInvalidBase64)
	}
	return out, nil
}

// Bytes is a bytes field that travels as a base64 string in JSON.
type Bytes []byte

func (b Bytes) MarshalJSON() ([]byte, error) {
	return json.Marshal(EncodeBase64(b))
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	decoded, err := DecodeBase64(s)
	if err != nil {
		return err
	}
	*b = decoded
	return nil
}
