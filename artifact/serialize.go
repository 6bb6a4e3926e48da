package artifact

import "encoding/json"

// MarshalBundle serialises a Bundle to JSON.
func MarshalBundle(b *Bundle) ([]byte, error) {
	return json.Marshal(b)
}

// UnmarshalBundle deserialises a Bundle from JSON.
func UnmarshalBundle(data []byte) (*Bundle, error) {
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
