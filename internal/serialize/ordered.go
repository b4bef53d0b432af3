package serialize

import (
	"bytes"
	"encoding/json"
)

// orderedObject is a JSON object that marshals its keys in insertion
// order. encoding/json gives no ordering guarantee over map[string]any,
// and record/metadata column order is meaningful to callers.
type orderedObject struct {
	keys   []string
	values []interface{}
}

func newOrderedObject(capHint int) *orderedObject {
	return &orderedObject{keys: make([]string, 0, capHint), values: make([]interface{}, 0, capHint)}
}

func (o *orderedObject) set(key string, val interface{}) {
	o.keys = append(o.keys, key)
	o.values = append(o.values, val)
}

func (o *orderedObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(o.values[i])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
