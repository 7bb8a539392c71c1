package nodestore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aDogCalledSpot/uaevents/pkg/uaevents"
)

// storedValue is the typed JSON envelope variable values are persisted in.
// A bare JSON encoding would collapse NodeID, EventID and time values into
// maps and strings on the way back.
type storedValue struct {
	Kind  string        `json:"kind"`
	Str   string        `json:"str,omitempty"`
	Int   int64         `json:"int,omitempty"`
	Float float64       `json:"float,omitempty"`
	Bool  bool          `json:"bool,omitempty"`
	Bytes []byte        `json:"bytes,omitempty"`
	Time  time.Time     `json:"time,omitzero"`
	Node  *storedNodeID `json:"node,omitempty"`
}

type storedNodeID struct {
	Namespace uint16 `json:"ns"`
	Kind      uint8  `json:"kind"`
	Numeric   uint32 `json:"num,omitempty"`
	Text      string `json:"text,omitempty"`
}

func encodeNodeID(id uaevents.NodeID) *storedNodeID {
	return &storedNodeID{
		Namespace: id.Namespace,
		Kind:      uint8(id.Kind),
		Numeric:   id.Numeric,
		Text:      id.Text,
	}
}

func (s *storedNodeID) decode() uaevents.NodeID {
	return uaevents.NodeID{
		Namespace: s.Namespace,
		Kind:      uaevents.IDKind(s.Kind),
		Numeric:   s.Numeric,
		Text:      s.Text,
	}
}

// encodeValue serializes a variable value into its persisted form.
func encodeValue(value any) ([]byte, error) {
	var sv storedValue
	switch v := value.(type) {
	case nil:
		sv.Kind = "null"
	case string:
		sv.Kind = "string"
		sv.Str = v
	case bool:
		sv.Kind = "bool"
		sv.Bool = v
	case int:
		sv.Kind = "int"
		sv.Int = int64(v)
	case int64:
		sv.Kind = "int"
		sv.Int = v
	case uint16:
		sv.Kind = "int"
		sv.Int = int64(v)
	case uint32:
		sv.Kind = "int"
		sv.Int = int64(v)
	case float64:
		sv.Kind = "float"
		sv.Float = v
	case []byte:
		sv.Kind = "bytes"
		sv.Bytes = v
	case time.Time:
		sv.Kind = "time"
		sv.Time = v
	case uaevents.EventID:
		sv.Kind = "eventid"
		sv.Bytes = v.Bytes()
	case uaevents.NodeID:
		sv.Kind = "nodeid"
		sv.Node = encodeNodeID(v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
	return json.Marshal(sv)
}

// decodeValue restores a persisted variable value.
func decodeValue(data []byte) (any, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var sv storedValue
	if err := json.Unmarshal(data, &sv); err != nil {
		return nil, fmt.Errorf("decode value: %w", err)
	}
	switch sv.Kind {
	case "null", "":
		return nil, nil
	case "string":
		return sv.Str, nil
	case "bool":
		return sv.Bool, nil
	case "int":
		return sv.Int, nil
	case "float":
		return sv.Float, nil
	case "bytes":
		return sv.Bytes, nil
	case "time":
		return sv.Time, nil
	case "eventid":
		var id uaevents.EventID
		if len(sv.Bytes) != len(id) {
			return nil, fmt.Errorf("decode value: eventid has %d bytes", len(sv.Bytes))
		}
		copy(id[:], sv.Bytes)
		return id, nil
	case "nodeid":
		if sv.Node == nil {
			return nil, fmt.Errorf("decode value: nodeid envelope without node")
		}
		return sv.Node.decode(), nil
	default:
		return nil, fmt.Errorf("decode value: unknown kind %q", sv.Kind)
	}
}

// keyOf returns the string key a NodeID is stored under. The JSON form is
// deterministic, so it doubles as a stable primary key.
func keyOf(id uaevents.NodeID) string {
	data, _ := json.Marshal(encodeNodeID(id))
	return string(data)
}

// parseKey restores a NodeID from its stored key.
func parseKey(key string) (uaevents.NodeID, error) {
	var sn storedNodeID
	if err := json.Unmarshal([]byte(key), &sn); err != nil {
		return uaevents.NodeID{}, fmt.Errorf("decode node key: %w", err)
	}
	return sn.decode(), nil
}
