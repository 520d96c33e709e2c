package shape

import (
	"encoding/json"
	"fmt"
)

// Descriptor wraps a Shape for JSON, tagging it with its kind.
type Descriptor struct {
	Shape Shape
}

type envelope struct {
	Type Kind            `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (d Descriptor) MarshalJSON() ([]byte, error) {
	if d.Shape == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(d.Shape)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: d.Shape.Kind(), Data: data})
}

func (d *Descriptor) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		d.Shape = nil
		return nil
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("decode shape envelope: %w", err)
	}
	var s Shape
	var err error
	switch env.Type {
	case KindLine:
		var v Line
		err = json.Unmarshal(env.Data, &v)
		s = v
	case KindCircle:
		var v Circle
		err = json.Unmarshal(env.Data, &v)
		s = v
	case KindEllipse:
		var v Ellipse
		err = json.Unmarshal(env.Data, &v)
		s = v
	case KindRectangle:
		var v Rectangle
		err = json.Unmarshal(env.Data, &v)
		s = v
	case KindSquare:
		var v Square
		err = json.Unmarshal(env.Data, &v)
		s = v
	default:
		return fmt.Errorf("decode shape: unknown type %q", env.Type)
	}
	if err != nil {
		return fmt.Errorf("decode %s: %w", env.Type, err)
	}
	d.Shape = s
	return nil
}
