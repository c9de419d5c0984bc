package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/basket/pkg/types"
)

// Layout selects how the cart is serialized under its storage key.
type Layout string

const (
	// LayoutArray stores a JSON array of lines: [{"id":1,...,"qty":2}].
	LayoutArray Layout = "array"
	// LayoutMap stores a JSON object keyed by line key: {"r1|m1":{...}}.
	LayoutMap Layout = "map"
)

var errUnknownLayout = errors.New("unknown cart layout")

// ParseLayout validates a layout name from configuration.
func ParseLayout(s string) (Layout, error) {
	switch Layout(s) {
	case LayoutArray, LayoutMap:
		return Layout(s), nil
	case "":
		return LayoutArray, nil
	default:
		return "", fmt.Errorf("%w: %q", errUnknownLayout, s)
	}
}

// mapValue decodes one value of the map layout. It accepts both a flat line
// and the wrapped {"item": {...}, "qty": n} form.
type mapValue struct {
	types.CartLine
	Item *wrappedItem `json:"item,omitempty"`
}

// wrappedItem is the item of the wrapped form, which may name its
// restaurant as restaurantName.
type wrappedItem struct {
	types.CartLine
	RestaurantNameAlt string `json:"restaurantName,omitempty"`
}

// rejected records a line dropped during decoding.
type rejected struct {
	key    string
	reason string
}

// encode serializes lines in the given layout. Lines must already be in key
// order for the array layout to be deterministic.
func encode(layout Layout, c Cart) ([]byte, error) {
	if layout == LayoutMap {
		m := make(map[string]types.CartLine, len(c.Lines))
		for _, l := range c.Lines {
			m[l.Key()] = l
		}
		return json.Marshal(m)
	}
	return json.Marshal(c.Lines)
}

// decode parses either layout regardless of the configured one, so a store
// can read data written by the other variant. Lines with a non-positive
// quantity or an empty key are dropped, and in the array layout the first
// occurrence of a key wins.
func decode(data []byte) (map[string]types.CartLine, []rejected, error) {
	data = bytes.TrimSpace(data)
	lines := make(map[string]types.CartLine)
	var dropped []rejected

	keep := func(l types.CartLine) {
		key := l.Key()
		switch {
		case key == "":
			dropped = append(dropped, rejected{key: key, reason: "empty key"})
		case l.Quantity < 1:
			dropped = append(dropped, rejected{key: key, reason: "non-positive quantity"})
		default:
			if _, dup := lines[key]; dup {
				dropped = append(dropped, rejected{key: key, reason: "duplicate key"})
				return
			}
			lines[key] = l
		}
	}

	if len(data) == 0 {
		return lines, nil, nil
	}

	switch data[0] {
	case '[':
		var arr []types.CartLine
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, nil, err
		}
		for _, l := range arr {
			keep(l)
		}
	case '{':
		var m map[string]mapValue
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, nil, err
		}
		for _, k := range sortedKeys(m) {
			v := m[k]
			l := v.CartLine
			if v.Item != nil {
				l = v.Item.CartLine
				l.Quantity = v.Quantity
				if l.RestaurantName == "" {
					l.RestaurantName = v.Item.RestaurantNameAlt
				}
			}
			restaurantID, id := types.SplitKey(k)
			if l.ID == "" {
				l.ID = id
			}
			if l.RestaurantID == "" {
				l.RestaurantID = restaurantID
			}
			keep(l)
		}
	case 'n':
		if string(data) != "null" {
			return nil, nil, fmt.Errorf("unexpected cart data")
		}
	default:
		return nil, nil, fmt.Errorf("unexpected cart data")
	}
	return lines, dropped, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
