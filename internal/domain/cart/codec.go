package cart

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// EncodeItems serializes items as a JSON array of
// {id, name, price, image, quantity} objects.
func EncodeItems(items []LineItem) []byte {
	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, item := range items {
			encodeItem(e, item)
		}
	})
	return e.Bytes()
}

func encodeItem(e *jx.Encoder, item LineItem) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int(item.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(item.Name) })
		e.Field("price", func(e *jx.Encoder) { e.Str(item.Price) })
		e.Field("image", func(e *jx.Encoder) { e.Str(item.Image) })
		e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
	})
}

// DecodeItems parses a snapshot written by EncodeItems. Unknown fields are
// skipped. The result is normalized: duplicate ids are merged into the first
// occurrence and quantities below one are raised to one.
func DecodeItems(data []byte) ([]LineItem, error) {
	var items []LineItem
	d := jx.DecodeBytes(data)
	if err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart items")
	}
	return normalize(items), nil
}

func decodeItem(d *jx.Decoder) (LineItem, error) {
	var item LineItem
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			item.ID, err = d.Int()
		case "name":
			item.Name, err = d.Str()
		case "price":
			item.Price, err = d.Str()
		case "image":
			item.Image, err = d.Str()
		case "quantity":
			item.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	return item, err
}

func normalize(items []LineItem) []LineItem {
	out := make([]LineItem, 0, len(items))
	index := make(map[int]int, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		if i, ok := index[item.ID]; ok {
			out[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(out)
		out = append(out, item)
	}
	return out
}
