// Package cart implements the per-user POS cart: an ephemeral
// selection of products and quantities keyed to a single session
// type, awaiting checkout.  The cart is loaded at the start of a
// request, mutated, and saved back by the request layer; it is never
// ambient global state.
package cart

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/shopspring/decimal"
)

// Sentinel errors returned by cart transitions.  Handlers translate
// these into 400 responses.
var (
	ErrNoSessionType = errors.New("no session type selected")
	ErrNotInCart     = errors.New("product not in cart")
	ErrEmpty         = errors.New("cart is empty")
)

// Item is one cart line.  Price is the session-product price captured
// at add time; it is a point-in-time snapshot and is not re-validated
// against the catalog on later reads.
type Item struct {
	ProductID uint64          // product the line refers to
	Name      string          // product name snapshot
	Price     decimal.Decimal // unit price snapshot, exact decimal
	Quantity  uint32          // always >= 1 while the line exists
}

// itemJSON is the wire form of an Item.  Price travels as a string
// with exactly two fractional digits so the stored value is stable
// across serialize/deserialize cycles.
type itemJSON struct {
	ProductID uint64 `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  uint32 `json:"quantity"`
}

// MarshalJSON renders the price with a fixed two-digit scale.
func (i Item) MarshalJSON() ([]byte, error) {
	return json.Marshal(itemJSON{
		ProductID: i.ProductID,
		Name:      i.Name,
		Price:     i.Price.StringFixed(2),
		Quantity:  i.Quantity,
	})
}

// UnmarshalJSON parses the price back into an exact decimal.
func (i *Item) UnmarshalJSON(data []byte) error {
	var w itemJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	price, err := decimal.NewFromString(w.Price)
	if err != nil {
		return err
	}
	i.ProductID = w.ProductID
	i.Name = w.Name
	i.Price = price
	i.Quantity = w.Quantity
	return nil
}

// Summary is recomputed after every cart mutation.  Total is the
// exact sum of price×quantity over all lines, formatted to two
// decimal places; ItemCount is the sum of quantities.
type Summary struct {
	Total     string `json:"total"`
	ItemCount int    `json:"item_count"`
}

// Cart holds a user's pending selection.  All items belong to the
// session type identified by SessionTypeID; changing session type
// clears the items.  A zero SessionTypeID means no session type has
// been chosen yet.  Items is keyed by the decimal string form of the
// product id.
type Cart struct {
	SessionTypeID uint64          `json:"session_type_id"`
	Items         map[string]Item `json:"items"`
}

// New returns an empty cart with no session type selected.
func New() *Cart {
	return &Cart{Items: map[string]Item{}}
}

// SelectSessionType re-keys the cart to the given session type.  When
// the session type actually changes, all items are cleared so the
// invariant that every line belongs to one session type holds.
// Selecting the current session type again is a no-op.  It reports
// whether the cart was modified.
func (c *Cart) SelectSessionType(sessionTypeID uint64) bool {
	if c.SessionTypeID == sessionTypeID {
		return false
	}
	c.SessionTypeID = sessionTypeID
	c.Items = map[string]Item{}
	return true
}

// Add records qty units of the given product at the given price.  A
// non-positive quantity is coerced to 1.  If the product already has
// a line, the quantity accumulates and the original name/price
// snapshot is kept; otherwise a new line captures name and price at
// add time.  Fails with ErrNoSessionType when no session type has
// been selected.
func (c *Cart) Add(productID uint64, name string, price decimal.Decimal, qty int) error {
	if c.SessionTypeID == 0 {
		return ErrNoSessionType
	}
	if qty <= 0 {
		qty = 1
	}
	key := itemKey(productID)
	if item, ok := c.Items[key]; ok {
		item.Quantity += uint32(qty)
		c.Items[key] = item
		return nil
	}
	c.Items[key] = Item{
		ProductID: productID,
		Name:      name,
		Price:     price,
		Quantity:  uint32(qty),
	}
	return nil
}

// Update replaces the quantity of an existing line.  A quantity of
// zero or less removes the line.  Fails with ErrNotInCart when the
// product has no line, so callers can report the error instead of
// silently doing nothing.
func (c *Cart) Update(productID uint64, qty int) error {
	key := itemKey(productID)
	item, ok := c.Items[key]
	if !ok {
		return ErrNotInCart
	}
	if qty <= 0 {
		delete(c.Items, key)
		return nil
	}
	item.Quantity = uint32(qty)
	c.Items[key] = item
	return nil
}

// Clear empties the items while preserving the selected session type.
func (c *Cart) Clear() {
	c.Items = map[string]Item{}
}

// Summarize computes the cart summary from the current lines using
// exact decimal arithmetic.
func (c *Cart) Summarize() Summary {
	total := decimal.Zero
	count := 0
	for _, item := range c.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		count += int(item.Quantity)
	}
	return Summary{
		Total:     total.StringFixed(2),
		ItemCount: count,
	}
}

func itemKey(productID uint64) string {
	return strconv.FormatUint(productID, 10)
}
