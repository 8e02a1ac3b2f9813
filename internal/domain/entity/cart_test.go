package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func testCard(id string) Card {
	return Card{ID: id, Name: "Card " + id, Prices: CardPrices{USD: "1.00"}}
}

func TestCart_Add_NewLineStartsAtOne(t *testing.T) {
	cart := NewCart()

	added := cart.Add(testCard("c1"))

	assert.True(t, added)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.Lines[0].Quantity)
	assert.Equal(t, "c1", cart.Lines[0].Card.ID)
}

func TestCart_Add_ConsolidatesSameCard(t *testing.T) {
	cart := NewCart()

	assert.True(t, cart.Add(testCard("c1")))
	assert.True(t, cart.Add(testCard("c1")))
	assert.True(t, cart.Add(testCard("c2")))

	assert.Len(t, cart.Lines, 2)
	line, index := cart.Line("c1")
	assert.Equal(t, 0, index)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 3, cart.TotalItems())
}

func TestCart_Add_NoOpAtCapacity(t *testing.T) {
	cart := NewCart()
	cart.Lines = []CartLine{{Card: testCard("c1"), Quantity: MaxTotalItems}}

	added := cart.Add(testCard("c2"))

	assert.False(t, added)
	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, MaxTotalItems, cart.TotalItems())
	assert.False(t, cart.CanAddMore())
}

func TestCart_Add_FillsToExactlyCapacity(t *testing.T) {
	cart := NewCart()
	cart.Lines = []CartLine{{Card: testCard("c1"), Quantity: MaxTotalItems - 1}}

	assert.True(t, cart.CanAddMore())
	assert.True(t, cart.Add(testCard("c2")))
	assert.Equal(t, MaxTotalItems, cart.TotalItems())
	assert.False(t, cart.CanAddMore())
	assert.False(t, cart.Add(testCard("c3")))
}

func TestCart_SetQuantity_ClampsToRemainingRoom(t *testing.T) {
	cart := NewCart()
	cart.Lines = []CartLine{
		{Card: testCard("c1"), Quantity: 90},
		{Card: testCard("c2"), Quantity: 5},
	}

	cart.SetQuantity("c2", 50)

	line, _ := cart.Line("c2")
	assert.Equal(t, MaxTotalItems-90, line.Quantity)
	assert.Equal(t, MaxTotalItems, cart.TotalItems())
}

func TestCart_SetQuantity_ZeroRemovesLine(t *testing.T) {
	cart := NewCart()
	cart.Add(testCard("c1"))
	cart.Add(testCard("c2"))

	cart.SetQuantity("c1", 0)

	assert.Len(t, cart.Lines, 1)
	line, index := cart.Line("c1")
	assert.Nil(t, line)
	assert.Equal(t, -1, index)
}

func TestCart_SetQuantity_NegativeRemovesLine(t *testing.T) {
	cart := NewCart()
	cart.Add(testCard("c1"))

	cart.SetQuantity("c1", -3)

	assert.Empty(t, cart.Lines)
}

func TestCart_SetQuantity_UnknownCardIgnored(t *testing.T) {
	cart := NewCart()
	cart.Add(testCard("c1"))

	cart.SetQuantity("missing", 5)

	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, 1, cart.TotalItems())
}

func TestCart_Remove(t *testing.T) {
	cart := NewCart()
	cart.Add(testCard("c1"))
	cart.Add(testCard("c2"))

	cart.Remove("c1")
	cart.Remove("missing")

	assert.Len(t, cart.Lines, 1)
	assert.Equal(t, "c2", cart.Lines[0].Card.ID)
}

func TestCart_Clear(t *testing.T) {
	cart := NewCart()
	cart.Add(testCard("c1"))
	cart.Add(testCard("c2"))

	cart.Clear()

	assert.Empty(t, cart.Lines)
	assert.Equal(t, 0, cart.TotalItems())
	assert.True(t, cart.CanAddMore())
}

func TestCartLine_Valid(t *testing.T) {
	valid := CartLine{Card: testCard("c1"), Quantity: 1}
	assert.True(t, valid.Valid())

	noID := CartLine{Card: Card{Name: "Nameless"}, Quantity: 1}
	assert.False(t, noID.Valid())

	noName := CartLine{Card: Card{ID: "c1"}, Quantity: 1}
	assert.False(t, noName.Valid())

	zeroQty := CartLine{Card: testCard("c1"), Quantity: 0}
	assert.False(t, zeroQty.Valid())

	negativeQty := CartLine{Card: testCard("c1"), Quantity: -2}
	assert.False(t, negativeQty.Valid())
}
