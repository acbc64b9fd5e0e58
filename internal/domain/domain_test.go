package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserRegistrationState(t *testing.T) {
	u := &User{Phone: "9876543210"}
	assert.False(t, u.IsRegistered())

	u.Name = "Asha"
	assert.False(t, u.IsRegistered())

	u.Email = "asha@example.com"
	assert.True(t, u.IsRegistered())
}

func TestUserOTPExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	code := "123456"
	exp := now.Add(10 * time.Minute)
	u := &User{OTPCode: &code, OTPExpires: &exp}

	assert.True(t, u.HasPendingOTP())
	assert.False(t, u.OTPExpired(now))
	assert.True(t, u.OTPExpired(exp))
	assert.True(t, (&User{}).OTPExpired(now))
}

func TestProductHasStock(t *testing.T) {
	tracked := &Product{Inventory: Inventory{Quantity: 2, TrackQuantity: true}}
	assert.True(t, tracked.HasStock(2))
	assert.False(t, tracked.HasStock(3))

	untracked := &Product{Inventory: Inventory{Quantity: 0}}
	assert.True(t, untracked.HasStock(50))
}

func TestCartTotals(t *testing.T) {
	c := &Cart{Items: []CartItem{
		{ProductID: "a", Quantity: 2, Price: 1500},
		{ProductID: "b", Quantity: 1, Price: 999},
	}}
	assert.Equal(t, 3, c.ItemCount())
	assert.Equal(t, int64(3999), c.Subtotal())
}

func TestOrderReprice(t *testing.T) {
	o := &Order{
		Items:         []OrderItem{{Quantity: 3, Price: 200}, {Quantity: 1, Price: 50}},
		TaxPrice:      65,
		ShippingPrice: 100,
	}
	o.Reprice()
	assert.Equal(t, int64(650), o.ItemsPrice)
	assert.Equal(t, int64(815), o.TotalPrice)
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, OrderStatusDelivered.Valid())
	assert.False(t, OrderStatus("lost").Valid())
}
