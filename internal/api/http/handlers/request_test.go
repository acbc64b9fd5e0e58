package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/storefront-api/internal/api/dto"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

func TestValidateStructUsesJSONNames(t *testing.T) {
	err := validateStruct(&dto.PlaceOrderRequest{
		OrderItems:    []dto.OrderLineRequest{{ProductID: "nope", Quantity: 0}},
		PaymentMethod: "card",
	})
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidation, domainErr.Code)
	assert.Equal(t, "must be a valid id", domainErr.Details["orderItems[0].productId"])
	assert.Equal(t, "is required", domainErr.Details["orderItems[0].quantity"])
	assert.Equal(t, "is required", domainErr.Details["shippingAddress.fullName"])
}

func TestValidateStructAcceptsValidPayload(t *testing.T) {
	assert.NoError(t, validateStruct(&dto.VerifyOTPRequest{Phone: "9876543210", OTP: "123456"}))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "otp", fieldPath("VerifyOTPRequest.otp"))
	assert.Equal(t, "plain", fieldPath("plain"))
}
