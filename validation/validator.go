package validation

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/matink112/TradeEngine/models"
)

const MaxRequestBodySize = 1024 * 1024

var (
	ErrPriceRequired     = errors.New("price is required for limit orders")
	ErrPriceForbidden    = errors.New("market orders must not carry a price")
	ErrNonPositivePrice  = errors.New("price must be > 0")
	ErrNonPositiveAmount = errors.New("quantity must be > 0")
	ErrEmptyModify       = errors.New("modify requires quantity or price")

	validate     *validator.Validate
	onceValidate sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	onceValidate.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateSubmit checks a submit payload: tag rules plus the cross-field
// constraints the tags cannot express. The engine re-checks the same rules;
// rejecting here keeps bad requests away from the book entirely.
func ValidateSubmit(req *models.SubmitOrderRequest) error {
	if err := GetValidator().Struct(req); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}

	if !req.Quantity.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrNonPositiveAmount, req.Quantity)
	}

	switch req.Type {
	case models.OrderTypeLimit:
		if req.Price == nil {
			return ErrPriceRequired
		}
		if !req.Price.IsPositive() {
			return fmt.Errorf("%w, got %s", ErrNonPositivePrice, req.Price)
		}
	case models.OrderTypeMarket:
		if req.Price != nil {
			return ErrPriceForbidden
		}
	}

	return nil
}

// ValidateModify checks a modify payload.
func ValidateModify(req *models.ModifyOrderRequest) error {
	if req.Quantity == nil && req.Price == nil {
		return ErrEmptyModify
	}
	if req.Quantity != nil && !req.Quantity.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrNonPositiveAmount, req.Quantity)
	}
	if req.Price != nil && !req.Price.IsPositive() {
		return fmt.Errorf("%w, got %s", ErrNonPositivePrice, req.Price)
	}
	return nil
}
