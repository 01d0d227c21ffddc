package handlers

import (
	"fmt"

	"github.com/SscSPs/token_ledger/internal/core/domain"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// ledgerValidators are the binding tags understood by request DTOs.
var ledgerValidators = map[string]validator.Func{
	"accountname": func(fl validator.FieldLevel) bool {
		return domain.AccountID(fl.Field().String()).Validate() == nil
	},
	"symbolcode": func(fl validator.FieldLevel) bool {
		return domain.SymbolCode(fl.Field().String()).Validate() == nil
	},
	"symbol": func(fl validator.FieldLevel) bool {
		_, err := domain.ParseSymbol(fl.Field().String())
		return err == nil
	},
	"asset": func(fl validator.FieldLevel) bool {
		_, err := domain.ParseAmount(fl.Field().String())
		return err == nil
	},
}

// RegisterValidators installs the ledger binding tags on gin's validator engine.
// It is safe to call more than once.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	for tag, fn := range ledgerValidators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}
