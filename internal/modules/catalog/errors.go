package catalog

import "errors"

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrRuleNotFound         = errors.New("addon rule not found")
	ErrMethodNotFound       = errors.New("payment method not found")
	ErrNeighborhoodNotFound = errors.New("neighborhood not found")
)
