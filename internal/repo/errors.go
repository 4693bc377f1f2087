package repo

import "errors"

var (
	ErrDuplicateEntry   = errors.New("duplicate entry")
	ErrNotFound         = errors.New("not found")
	ErrInvalidTarget    = errors.New("target price must be a finite positive number")
	ErrInvalidSymbol    = errors.New("symbol must not be empty")
	ErrInvalidAssetType = errors.New("asset type must be crypto or stock")
	ErrInvalidDirection = errors.New("direction must be above or below")
	ErrInvalidOwner     = errors.New("owner id must not be empty")
	ErrInvalidPrice     = errors.New("price must be a finite positive number")
)
