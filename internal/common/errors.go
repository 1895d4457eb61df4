// Package common defines sentinel errors shared by the schema, repository
// and service layers of gophfarm. Callers should use errors.Is to match these
// values; specific errors wrap one of the four classes below.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrorNotFound is returned when a keyed row does not exist.
	ErrorNotFound = errors.New("not found")

	// ErrorValidation marks input rejected before the store is touched.
	ErrorValidation = errors.New("validation error")

	// ErrorConstraint marks a state or key conflict (duplicate primary key,
	// occupied plot). Nothing was written.
	ErrorConstraint = errors.New("constraint violation")

	// ErrorStore marks a driver or IO failure. The enclosing transaction, if
	// any, has been rolled back.
	ErrorStore = errors.New("store error")
)

// Validation errors.
var (
	ErrInvalidIdentifier = fmt.Errorf("%w: invalid identifier", ErrorValidation)
	ErrUnknownField      = fmt.Errorf("%w: unknown plot field", ErrorValidation)
	ErrUnknownCrop       = fmt.Errorf("%w: unknown crop", ErrorValidation)
	ErrInvalidAmount     = fmt.Errorf("%w: invalid amount", ErrorValidation)
	ErrInvalidSlot       = fmt.Errorf("%w: invalid slot index", ErrorValidation)
	ErrSelfTheft         = fmt.Errorf("%w: cannot steal from own farm", ErrorValidation)
)

// Constraint errors.
var (
	ErrPlotOccupied    = fmt.Errorf("%w: plot is already planted", ErrorConstraint)
	ErrPlotNotMature   = fmt.Errorf("%w: plot is not mature", ErrorConstraint)
	ErrAlreadyStolen   = fmt.Errorf("%w: already stolen from this plot", ErrorConstraint)
	ErrNotEnoughItems  = fmt.Errorf("%w: not enough items", ErrorConstraint)
	ErrFarmAlreadyOpen = fmt.Errorf("%w: farm already exists", ErrorConstraint)
)
