package usecase

import "fmt"

// DataQualityError is fatal for a single execution: a column ended up with
// zero usable observations and training or forecasting must not proceed on
// synthetic-only data.
type DataQualityError struct {
	Column string
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("column %q has no usable observations after imputation", e.Column)
}
