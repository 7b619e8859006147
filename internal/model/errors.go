package model

import "fmt"

func errNParamsMismatch(got, want int) error {
	return fmt.Errorf("model: parameter vector has length %d, want %d", got, want)
}
