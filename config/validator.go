package config

// Validator configuration sections implement this
type Validator interface {
	Validate() error
}

// ValidateAll returns the first validation error
func ValidateAll(validators ...Validator) error {
	for _, v := range validators {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
