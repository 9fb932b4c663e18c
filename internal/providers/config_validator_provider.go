package providers

import (
	"cpd/internal/structures"
	"fmt"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if cv.conf.Platforms.Codeforces.MaxRating <= cv.conf.Platforms.Codeforces.MinRating {
		return fmt.Errorf("invalid config: codeforces rating range is empty")
	}
	if cv.conf.Platforms.Leetcode.MaxRating <= cv.conf.Platforms.Leetcode.MinRating {
		return fmt.Errorf("invalid config: leetcode rating range is empty")
	}
	return nil
}
