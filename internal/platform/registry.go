package platform

import (
	"cpd/internal/models"
	"cpd/internal/providers"
	"cpd/internal/structures"
)

func NewRegistry(conf *structures.Config, logger providers.Logger) Registry {
	return Registry{
		models.PlatformCodeforces: NewCodeforcesClient(conf, logger),
		models.PlatformLeetcode:   NewLeetcodeClient(conf, logger),
	}
}
