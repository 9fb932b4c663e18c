package internal

import (
	"net/http"

	"cpd/internal/controllers"
	"cpd/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/compare/{peerId}/overview", http.HandlerFunc(apiController.CompareOverview))
	routers.Get("/compare/{peerId}/topics", http.HandlerFunc(apiController.CompareTopics))
	routers.Get("/compare/{peerId}/consistency", http.HandlerFunc(apiController.CompareConsistency))
	routers.Get("/analytics/rating-history", http.HandlerFunc(apiController.RatingHistory))
	routers.Get("/analytics/consistency", http.HandlerFunc(apiController.OwnConsistency))
	routers.Post("/refresh", http.HandlerFunc(apiController.Refresh))
	routers.Post("/handles", http.HandlerFunc(apiController.LinkHandle))
	routers.Delete("/handles", http.HandlerFunc(apiController.UnlinkHandle))
	return routers
}
