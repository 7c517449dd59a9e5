package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SwaggerHostUpdater updates the served spec's host at request time.
// Pass a function that writes docs.SwaggerInfo.Host:
//
//	func(host string) { docs.SwaggerInfo.Host = host }
type SwaggerHostUpdater func(host string)

// RegisterSwagger registers the swagger UI endpoint with the host
// taken from each request. The caller must import its docs package
// for the spec to be registered.
func (a *App) RegisterSwagger(hostUpdater SwaggerHostUpdater) {
	a.engine.GET("/swagger/*any", func(c *gin.Context) {
		// Supports X-Forwarded-Host for reverse proxy setups
		host := c.GetHeader("X-Forwarded-Host")
		if host == "" {
			host = c.Request.Host
		}

		if hostUpdater != nil {
			hostUpdater(host)
		}

		handler := ginSwagger.WrapHandler(
			swaggerFiles.Handler,
			ginSwagger.DefaultModelsExpandDepth(-1),
		)
		handler(c)
	})

	a.logger.Info().
		Str("path", "/swagger/index.html").
		Msg("Swagger UI registered with dynamic host")
}

// RegisterSwaggerWithDocs registers swagger with a custom docs handler
func (a *App) RegisterSwaggerWithDocs(docsHandler gin.HandlerFunc) {
	a.engine.GET("/swagger/*any", docsHandler)
	a.logger.Info().
		Str("path", "/swagger/index.html").
		Msg("Swagger UI registered with custom handler")
}
