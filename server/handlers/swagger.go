package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"quoteserver/docs"
)

// RegisterSwaggerRoutes регистрирует маршруты Swagger в Gin роутере
func RegisterSwaggerRoutes(router *gin.Engine) {
	// Устанавливаем информацию о Swagger из сгенерированной документации
	docs.SwaggerInfo.Host = "localhost:9090"
	docs.SwaggerInfo.BasePath = "/api"
	docs.SwaggerInfo.Schemes = []string{"http", "https"}

	// Используем URL опцию для явного указания пути к doc.json
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))
}
