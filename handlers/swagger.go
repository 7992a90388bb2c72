package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger serves a Swagger UI page and the OpenAPI document.
// - GET /swagger/index.html  -> HTML page loading the document
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>docshare API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "docshare", "version": "v1.0.0" },
  "paths": {
    "/publish": {
      "post": {
        "summary": "Publish a document",
        "requestBody": { "required": true, "content": { "application/json": { "schema": {"type":"object","required":["title","content"],"properties":{"title":{"type":"string"},"content":{"type":"string"},"author":{"type":"string"},"fontSize":{"type":"string"},"textColor":{"type":"string"},"textFormat":{"type":"string"},"lineHeight":{"type":"string"},"theme":{"type":"string"},"custom_url":{"type":"string","pattern":"^[A-Za-z0-9-]{3,50}$"}}}}}},
        "responses": { "200": { "description": "id and delete_code" }, "400": { "description": "invalid input" }, "409": { "description": "custom url taken" }, "429": { "description": "rate limited" }, "503": { "description": "store unavailable" } }
      }
    },
    "/document/{id}": {
      "get": { "summary": "Fetch a document", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "document" }, "404": { "description": "not found" } } }
    },
    "/delete/{id}": {
      "delete": { "summary": "Delete a document with its delete code", "parameters": [{"name":"id","in":"path","required":true,"schema":{"type":"string"}},{"name":"code","in":"query","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "deleted" }, "400": { "description": "code missing" }, "403": { "description": "wrong code" }, "404": { "description": "not found" } } }
    },
    "/check-url/{slug}": {
      "get": { "summary": "Check custom url availability", "parameters": [{"name":"slug","in":"path","required":true,"schema":{"type":"string"}}], "responses": { "200": { "description": "availability" } } }
    },
    "/admin/sweep": {
      "post": { "summary": "Run the expiry sweep now", "security": [{"bearerAuth":[]}], "responses": { "200": { "description": "removed count" }, "401": { "description": "unauthorized" }, "403": { "description": "admin role required" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" }, "500": { "description": "unhealthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  },
  "components": { "securitySchemes": { "bearerAuth": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } } }
}`
