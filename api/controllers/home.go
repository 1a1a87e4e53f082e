package controllers

import (
	"net/http"

	"github.com/openlims/lims-backend/pkg/config"
)

const welcomePage = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Electronics Lab Inventory LIMS</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background-color: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 4px rgba(0,0,0,0.1); }
        h1 { color: #2c3e50; }
        .endpoint { background: #ecf0f1; padding: 10px; margin: 8px 0; border-radius: 4px; font-family: monospace; }
        .status { color: #27ae60; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Electronics Lab Inventory Management System</h1>
        <p class="status">Backend API is running</p>
        <h2>Available Endpoints</h2>
        <div class="endpoint">GET /health - Service health check</div>
        <div class="endpoint">POST /login - Authenticate and obtain a token</div>
        <div class="endpoint">GET /components - List inventory components</div>
        <div class="endpoint">GET /components/{id} - Component detail</div>
        <div class="endpoint">POST /components - Create a component (auth)</div>
        <div class="endpoint">POST /components/{id}/stock - Adjust stock (auth)</div>
        <div class="endpoint">GET /components/{id}/transactions - Stock ledger (auth)</div>
        <div class="endpoint">GET /metrics - Prometheus metrics</div>
    </div>
</body>
</html>
`

// Home serves the HTML welcome page.
func Home(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(welcomePage))
	}
}
