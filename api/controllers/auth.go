package controllers

import (
	"net/http"
	"strings"

	"github.com/openlims/lims-backend/api/responses"
	"github.com/openlims/lims-backend/api/validators"
	"github.com/openlims/lims-backend/internal/auth"
	pkgerrors "github.com/openlims/lims-backend/pkg/errors"
	"github.com/openlims/lims-backend/pkg/logger"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	User    loginUser `json:"user"`
	Token   string    `json:"token"`
}

// AuthLogin wires the login endpoint into the HTTP layer.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if strings.TrimSpace(body.Username) == "" || body.Password == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "Username and password required"))
			return
		}

		result, err := svc.Login(r.Context(), auth.LoginInput{
			Username: body.Username,
			Password: body.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, loginResponse{
			Success: true,
			Message: "Login successful",
			User: loginUser{
				ID:       result.UserID,
				Username: result.Username,
				Role:     result.Role,
			},
			Token: result.Token,
		})
	}
}
