package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Adi-aygd/liver-cirrhosis/internal/domain/clinic"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/login", h.login)
}

type loginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	session, err := h.svc.Login(c.Request().Context(), req.Role, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		case errors.Is(err, clinic.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}
	return c.JSON(http.StatusOK, session)
}
