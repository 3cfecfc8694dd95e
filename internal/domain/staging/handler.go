package staging

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
	g := api.Group("/predict")
	g.POST("/first", h.predictFirst)
	g.POST("/followup", h.predictFollowup)
}

func (h *Handler) predictFirst(c echo.Context) error {
	var panel FirstPanel
	if err := c.Bind(&panel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pred, err := h.svc.PredictFirst(panel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pred)
}

func (h *Handler) predictFollowup(c echo.Context) error {
	var panel FollowupPanel
	if err := c.Bind(&panel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	pred, err := h.svc.PredictFollowup(panel)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pred)
}

func httpError(err error) error {
	if errors.Is(err, clinic.ErrValidation) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "prediction failed")
}
