package clinic

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Adi-aygd/liver-cirrhosis/pkg/pagination"
)

// DocumentRenderer formats one fully-resolved report triple into a printable
// document. Implemented by internal/platform/report and injected from main so
// the store stays free of rendering concerns.
type DocumentRenderer interface {
	Render(r *LabReport, p *Patient, d *Doctor) []byte
}

// Handler exposes one route group per role surface: admin intake, patient
// booking, doctor prescriptions, lab reports.
type Handler struct {
	svc  *Service
	docs DocumentRenderer
}

func NewHandler(svc *Service, docs DocumentRenderer) *Handler {
	return &Handler{svc: svc, docs: docs}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := api.Group("/admin")
	admin.POST("/doctors", h.AddDoctor)
	admin.GET("/doctors", h.ListDoctors)
	admin.DELETE("/doctors/:index", h.RemoveDoctor)
	admin.POST("/lab-assistants", h.AddLabAssistant)
	admin.GET("/lab-assistants", h.ListLabAssistants)
	admin.DELETE("/lab-assistants/:index", h.RemoveLabAssistant)

	patients := api.Group("/patients")
	patients.POST("", h.RegisterPatient)
	patients.GET("", h.ListPatients)
	patients.GET("/:id", h.GetPatient)
	patients.GET("/:id/appointments", h.PatientAppointments)
	patients.POST("/:id/appointments", h.BookAppointment)
	patients.GET("/:id/prescriptions", h.PatientPrescriptions)
	patients.GET("/:id/reports", h.PatientReports)
	patients.GET("/:id/can-book", h.CanBook)

	doctors := api.Group("/doctors")
	doctors.GET("", h.ListDoctors)
	doctors.GET("/:id", h.GetDoctor)
	doctors.GET("/:id/appointments", h.DoctorAppointments)
	doctors.POST("/:id/prescriptions", h.AddPrescription)

	lab := api.Group("/lab")
	lab.GET("/reports", h.ListReports)
	lab.POST("/reports", h.AddLabReport)
	lab.GET("/reports/:id", h.GetReport)
	lab.PUT("/reports/:id/prescription", h.AnnotateReport)
	lab.GET("/reports/:id/document", h.ReportDocument)
}

// -- Admin surface --

func (h *Handler) AddDoctor(c echo.Context) error {
	var d Doctor
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddDoctor(c.Request().Context(), &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) AddLabAssistant(c echo.Context) error {
	var la LabAssistant
	if err := c.Bind(&la); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddLabAssistant(c.Request().Context(), &la); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, la)
}

func (h *Handler) ListLabAssistants(c echo.Context) error {
	items, err := h.svc.LabAssistants(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) RemoveDoctor(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	removed, err := h.svc.RemoveDoctor(c.Request().Context(), index)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "no doctor at that position")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) RemoveLabAssistant(c echo.Context) error {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid index")
	}
	removed, err := h.svc.RemoveLabAssistant(c.Request().Context(), index)
	if err != nil {
		return httpError(err)
	}
	if !removed {
		return echo.NewHTTPError(http.StatusNotFound, "no lab assistant at that position")
	}
	return c.NoContent(http.StatusNoContent)
}

// -- Patient surface --

func (h *Handler) RegisterPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.RegisterPatient(c.Request().Context(), &p); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	items, err := h.svc.Patients(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) PatientAppointments(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.PatientAppointments(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type bookRequest struct {
	DoctorID int64  `json:"doctor_id"`
	Date     string `json:"date"`
}

func (h *Handler) BookAppointment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var req bookRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a, err := h.svc.BookAppointment(c.Request().Context(), id, req.DoctorID, req.Date)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *Handler) PatientPrescriptions(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, p.Prescriptions)
}

func (h *Handler) PatientReports(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	items, err := h.svc.PatientReports(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) CanBook(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	ok, err := h.svc.CanBook(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"can_book": ok})
}

// -- Doctor surface --

func (h *Handler) ListDoctors(c echo.Context) error {
	items, err := h.svc.Doctors(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) DoctorAppointments(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var prescribed *bool
	if q := c.QueryParam("prescribed"); q != "" {
		v, err := strconv.ParseBool(q)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid prescribed filter")
		}
		prescribed = &v
	}
	items, err := h.svc.DoctorAppointments(c.Request().Context(), id, prescribed)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

type prescriptionRequest struct {
	PatientID    int64  `json:"patient_id"`
	Prescription string `json:"prescription"`
	Precautions  string `json:"precautions"`
	NextDate     string `json:"next_date"`
}

func (h *Handler) AddPrescription(c echo.Context) error {
	doctorID, err := paramID(c)
	if err != nil {
		return err
	}
	var req prescriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	outcome, err := h.svc.AddPrescription(c.Request().Context(), req.PatientID, doctorID, req.Prescription, req.Precautions, req.NextDate)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, outcome)
}

// -- Lab surface --

func (h *Handler) ListReports(c echo.Context) error {
	items, err := h.svc.Reports(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	pg := pagination.FromContext(c)
	return c.JSON(http.StatusOK, pagination.NewResponse(pagination.Slice(items, pg), len(items), pg.Limit, pg.Offset))
}

type labReportRequest struct {
	PatientID int64     `json:"patient_id"`
	DoctorID  int64     `json:"doctor_id"`
	Values    LabValues `json:"values"`
}

func (h *Handler) AddLabReport(c echo.Context) error {
	var req labReportRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.AddLabReport(c.Request().Context(), req.PatientID, req.DoctorID, req.Values)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) GetReport(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	r, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) AnnotateReport(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var a Annotation
	if err := c.Bind(&a); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	r, err := h.svc.AddPrescriptionToReport(c.Request().Context(), id, a)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ReportDocument(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	r, p, d, err := h.svc.ResolveReport(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, echo.MIMETextPlainCharsetUTF8, h.docs.Render(r, p, d))
}

// -- Helpers --

func paramID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidState):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
