package handler

import (
	"errors"
	"net/http"
	"time"

	"prepkit-store/internal/dto"
	"prepkit-store/internal/repository"
	"prepkit-store/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type AdminHandler struct {
	adminService service.AdminService
}

func NewAdminHandler(adminService service.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	filter := repository.OrderFilter{
		Plan:      c.QueryParam("filterPlan"),
		Status:    c.QueryParam("filterStatus"),
		Search:    c.QueryParam("search"),
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	}

	if from := c.QueryParam("dateFrom"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dateFrom must be YYYY-MM-DD")
		}
		filter.DateFrom = &t
	}
	if to := c.QueryParam("dateTo"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "dateTo must be YYYY-MM-DD")
		}
		filter.DateTo = &t
	}

	result, err := h.adminService.ListOrders(ctx, filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing order id")
	}

	err := h.adminService.DeleteOrder(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "order not found")
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]bool{"deleted": true})
}

func (h *AdminHandler) Analytics(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.adminService.Analytics(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *AdminHandler) SendEmail(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.adminService.SendBulkEmail(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrNoRecipients) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *AdminHandler) GrantAccess(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.GrantAccessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if req.Email == "" || req.Course == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and course are required")
	}

	result, err := h.adminService.GrantAccess(ctx, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPlan) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, result)
}
