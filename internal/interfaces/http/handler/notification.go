package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notificationapp "github.com/jobboard/backend/internal/application/notification"
	"github.com/jobboard/backend/internal/interfaces/http/dto"
)

// NotificationHandler lists the caller's in-app notifications
type NotificationHandler struct {
	BaseHandler
	service *notificationapp.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notificationapp.Service) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// List handles GET /api/v1/notifications
// 
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page       query int    false "Page number" minimum(1)
// @Param        page_size  query int    false "Page size" minimum(1) maximum(100)
// @Param        sort_by    query string false "created_at or read_at"
// @Param        sort_order query string false "asc or desc"
// @Success      200 {object} dto.Response{data=[]notificationapp.NotificationResponse,meta=dto.Meta}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var page dto.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		h.ValidationError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), accountID, page.Filter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPaginatedResponse(result))
}
