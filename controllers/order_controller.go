package controllers

import (
	"net/http"

	"mini-shop/models"
	"mini-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderController struct {
	committer *services.OrderCommitter
	orders    *services.OrderQuery
	logger    *zap.Logger
}

func NewOrderController(committer *services.OrderCommitter, orders *services.OrderQuery, logger *zap.Logger) *OrderController {
	return &OrderController{committer: committer, orders: orders, logger: logger}
}

// @Summary Place order
// @Description Convert the current user's cart into an order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/orders [post]
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	order, err := ctrl.committer.Commit(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	ctrl.logger.Info("order placed",
		zap.Int("order_id", order.ID),
		zap.Int("user_id", order.UserID),
		zap.String("total", order.Total.String()),
	)
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Order created successfully", Data: order})
}

// @Summary List orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /api/orders [get]
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	orders, err := ctrl.orders.List(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Orders retrieved successfully", Data: orders})
}

// @Summary Get order
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orders.GetByID(c.Request.Context(), principal(c).UserID, orderID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order retrieved successfully", Data: order})
}
