package controllers

import (
	"net/http"

	"mini-shop/models"
	"mini-shop/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CartController struct {
	carts  *services.CartService
	logger *zap.Logger
}

func NewCartController(carts *services.CartService, logger *zap.Logger) *CartController {
	return &CartController{carts: carts, logger: logger}
}

// @Summary Get cart
// @Description Get the current user's cart with product details and total
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.CartResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.carts.Get(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	c.JSON(http.StatusOK, models.CartResponse{
		Success: true,
		Message: "Cart retrieved successfully",
		Data:    cart,
		Total:   cart.Total(),
	})
}

// @Summary Add item to cart
// @Description Add a product to the cart, or increase its quantity if already present
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Cart item"
// @Success 201 {object} models.Response
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /api/cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, created, err := ctrl.carts.Add(c.Request.Context(), principal(c).UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Item added to cart", Data: item})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart item quantity updated", Data: item})
}

// @Summary Update cart item
// @Description Set an item's quantity; zero or less removes it
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Cart item ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart/items/{id} [put]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	item, removed, err := ctrl.carts.UpdateItem(c.Request.Context(), principal(c).UserID, itemID, *req.Quantity)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}

	if removed {
		c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart"})
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart item updated", Data: item})
}

// @Summary Remove cart item
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Cart item ID"
// @Success 200 {object} models.Response
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	itemID, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := ctrl.carts.RemoveItem(c.Request.Context(), principal(c).UserID, itemID); err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart"})
}

// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	removed, err := ctrl.carts.Clear(c.Request.Context(), principal(c).UserID)
	if err != nil {
		respondError(c, ctrl.logger, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Cart cleared",
		Data:    gin.H{"removed": removed},
	})
}
