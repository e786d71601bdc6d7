package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/sales/internal/domain"
	"github.com/vladislavdragonenkov/sales/internal/service/sales"
)

// Server — HTTP-фасад сервиса продаж.
type Server struct {
	engine *gin.Engine
	sales  *sales.Service
	logger *log.Entry
}

// NewServer собирает gin-движок и регистрирует маршруты.
func NewServer(service *sales.Service, logger *log.Entry) *Server {
	if logger == nil {
		logger = log.New().WithField("component", "httpapi")
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s := &Server{engine: r, sales: service, logger: logger}
	s.registerRoutes()
	return s
}

// Engine возвращает gin-движок для запуска и тестов.
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/api/v1")
	{
		group := v1.Group("/sales")
		group.POST("", s.createSale)
		group.GET("", s.listSales)
		group.GET(":saleId", s.getSale)
		group.PUT(":saleId", s.updateSale)
		group.DELETE(":saleId", s.deleteSale)
		group.DELETE(":saleId/product/:productId", s.cancelItem)
	}
}

type createSaleRequest struct {
	CartID string    `json:"cartId"`
	Date   time.Time `json:"date"`
	Branch string    `json:"branch"`
}

type saleProductRequest struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type updateSaleRequest struct {
	UserID   string               `json:"userId"`
	Date     time.Time            `json:"date"`
	Products []saleProductRequest `json:"products"`
}

type saleProductResponse struct {
	ID          uuid.UUID `json:"id"`
	ProductID   uuid.UUID `json:"productId"`
	Quantity    int       `json:"quantity"`
	UnitPrice   float64   `json:"unitPrice"`
	Discount    float64   `json:"discount"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
}

type saleResponse struct {
	ID          uuid.UUID             `json:"id"`
	Number      int64                 `json:"number"`
	UserID      uuid.UUID             `json:"userId"`
	Branch      string                `json:"branch"`
	Date        time.Time             `json:"date"`
	Status      string                `json:"status"`
	TotalAmount float64               `json:"totalAmount"`
	Products    []saleProductResponse `json:"products"`
}

type listSalesResponse struct {
	Data        []saleResponse `json:"data"`
	TotalItems  int            `json:"totalItems"`
	CurrentPage int            `json:"currentPage"`
	TotalPages  int            `json:"totalPages"`
}

func (s *Server) createSale(c *gin.Context) {
	var req createSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	cartID, err := uuid.Parse(req.CartID)
	if err != nil && req.CartID != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cartId must be a valid uuid"})
		return
	}

	sale, err := s.sales.CreateSale(c.Request.Context(), sales.CreateSaleInput{
		CartID: cartID,
		Date:   req.Date,
		Branch: req.Branch,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toSaleResponse(sale))
}

func (s *Server) getSale(c *gin.Context) {
	id, ok := parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	sale, err := s.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(sale))
}

func (s *Server) updateSale(c *gin.Context) {
	id, ok := parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	var req updateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil && req.UserID != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId must be a valid uuid"})
		return
	}

	products := make([]domain.ItemInput, 0, len(req.Products))
	for _, p := range req.Products {
		productID, err := uuid.Parse(p.ProductID)
		if err != nil {
			productID = uuid.Nil
		}
		products = append(products, domain.ItemInput{
			ProductID: productID,
			Quantity:  p.Quantity,
			UnitPrice: p.UnitPrice,
		})
	}

	sale, err := s.sales.UpdateSale(c.Request.Context(), sales.UpdateSaleInput{
		ID:       id,
		UserID:   userID,
		Date:     req.Date,
		Products: products,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSaleResponse(sale))
}

func (s *Server) deleteSale(c *gin.Context) {
	id, ok := parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	if err := s.sales.DeleteSale(c.Request.Context(), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) cancelItem(c *gin.Context) {
	saleID, ok := parseUUIDParam(c, "saleId")
	if !ok {
		return
	}
	productID, ok := parseUUIDParam(c, "productId")
	if !ok {
		return
	}
	result, err := s.sales.CancelItem(c.Request.Context(), saleID, productID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"saleId":    result.SaleID,
		"productId": result.ProductID,
	})
}

func (s *Server) listSales(c *gin.Context) {
	page := queryInt(c, "page", 1)
	size := queryInt(c, "size", 10)
	order := c.Query("order")

	result, err := s.sales.ListSales(c.Request.Context(), sales.ListSalesInput{
		Page:  page,
		Size:  size,
		Order: order,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}

	data := make([]saleResponse, 0, len(result.Sales))
	for _, sale := range result.Sales {
		data = append(data, toSaleResponse(sale))
	}
	totalPages := result.TotalItems / size
	if result.TotalItems%size != 0 {
		totalPages++
	}
	c.JSON(http.StatusOK, listSalesResponse{
		Data:        data,
		TotalItems:  result.TotalItems,
		CurrentPage: page,
		TotalPages:  totalPages,
	})
}

// writeError отображает доменные ошибки на HTTP-статусы.
func (s *Server) writeError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case domain.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		s.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a valid uuid"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func toSaleResponse(sale domain.Sale) saleResponse {
	products := make([]saleProductResponse, 0, len(sale.Items))
	for _, item := range sale.Items {
		products = append(products, saleProductResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Discount:    item.Discount,
			TotalAmount: item.TotalAmount,
			Status:      string(item.Status),
		})
	}
	return saleResponse{
		ID:          sale.ID,
		Number:      sale.Number,
		UserID:      sale.UserID,
		Branch:      sale.Branch,
		Date:        sale.Date,
		Status:      string(sale.Status),
		TotalAmount: sale.TotalAmount,
		Products:    products,
	}
}
