package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/Itstouseef/billing-system/internal/models"
	"github.com/Itstouseef/billing-system/internal/repositories"
)

// EventPublisher publishes product mutation events to a message broker.
// The RabbitMQ client in pkg/rabbitmq satisfies this interface.
type EventPublisher interface {
	PublishEvent(eventType string, body []byte) error
}

// ProductService handles business logic related to products. The derived
// totalPrice field is computed here, at the storage boundary, so callers
// can never persist an inconsistent total.
type ProductService struct {
	repo      repositories.ProductRepository
	publisher EventPublisher // optional, may be nil
}

// NewProductService creates a new ProductService. The publisher may be
// nil, in which case mutation events are skipped.
func NewProductService(repo repositories.ProductRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		publisher: publisher,
	}
}

// GetAllProducts retrieves all products in creation order.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates the request, applies the quantity default,
// computes the derived total and persists a new product.
func (s *ProductService) CreateProduct(req *models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if req.Price == nil {
		return nil, &models.ValidationError{Field: "price", Reason: "price is required"}
	}
	if *req.Price < 0 {
		return nil, &models.ValidationError{Field: "price", Reason: "price must be >= 0"}
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if quantity < 1 {
		return nil, &models.ValidationError{Field: "quantity", Reason: "quantity must be >= 1"}
	}

	product := &models.Product{
		Name:       req.Name,
		Price:      *req.Price,
		Quantity:   quantity,
		TotalPrice: *req.Price * float64(quantity),
	}

	if err := s.repo.Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.publishEvent("product.created", product)
	return product, nil
}

// UpdateProduct merges the supplied fields into the stored record and
// recomputes totalPrice from the effective price and quantity. The
// fallback for an omitted field is always read from the persisted
// record, never from the pending update.
func (s *ProductService) UpdateProduct(id string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, &models.ValidationError{Field: "name", Reason: "name must not be empty"}
		}
		product.Name = *req.Name
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, &models.ValidationError{Field: "price", Reason: "price must be >= 0"}
		}
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		if *req.Quantity < 1 {
			return nil, &models.ValidationError{Field: "quantity", Reason: "quantity must be >= 1"}
		}
		product.Quantity = *req.Quantity
	}

	product.TotalPrice = product.Price * float64(product.Quantity)

	if err := s.repo.Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", id, err)
	}

	s.publishEvent("product.updated", product)
	return product, nil
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.publishEvent("product.deleted", &models.Product{ID: id})
	return nil
}

// TotalBill sums price * quantity over all products. The per-record
// totalPrice column is deliberately not used here so the aggregate stays
// correct even if a stored total ever drifts.
func (s *ProductService) TotalBill() (float64, error) {
	products, err := s.repo.GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to calculate total bill: %w", err)
	}

	var total float64
	for _, p := range products {
		total += p.Price * float64(p.Quantity)
	}
	return total, nil
}

// publishEvent sends a mutation event to the broker. Publishing failures
// are logged, never surfaced: the write has already been persisted.
func (s *ProductService) publishEvent(eventType string, product *models.Product) {
	if s.publisher == nil {
		return
	}

	body, err := json.Marshal(map[string]interface{}{
		"productID":  product.ID,
		"name":       product.Name,
		"totalPrice": product.TotalPrice,
	})
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	if err := s.publisher.PublishEvent(eventType, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", eventType, product.ID, err)
	}
}
