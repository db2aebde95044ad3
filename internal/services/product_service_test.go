package services_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/Itstouseef/billing-system/internal/models"
	"github.com/Itstouseef/billing-system/internal/services"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll() ([]models.Product, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

// MockEventPublisher is a mock implementation of services.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishEvent(eventType string, body []byte) error {
	args := m.Called(eventType, body)
	return args.Error(0)
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
func strPtr(v string) *string     { return &v }

func TestProductService_CreateProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	// Successful creation computes the derived total
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	product, err := service.CreateProduct(&models.CreateProductRequest{
		Name:     "Laptop",
		Price:    floatPtr(1200.00),
		Quantity: intPtr(2),
	})
	assert.NoError(t, err)
	assert.Equal(t, "Laptop", product.Name)
	assert.Equal(t, 1200.00, product.Price)
	assert.Equal(t, 2, product.Quantity)
	assert.Equal(t, 2400.00, product.TotalPrice)
	mockRepo.AssertExpectations(t)

	// Repository failure is wrapped and surfaced
	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(fmt.Errorf("database error")).Once()
	product, err = service.CreateProduct(&models.CreateProductRequest{
		Name:  "Mouse",
		Price: floatPtr(25.00),
	})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.Contains(t, err.Error(), "database error")
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_DefaultsQuantity(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	product, err := service.CreateProduct(&models.CreateProductRequest{
		Name:  "Pen",
		Price: floatPtr(10.00),
	})
	assert.NoError(t, err)
	assert.Equal(t, 1, product.Quantity)
	assert.Equal(t, 10.00, product.TotalPrice)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateProduct_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	var validationErr *models.ValidationError

	// Missing price fails and persists nothing
	product, err := service.CreateProduct(&models.CreateProductRequest{Name: "Pen"})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.ErrorAs(t, err, &validationErr)

	// Empty name
	product, err = service.CreateProduct(&models.CreateProductRequest{Name: "  ", Price: floatPtr(5)})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.ErrorAs(t, err, &validationErr)

	// Negative price
	product, err = service.CreateProduct(&models.CreateProductRequest{Name: "Pen", Price: floatPtr(-1)})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.ErrorAs(t, err, &validationErr)

	// Quantity below 1
	product, err = service.CreateProduct(&models.CreateProductRequest{Name: "Pen", Price: floatPtr(5), Quantity: intPtr(0)})
	assert.Error(t, err)
	assert.Nil(t, product)
	assert.ErrorAs(t, err, &validationErr)

	// None of the invalid requests reached the repository
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateProduct_PartialQuantity(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	stored := &models.Product{ID: "1", Name: "Pen", Price: 10.00, Quantity: 1, TotalPrice: 10.00}

	// Only quantity supplied: the effective price comes from the stored
	// record, so the total must be 10 * 3.
	mockRepo.On("GetByID", "1").Return(stored, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	updated, err := service.UpdateProduct("1", &models.UpdateProductRequest{Quantity: intPtr(3)})
	assert.NoError(t, err)
	assert.Equal(t, 10.00, updated.Price)
	assert.Equal(t, 3, updated.Quantity)
	assert.Equal(t, 30.00, updated.TotalPrice)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_Idempotent(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	req := &models.UpdateProductRequest{Price: floatPtr(10), Quantity: intPtr(2)}

	for i := 0; i < 2; i++ {
		stored := &models.Product{ID: "1", Name: "Pen", Price: 10.00, Quantity: 2, TotalPrice: 20.00}
		mockRepo.On("GetByID", "1").Return(stored, nil).Once()
		mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

		updated, err := service.UpdateProduct("1", req)
		assert.NoError(t, err)
		assert.Equal(t, 20.00, updated.TotalPrice)
	}
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_NotFound(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("GetByID", "99").Return(nil, fmt.Errorf("product with ID 99: %w", models.ErrProductNotFound)).Once()

	updated, err := service.UpdateProduct("99", &models.UpdateProductRequest{Quantity: intPtr(2)})
	assert.Error(t, err)
	assert.Nil(t, updated)
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateProduct_Validation(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	stored := &models.Product{ID: "1", Name: "Pen", Price: 10.00, Quantity: 1, TotalPrice: 10.00}
	mockRepo.On("GetByID", "1").Return(stored, nil).Times(3)

	var validationErr *models.ValidationError

	_, err := service.UpdateProduct("1", &models.UpdateProductRequest{Name: strPtr(" ")})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.UpdateProduct("1", &models.UpdateProductRequest{Price: floatPtr(-5)})
	assert.ErrorAs(t, err, &validationErr)

	_, err = service.UpdateProduct("1", &models.UpdateProductRequest{Quantity: intPtr(0)})
	assert.ErrorAs(t, err, &validationErr)

	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestProductService_DeleteProduct(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Delete", "1").Return(nil).Once()
	err := service.DeleteProduct("1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	mockRepo.On("Delete", "99").Return(fmt.Errorf("product with ID 99: %w", models.ErrProductNotFound)).Once()
	err = service.DeleteProduct("99")
	assert.ErrorIs(t, err, models.ErrProductNotFound)
	mockRepo.AssertExpectations(t)
}

func TestProductService_TotalBill(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	products := []models.Product{
		{ID: "1", Name: "Pen", Price: 10.00, Quantity: 3, TotalPrice: 30.00},
		{ID: "2", Name: "Notebook", Price: 50.00, Quantity: 2, TotalPrice: 100.00},
	}

	mockRepo.On("GetAll").Return(products, nil).Once()
	total, err := service.TotalBill()
	assert.NoError(t, err)
	assert.Equal(t, 130.00, total)
	mockRepo.AssertExpectations(t)

	mockRepo.On("GetAll").Return(nil, fmt.Errorf("database error")).Once()
	_, err = service.TotalBill()
	assert.Error(t, err)
	mockRepo.AssertExpectations(t)
}

func TestProductService_PublishesMutationEvents(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPublisher.On("PublishEvent", "product.created", mock.Anything).Return(nil).Once()

	_, err := service.CreateProduct(&models.CreateProductRequest{Name: "Pen", Price: floatPtr(10)})
	assert.NoError(t, err)

	mockRepo.On("Delete", "1").Return(nil).Once()
	mockPublisher.On("PublishEvent", "product.deleted", mock.Anything).Return(nil).Once()

	err = service.DeleteProduct("1")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestProductService_PublishFailureDoesNotFailWrite(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockPublisher := new(MockEventPublisher)
	service := services.NewProductService(mockRepo, mockPublisher)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockPublisher.On("PublishEvent", "product.created", mock.Anything).Return(fmt.Errorf("broker down")).Once()

	product, err := service.CreateProduct(&models.CreateProductRequest{Name: "Pen", Price: floatPtr(10)})
	assert.NoError(t, err)
	assert.NotNil(t, product)

	mockRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}
