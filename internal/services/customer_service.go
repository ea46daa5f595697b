package services

import (
	"context"

	"garage-backend/internal/models"
	"garage-backend/internal/repositories"
)

type CustomerService struct {
	Repo *repositories.CustomerRepository
}

func NewCustomerService(repo *repositories.CustomerRepository) *CustomerService {
	return &CustomerService{Repo: repo}
}

func (s *CustomerService) CreateCustomer(ctx context.Context, req *models.CreateCustomerRequest) (*models.Customer, error) {
	customer := &models.Customer{
		Name:    req.Name,
		Phone:   req.Phone,
		Email:   req.Email,
		Address: req.Address,
	}
	if err := s.Repo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	return s.Repo.Get(ctx, id)
}

func (s *CustomerService) GetByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return s.Repo.GetByPhone(ctx, phone)
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.Repo.List(ctx)
}

func (s *CustomerService) SearchCustomers(ctx context.Context, query string) ([]*models.Customer, error) {
	return s.Repo.Search(ctx, query)
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, id int, req *models.UpdateCustomerRequest) (*models.Customer, error) {
	customer, err := s.Repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = req.Email
	customer.Address = req.Address
	if err := s.Repo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id int) error {
	return s.Repo.Delete(ctx, id)
}
