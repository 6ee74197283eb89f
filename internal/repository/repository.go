package repository

import (
	"context"
	"errors"

	"github.com/fjod/shoes_shop/internal/domain"
)

var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrProductInUse    = errors.New("product is part of existing orders and cannot be deleted")
	ErrDuplicateLogin  = errors.New("user with this login already exists")
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) (int64, error)
	ReplaceOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, id int64) error
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]*domain.Order, error)
	ListStatuses(ctx context.Context) ([]domain.Status, error)
	ListPickupPoints(ctx context.Context) ([]domain.PickupPoint, error)
}

type ProductRepository interface {
	ListProductsInStock(ctx context.Context) ([]domain.Product, error)
	CountProductLineItems(ctx context.Context, productID int64) (int, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserByLogin(ctx context.Context, login string) (*domain.User, error)
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
	CreateUser(ctx context.Context, user *domain.User) (int64, error)
}
