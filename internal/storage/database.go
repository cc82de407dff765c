package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

// DatabaseStore implements Store on top of gorm (PostgreSQL in production)
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a gorm-backed store. The *gorm.DB should be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *DatabaseStore) FindCustomerByPhone(ctx context.Context, phone string) (*models.Customer, error) {
	return d.findCustomer(ctx, "phone = ?", phone)
}

func (d *DatabaseStore) FindCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	return d.findCustomer(ctx, "email = ?", email)
}

func (d *DatabaseStore) findCustomer(ctx context.Context, query string, arg string) (*models.Customer, error) {
	var customer models.Customer
	err := d.db.WithContext(ctx).Where(query, arg).First(&customer).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &customer, nil
}

func (d *DatabaseStore) CreateCustomer(ctx context.Context, reg *models.CustomerRegistration) (*models.Customer, error) {
	customer := &models.Customer{
		Name:    reg.Name,
		Email:   reg.Email,
		Phone:   reg.Phone,
		Address: reg.Address,
	}

	if err := d.db.WithContext(ctx).Create(customer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return customer, nil
}

func (d *DatabaseStore) CreateTicket(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	t := *ticket
	if err := d.db.WithContext(ctx).Create(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("create ticket: %w", err)
	}
	return &t, nil
}

func (d *DatabaseStore) GetTicket(ctx context.Context, ticketID string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.db.WithContext(ctx).Where("ticket_id = ?", ticketID).First(&ticket).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	return &ticket, nil
}

func (d *DatabaseStore) GetTicketsByCustomer(ctx context.Context, customerID string) ([]*models.Ticket, error) {
	var tickets []*models.Ticket
	err := d.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at asc").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	return tickets, nil
}
