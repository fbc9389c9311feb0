package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/socialkit-dev/identity/domain"
)

// OrderRepository implements domain.OrderRepository on MongoDB.
type OrderRepository struct {
	orders *mongo.Collection
}

func NewOrderRepository(ctx context.Context, db *mongo.Database) (domain.OrderRepository, error) {
	repo := &OrderRepository{orders: db.Collection(OrdersCollection)}

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "gateway_order_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}
	if _, err := repo.orders.Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Warn().Err(err).Msg("failed to create payment order indexes (may already exist)")
	}
	return repo, nil
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.PaymentOrder) error {
	if order.ID == "" {
		order.ID = NewObjectID()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = domain.OrderStatusCreated
	}

	if _, err := r.orders.InsertOne(ctx, order); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateEntity
		}
		log.Error().Err(err).Str("gatewayOrderID", order.GatewayOrderID).Msg("error storing payment order")
		return err
	}
	return nil
}

func (r *OrderRepository) GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*domain.PaymentOrder, error) {
	var order domain.PaymentOrder
	err := r.orders.FindOne(ctx, bson.M{"gateway_order_id": gatewayOrderID}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		log.Error().Err(err).Str("gatewayOrderID", gatewayOrderID).Msg("error getting payment order")
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, gatewayOrderID string, status domain.OrderStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now().UTC()}}
	result, err := r.orders.UpdateOne(ctx, bson.M{"gateway_order_id": gatewayOrderID}, update)
	if err != nil {
		log.Error().Err(err).Str("gatewayOrderID", gatewayOrderID).Msg("error updating payment order status")
		return err
	}
	if result.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

var _ domain.OrderRepository = (*OrderRepository)(nil)
