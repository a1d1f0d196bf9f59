package walletRepo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Hiteshmehtaa/yann-app-sub003/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// WalletRepository is a read-only view of resident wallet balances. Debits
// belong to the payments system.
type WalletRepository interface {
	// GetBalance returns 0 for a resident without a wallet.
	GetBalance(ctx context.Context, residentID string) (float64, error)
}

// MongoWalletRepo reads the wallets collection.
type MongoWalletRepo struct {
	coll *mongo.Collection
}

func NewMongoWalletRepo(db *mongo.Database) *MongoWalletRepo {
	return &MongoWalletRepo{coll: db.Collection("wallets")}
}

func (r *MongoWalletRepo) GetBalance(ctx context.Context, residentID string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var w models.Wallet
	err := r.coll.FindOne(ctx, bson.M{"residentId": residentID}).Decode(&w)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read wallet for resident %s: %w", residentID, err)
	}
	return w.Balance, nil
}

// MemoryWalletRepo holds balances in process.
type MemoryWalletRepo struct {
	mu       sync.RWMutex
	balances map[string]float64
}

func NewMemoryWalletRepo() *MemoryWalletRepo {
	return &MemoryWalletRepo{balances: make(map[string]float64)}
}

func (r *MemoryWalletRepo) SetBalance(residentID string, balance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[residentID] = balance
}

func (r *MemoryWalletRepo) GetBalance(_ context.Context, residentID string) (float64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.balances[residentID], nil
}
