// Package poller drains carts after checkout: it consumes the
// checkout-completed topic and deletes the paid-for cart and its cache
// entry so the next storefront load starts empty.
package poller

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Iamabhih/storefront-cart/internal/cache"
	"github.com/Iamabhih/storefront-cart/internal/repository"
	"github.com/segmentio/kafka-go"
)

type Poller struct {
	repo   repository.CartRepository
	cache  cache.CartCache
	reader *kafka.Reader
}

func NewPoller(repo repository.CartRepository, cartCache cache.CartCache, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "cart-engine-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{repo: repo, cache: cartCache, reader: reader}
}

func (p *Poller) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		p.drainNextCart(ctx)
	}
}

func (p *Poller) Close() {
	if err := p.reader.Close(); err != nil {
		log.Printf("error closing checkout reader: %v", err)
	}
}

func (p *Poller) drainNextCart(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("error reading checkout message: %v", err)
		}
		return
	}

	p.process(ctx, m.Value)
}

func (p *Poller) process(ctx context.Context, value []byte) {
	var payload map[string]interface{}
	if errUnmarshal := json.Unmarshal(value, &payload); errUnmarshal != nil {
		log.Printf("error parsing checkout message: %v", errUnmarshal)
		return
	}
	userID, ok := payload["user_id"].(string)
	if !ok || userID == "" {
		log.Println("checkout message missing user_id")
		return
	}

	errDelete := p.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, repository.ErrCartNotFound) {
		log.Printf("failed to drain cart for user %s: %v", userID, errDelete)
	}

	if errCache := p.cache.Delete(ctx, userID); errCache != nil {
		log.Printf("failed to drop cart cache for user %s: %v", userID, errCache)
	}
}
