package api

import (
	"context"
	"strings"

	"storefront/internal/httpclient"
	"storefront/internal/models"
)

type Subscription struct {
	c *httpclient.Client
}

func (s *Subscription) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if err := models.ValidateEmail(email); err != nil {
		return err
	}
	return s.c.Post(ctx, "/api/subscribe", map[string]string{"email": email}, nil)
}

func (s *Subscription) SendNews(ctx context.Context, news models.Newsletter) error {
	if err := models.Validate(news); err != nil {
		return err
	}
	return s.c.Post(ctx, "/api/subscribe/send-news", news, nil)
}

func (s *Subscription) All(ctx context.Context) ([]models.Subscriber, error) {
	var raw []byte
	if err := s.c.Get(ctx, "/api/subscribe/all", nil, &raw); err != nil {
		return nil, err
	}
	return unwrapList[models.Subscriber](raw, "subscribers", "data")
}
