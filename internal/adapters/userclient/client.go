package userclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/mjolner/svc-commerce-events/internal/config"
	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
	"github.com/sony/gobreaker"
)

type (
	// Client probes the Users service over HTTP. Order creation uses it to
	// verify the buyer exists and is active before accepting the order.
	Client struct {
		client         *resty.Client
		circuitBreaker *gobreaker.CircuitBreaker
		logger         infrastructure.Logger
		config         config.UserServiceConfig
	}

	userResponse struct {
		ID     uuid.UUID `json:"id"`
		Name   string    `json:"name"`
		Email  string    `json:"email"`
		Status string    `json:"status"`
	}
)

func NewClient(cfg config.UserServiceConfig, logger infrastructure.Logger) *Client {
	client := resty.New()

	client.SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.MaxRetryWaitTime).
		SetHeader("Accept", "application/json")

	// Retry transport errors and 5xx answers, never 4xx.
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		if err != nil {
			return true
		}

		return r.StatusCode() >= http.StatusInternalServerError
	})

	cbSettings := gobreaker.Settings{
		Name:        "user-service",
		MaxRequests: cfg.CircuitBreaker.MaxRequests,
		Interval:    cfg.CircuitBreaker.Interval,
		Timeout:     cfg.CircuitBreaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// A missing user and a caller hang-up are valid answers, not
		// failures of the peer.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrUserNotFound) ||
				errors.Is(err, domain.ErrRequestCancelled)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Info().
				Str("name", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Client{
		client:         client,
		circuitBreaker: gobreaker.NewCircuitBreaker(cbSettings),
		logger:         logger.WithComponent("user-client"),
		config:         cfg,
	}
}

// FetchUser loads a user snapshot from the Users service. A missing user maps
// to the not-found error; transport failures and 5xx answers map to the
// peer-unavailable error so the caller can answer 503.
func (c *Client) FetchUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	result, err := c.circuitBreaker.Execute(func() (any, error) {
		return c.fetchUser(ctx, id)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warn().Str("user_id", id.String()).Msg("circuit breaker is open")

			return nil, fmt.Errorf("%w: %v", domain.ErrCircuitBreakerOpen, err)
		}

		return nil, err
	}

	return result.(*domain.User), nil
}

func (c *Client) fetchUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	startTime := time.Now()

	var body userResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&body).
		Get("/users/" + id.String())

	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRequestCancelled, ctx.Err())
		}

		c.logger.Error().
			Err(err).
			Str("user_id", id.String()).
			Msg("failed to reach user service")

		return nil, fmt.Errorf("%w: %v", domain.ErrPeerUnavailable, err)
	}

	c.logger.Debug().
		Str("user_id", id.String()).
		Int("status_code", resp.StatusCode()).
		Int64("duration_ms", time.Since(startTime).Milliseconds()).
		Msg("user probe completed")

	switch {
	case resp.StatusCode() == http.StatusOK:
		status, ok := domain.ParseUserStatus(body.Status)
		if !ok {
			return nil, fmt.Errorf("%w: unknown user status %q", domain.ErrPeerUnavailable, body.Status)
		}

		return &domain.User{
			ID:     body.ID,
			Name:   body.Name,
			Email:  body.Email,
			Status: status,
		}, nil
	case resp.StatusCode() == http.StatusNotFound:
		return nil, domain.ErrUserNotFound
	default:
		c.logger.Warn().
			Str("user_id", id.String()).
			Int("status_code", resp.StatusCode()).
			Msg("user probe returned unexpected status")

		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrPeerUnavailable, resp.StatusCode())
	}
}
