package caronte

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/caronte/pkg/cryptox"
	"github.com/aussiebroadwan/caronte/pkg/jwtx"
	"github.com/aussiebroadwan/caronte/pkg/slogx"
	"golang.org/x/sync/singleflight"
)

// Exchanger trades a stale token for a fresh one at the identity server.
type Exchanger interface {
	ExchangeToken(ctx context.Context, raw string) (string, error)
}

// UserObserver is told about every user that passes validation.
type UserObserver interface {
	ObserveUser(ctx context.Context, user *jwtx.UserPayload)
}

// Result is the outcome of a successful validation.
type Result struct {
	// Raw is the token the caller should keep using. It differs from the
	// input when Exchanged is set.
	Raw string

	Token *jwtx.Token
	User  *jwtx.UserPayload

	// Exchanged reports that the input was stale and was replaced through
	// the identity server during this call.
	Exchanged bool
}

// ValidatorConfig wires a Validator.
type ValidatorConfig struct {
	Verifier  jwtx.Verifier
	Exchanger Exchanger

	// Observer is optional.
	Observer UserObserver

	// Now defaults to time.Now.
	Now func() time.Time
}

// Validator runs the decode, verify, freshness and exchange pipeline. It is
// safe for concurrent use.
type Validator struct {
	verifier  jwtx.Verifier
	exchanger Exchanger
	observer  UserObserver
	now       func() time.Time

	group singleflight.Group
}

// NewValidator creates a Validator from cfg.
func NewValidator(cfg ValidatorConfig) *Validator {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Validator{
		verifier:  cfg.Verifier,
		exchanger: cfg.Exchanger,
		observer:  cfg.Observer,
		now:       now,
	}
}

// Validate checks raw and returns the user it carries. A stale token is
// exchanged at most once; if the replacement is not usable either the call
// fails with ErrExchangeFailed. If ctx ends while an exchange is pending,
// ctx.Err() is returned as is. Every other failure is terminal and is
// reported with one of the package's sentinel errors.
func (v *Validator) Validate(ctx context.Context, raw string) (*Result, error) {
	res, err := v.validate(ctx, raw, 1)
	if err != nil {
		return nil, err
	}

	if v.observer != nil {
		v.observer.ObserveUser(ctx, res.User)
	}
	return res, nil
}

func (v *Validator) validate(ctx context.Context, raw string, budget int) (*Result, error) {
	tok, err := jwtx.Decode(raw)
	if err != nil {
		return nil, classify(err)
	}

	if err := v.verifier.Verify(tok); err != nil {
		return nil, classify(err)
	}

	user, err := tok.User()
	if err != nil {
		return nil, classify(err)
	}

	if jwtx.IsFresh(tok, v.now()) {
		return &Result{Raw: raw, Token: tok, User: user}, nil
	}

	if budget <= 0 {
		return nil, fmt.Errorf("%w: exchanged token is not fresh", ErrExchangeFailed)
	}

	fresh, err := v.exchange(ctx, raw)
	if err != nil {
		// The caller gave up; the exchange itself may still succeed.
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	res, err := v.validate(ctx, fresh, budget-1)
	if err != nil {
		if errors.Is(err, ErrExchangeFailed) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrExchangeFailed, err)
	}

	res.Exchanged = true
	return res, nil
}

// exchange coalesces concurrent exchanges of the same token in this process.
func (v *Validator) exchange(ctx context.Context, raw string) (string, error) {
	if v.exchanger == nil {
		return "", errors.New("no exchanger configured")
	}

	fp := cryptox.FingerprintToken(raw)
	log := slogx.FromContext(ctx).With(slogx.Fingerprint(fp))

	// Shared by every waiter, so one caller going away must not cancel it.
	// The client timeout still bounds the call.
	shared := context.WithoutCancel(ctx)
	ch := v.group.DoChan(fp, func() (any, error) {
		log.Debug("exchanging stale token")
		return v.exchanger.ExchangeToken(shared, raw)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			log.Warn("token exchange failed", "err", r.Err)
			return "", r.Err
		}
		fresh := strings.TrimSpace(r.Val.(string))
		if fresh == "" {
			return "", errors.New("empty token in exchange response")
		}
		log.Info("token exchanged", "shared", r.Shared)
		return fresh, nil
	}
}
