package admin

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"order_backend/internal/domain/repository"
	"order_backend/pkg/logger"
)

var (
	ErrInvalidPanelSecret = errors.New("invalid panel password")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotAdmin           = errors.New("not an administrator")
)

// AccessResult is the outcome of ValidateAccess. Reason is set when access
// is denied and matches one of the gate's sentinel errors.
type AccessResult struct {
	Granted bool
	Reason  error
	Handle  string
	Name    string
}

type AdminStatus struct {
	IsAdmin bool
	Handle  string
	Name    string
}

// Gate checks the shared panel secret and the customer's admin flag.
type Gate struct {
	customers   repository.CustomerRepository
	panelSecret []byte
	log         logger.Logger
}

// NewGate copies the secret. An empty secret denies every request.
func NewGate(customers repository.CustomerRepository, panelSecret string, log logger.Logger) *Gate {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gate{
		customers:   customers,
		panelSecret: []byte(strings.TrimSpace(panelSecret)),
		log:         log,
	}
}

func (g *Gate) ValidateAccess(ctx context.Context, handle, secret string) (AccessResult, error) {
	handle = strings.TrimSpace(handle)
	res := AccessResult{Handle: handle}

	if !g.secretMatches(strings.TrimSpace(secret)) {
		g.log.Warn("admin access denied", logger.String("handle", handle), logger.String("reason", ErrInvalidPanelSecret.Error()))
		res.Reason = ErrInvalidPanelSecret
		return res, nil
	}

	c, err := g.customers.FindByHandle(ctx, handle)
	if err != nil {
		return AccessResult{}, fmt.Errorf("find customer by handle: %w", err)
	}
	if c == nil {
		res.Reason = ErrUserNotFound
		return res, nil
	}

	res.Handle = c.Handle
	res.Name = c.Name
	if !c.IsAdmin {
		g.log.Warn("admin access denied", logger.String("handle", handle), logger.String("reason", ErrNotAdmin.Error()))
		res.Reason = ErrNotAdmin
		return res, nil
	}

	g.log.Info("admin access granted", logger.String("handle", c.Handle))
	res.Granted = true
	return res, nil
}

func (g *Gate) CheckAdmin(ctx context.Context, handle string) (AdminStatus, error) {
	handle = strings.TrimSpace(handle)
	c, err := g.customers.FindByHandle(ctx, handle)
	if err != nil {
		return AdminStatus{}, fmt.Errorf("find customer by handle: %w", err)
	}
	if c == nil {
		return AdminStatus{Handle: handle}, nil
	}
	return AdminStatus{IsAdmin: c.IsAdmin, Handle: c.Handle, Name: c.Name}, nil
}

func (g *Gate) secretMatches(secret string) bool {
	if len(g.panelSecret) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare(g.panelSecret, []byte(secret)) == 1
}
