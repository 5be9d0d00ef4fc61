package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

var ErrPaymentDeclined = errors.New("payment declined by the gateway")

type ChargeRequest struct {
	Reference string
	Amount    int64
	Currency  string
	Method    string
	Token     string
}

type Charge struct {
	ID     string
	Amount int64
}

// PaymentGateway charges an external payment method.
type PaymentGateway interface {
	Charge(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// SandboxGateway accepts every token except empty ones and those starting with tok_fail.
type SandboxGateway struct{}

func (SandboxGateway) Charge(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Token == "" || strings.HasPrefix(req.Token, "tok_fail") {
		return nil, ErrPaymentDeclined
	}
	return &Charge{ID: "ch_" + strings.ReplaceAll(uuid.NewString(), "-", ""), Amount: req.Amount}, nil
}
