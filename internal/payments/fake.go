package payments

import (
	"context"
	"fmt"

	"github.com/oklog/ulid/v2"
)

// DeclineCardNumber is always refused by FakeProvider.
const DeclineCardNumber = "4000000000000002"

// FakeProvider approves every charge except the decline test card. It is the
// default when no provider credentials are configured.
type FakeProvider struct{}

func (FakeProvider) Name() string { return "fake" }

func (FakeProvider) Charge(ctx context.Context, req ChargeRequest) (ChargeResult, error) {
	if err := ctx.Err(); err != nil {
		return ChargeResult{}, err
	}
	if req.Total <= 0 {
		return ChargeResult{}, fmt.Errorf("payments: fake: invalid total %d", req.Total)
	}
	res := ChargeResult{Reference: "fake_" + ulid.Make().String(), Status: StatusPaid}
	if req.Method == MethodCard && req.Card != nil {
		if Digits(req.Card.Number) == DeclineCardNumber {
			return ChargeResult{}, ErrDeclined
		}
		res.Last4 = req.Card.Last4()
	}
	return res, nil
}
