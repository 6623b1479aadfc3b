package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"dealvalue_backend/internal/gateway"
)

// fakeGateway записывает вызовы и отвечает заранее заданными телами.
// Операция без ответа возвращает {"id":"<op>-1"}.
type fakeGateway struct {
	mu        sync.Mutex
	calls     []string
	inputs    map[string]any
	responses map[string]string
	failures  map[string]error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		inputs:    map[string]any{},
		responses: map[string]string{},
		failures:  map[string]error{},
	}
}

func (f *fakeGateway) respond(op, body string) *fakeGateway {
	f.responses[op] = body
	return f
}

func (f *fakeGateway) fail(op string, status int, body string) *fakeGateway {
	f.failures[op] = &gateway.APIError{Operation: op, StatusCode: status, Body: json.RawMessage(body)}
	return f
}

func (f *fakeGateway) called(op string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == op {
			return true
		}
	}
	return false
}

func (f *fakeGateway) input(op string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inputs[op]
}

func (f *fakeGateway) call(op string, in any) (*gateway.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, op)
	f.inputs[op] = in
	if err := f.failures[op]; err != nil {
		return nil, err
	}
	body, ok := f.responses[op]
	if !ok {
		body = fmt.Sprintf(`{"id":"%s-1"}`, op)
	}
	return &gateway.Response{StatusCode: http.StatusOK, Body: json.RawMessage(body)}, nil
}

func (f *fakeGateway) RegisterCustomer(_ context.Context, in gateway.CustomerInput) (*gateway.Response, error) {
	return f.call("register_customer", in)
}

func (f *fakeGateway) DeleteCustomer(_ context.Context, id string) (*gateway.Response, error) {
	return f.call("delete_customer", id)
}

func (f *fakeGateway) TokenizeCard(_ context.Context, in gateway.TokenizeInput) (*gateway.Response, error) {
	return f.call("tokenize_card", in)
}

func (f *fakeGateway) ChargeCard(_ context.Context, in gateway.ChargeCardInput) (*gateway.Response, error) {
	return f.call("charge_card", in)
}

func (f *fakeGateway) ChargePix(_ context.Context, in gateway.ChargePixInput) (*gateway.Response, error) {
	return f.call("charge_pix", in)
}

func (f *fakeGateway) PixQRCode(_ context.Context, id string) (*gateway.Response, error) {
	return f.call("pix_qrcode", id)
}

func (f *fakeGateway) PaymentStatus(_ context.Context, id string) (*gateway.Response, error) {
	return f.call("payment_status", id)
}

func (f *fakeGateway) CreateSubscription(_ context.Context, in gateway.SubscriptionInput) (*gateway.Response, error) {
	return f.call("create_subscription", in)
}

func (f *fakeGateway) CancelSubscription(_ context.Context, id string) (*gateway.Response, error) {
	return f.call("cancel_subscription", id)
}

func (f *fakeGateway) CreateSubaccount(_ context.Context, in gateway.SubaccountInput) (*gateway.Response, error) {
	return f.call("create_subaccount", in)
}

func (f *fakeGateway) RecoverSubaccount(_ context.Context, email string) (*gateway.Response, error) {
	return f.call("recover_subaccount", email)
}
