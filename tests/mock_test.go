package tests_test

import (
	"context"
	"lessons/entity"
	"sync"
)

type MockConfirmationSender struct {
	lock          sync.Mutex
	Confirmations []entity.Confirmation
}

func (m *MockConfirmationSender) SendBookingConfirmation(_ context.Context, c entity.Confirmation) error {
	m.lock.Lock()
	m.Confirmations = append(m.Confirmations, c)
	m.lock.Unlock()

	return nil
}

func (m *MockConfirmationSender) Sent() []entity.Confirmation {
	m.lock.Lock()
	defer m.lock.Unlock()

	return append([]entity.Confirmation(nil), m.Confirmations...)
}
