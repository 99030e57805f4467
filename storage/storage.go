package storage

import (
	"ewintr.nl/vidqa/model"
)

// ExchangeRepository keeps the questions asked in a session, in the order they
// were asked.
type ExchangeRepository interface {
	Append(sessionID string, exchange model.Exchange) error
	History(sessionID string) ([]model.Exchange, error)
}
