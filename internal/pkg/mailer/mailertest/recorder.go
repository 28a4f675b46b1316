package mailertest

import (
	"context"
	"sync"

	"github.com/georgemunganga/vendor-portal/internal/pkg/mailer"
)

// Recorder is an in-memory mailer.Mailer for tests.
type Recorder struct {
	mu      sync.Mutex
	Sent    []mailer.Message
	SendErr error
}

func (r *Recorder) Send(_ context.Context, msg mailer.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return r.SendErr
	}
	r.Sent = append(r.Sent, msg)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []mailer.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]mailer.Message(nil), r.Sent...)
}
