package workflow

import (
	"time"

	"cloud.google.com/go/civil"
)

const (
	MaxRentalDays = 30
	BookingWindow = 90
)

// Fallback wording shown when the Booking Service sent no message.
const (
	GenericFailure = "Something went wrong. Please try again."
	SubmitFailure  = "Failed to create booking. Please try again."
	PaymentFailure = "Payment failed. Please try again."
	CancelFailure  = "Failed to cancel booking. Please try again."
)

// Publisher receives workflow events. rabbitmq.Publisher satisfies it.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

type Option func(*options)

type options struct {
	today     func() civil.Date
	publisher Publisher
}

func defaultOptions() options {
	return options{
		today: func() civil.Date { return civil.DateOf(time.Now()) },
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithToday fixes the calendar date used for validation and actions.
func WithToday(fn func() civil.Date) Option {
	return func(o *options) { o.today = fn }
}

// WithPublisher emits workflow events; nil disables them.
func WithPublisher(p Publisher) Option {
	return func(o *options) { o.publisher = p }
}
