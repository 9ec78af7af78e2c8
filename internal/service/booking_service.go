package service

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/bookingapi"
	"github.com/Eursukkul/vehicle-rental/booking-gateway/internal/workflow"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// BookingService owns the open workflow views, one per session id.
type BookingService interface {
	OpenDraft(ctx context.Context, vehicleID uint) (string, *workflow.DraftForm, error)
	OpenEdit(ctx context.Context, bookingID uint) (string, *workflow.DraftForm, error)
	Draft(sessionID string) (*workflow.DraftForm, error)

	OpenSummary(ctx context.Context, bookingID uint) (string, *workflow.Summary, error)
	Summary(sessionID string) (*workflow.Summary, error)

	OpenDetail(ctx context.Context, bookingID uint) (string, *workflow.Detail, error)
	Detail(sessionID string) (*workflow.Detail, error)

	Close(sessionID string) error
	RefreshBooking(ctx context.Context, bookingID uint) int
	Sweep() int
}

type closer interface {
	Close()
}

type session struct {
	view      closer
	bookingID uint
	lastUsed  time.Time
}

type bookingService struct {
	client  bookingapi.Client
	checker *workflow.AvailabilityChecker
	ttl     time.Duration
	opts    []workflow.Option
	now     func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

func NewBookingService(client bookingapi.Client, checker *workflow.AvailabilityChecker, ttl time.Duration, opts ...workflow.Option) BookingService {
	return &bookingService{
		client:   client,
		checker:  checker,
		ttl:      ttl,
		opts:     opts,
		now:      time.Now,
		sessions: map[string]*session{},
	}
}

func (s *bookingService) OpenDraft(ctx context.Context, vehicleID uint) (string, *workflow.DraftForm, error) {
	vehicle, err := s.client.GetVehicle(ctx, vehicleID)
	if err != nil {
		return "", nil, err
	}
	form := workflow.NewDraftForm(s.client, s.checker, *vehicle, s.opts...)
	return s.register(form, 0), form, nil
}

// OpenEdit reopens a pending booking as a draft.
func (s *bookingService) OpenEdit(ctx context.Context, bookingID uint) (string, *workflow.DraftForm, error) {
	b, err := s.client.GetBooking(ctx, bookingID)
	if err != nil {
		return "", nil, err
	}
	if b.ID == 0 {
		b.ID = bookingID
	}

	vehicle := b.Vehicle.Vehicle
	if vehicle == nil {
		if vehicle, err = s.client.GetVehicle(ctx, b.Vehicle.ID); err != nil {
			return "", nil, err
		}
	}

	form, err := workflow.NewEditForm(s.client, s.checker, *vehicle, *b, s.opts...)
	if err != nil {
		return "", nil, err
	}
	return s.register(form, bookingID), form, nil
}

func (s *bookingService) Draft(sessionID string) (*workflow.DraftForm, error) {
	return lookup[*workflow.DraftForm](s, sessionID)
}

func (s *bookingService) OpenSummary(ctx context.Context, bookingID uint) (string, *workflow.Summary, error) {
	summary := workflow.NewSummary(s.client, bookingID, s.opts...)
	if _, err := summary.Load(ctx); err != nil {
		summary.Close()
		return "", nil, err
	}
	return s.register(summary, bookingID), summary, nil
}

func (s *bookingService) Summary(sessionID string) (*workflow.Summary, error) {
	return lookup[*workflow.Summary](s, sessionID)
}

func (s *bookingService) OpenDetail(ctx context.Context, bookingID uint) (string, *workflow.Detail, error) {
	detail := workflow.NewDetail(s.client, bookingID, s.opts...)
	if _, err := detail.Load(ctx); err != nil {
		detail.Close()
		return "", nil, err
	}
	return s.register(detail, bookingID), detail, nil
}

func (s *bookingService) Detail(sessionID string) (*workflow.Detail, error) {
	return lookup[*workflow.Detail](s, sessionID)
}

func (s *bookingService) Close(sessionID string) error {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	sess.view.Close()
	return nil
}

// RefreshBooking re-fetches every open summary and detail view showing
// bookingID and returns how many were refreshed.
func (s *bookingService) RefreshBooking(ctx context.Context, bookingID uint) int {
	var views []closer
	s.mu.Lock()
	for _, sess := range s.sessions {
		if sess.bookingID == bookingID {
			views = append(views, sess.view)
		}
	}
	s.mu.Unlock()

	refreshed := 0
	for _, v := range views {
		var err error
		switch view := v.(type) {
		case *workflow.Detail:
			_, err = view.Refresh(ctx)
		case *workflow.Summary:
			_, err = view.Load(ctx)
		default:
			continue
		}
		if err != nil {
			log.Printf("[BookingService] refresh booking %d: %v", bookingID, err)
			continue
		}
		refreshed++
	}
	return refreshed
}

// Sweep closes sessions idle for longer than the TTL.
func (s *bookingService) Sweep() int {
	cutoff := s.now().Add(-s.ttl)

	var expired []closer
	s.mu.Lock()
	for id, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			expired = append(expired, sess.view)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, v := range expired {
		v.Close()
	}
	if len(expired) > 0 {
		log.Printf("[BookingService] closed %d idle sessions", len(expired))
	}
	return len(expired)
}

// StartSweeper runs Sweep every interval until ctx ends.
func StartSweeper(ctx context.Context, svc BookingService, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				svc.Sweep()
			}
		}
	}()
}

func (s *bookingService) register(view closer, bookingID uint) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{view: view, bookingID: bookingID, lastUsed: s.now()}
	s.mu.Unlock()
	return id
}

func lookup[T closer](s *bookingService, sessionID string) (T, error) {
	var zero T
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return zero, ErrSessionNotFound
	}
	view, ok := sess.view.(T)
	if !ok {
		return zero, ErrSessionNotFound
	}
	sess.lastUsed = s.now()
	return view, nil
}
