package chat

import (
	"errors"
	"sort"
	"sync"

	"github.com/rentnest/rentnest-server/internal/models"
)

// FeedState tracks the viewer lifecycle: loading until the history snapshot
// lands, then ready, with sending toggled around each submit.
type FeedState int

const (
	FeedLoading FeedState = iota
	FeedReady
	FeedSending
	FeedClosed
)

var (
	ErrFeedNotReady = errors.New("feed not ready")
	ErrFeedSending  = errors.New("send already in flight")
	ErrFeedClosed   = errors.New("feed closed")
)

// Feed is one viewer's ordered, de-duplicated picture of a conversation. The
// history snapshot and the live stream may overlap or arrive out of order;
// Apply reconciles by message ID and keeps the list sorted by
// (created_at, id), so a locally echoed send and its live delivery collapse
// into one entry.
type Feed struct {
	mu    sync.Mutex
	state FeedState
	seen  map[string]struct{}
	msgs  []*models.Message
}

func NewFeed() *Feed {
	return &Feed{state: FeedLoading, seen: make(map[string]struct{})}
}

func (f *Feed) State() FeedState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Load installs the history snapshot and moves the feed to ready. Live
// messages applied before Load are kept and merged.
func (f *Feed) Load(snapshot []*models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FeedClosed {
		return ErrFeedClosed
	}
	for _, m := range snapshot {
		f.insert(m)
	}
	if f.state == FeedLoading {
		f.state = FeedReady
	}
	return nil
}

// Apply merges one live message. It reports whether the message was new;
// duplicate deliveries are absorbed silently.
func (f *Feed) Apply(m *models.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == FeedClosed {
		return false
	}
	return f.insert(m)
}

// BeginSend moves ready → sending. A second submit while one is in flight is
// refused, which is what disables resubmission during a slow network.
func (f *Feed) BeginSend() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch f.state {
	case FeedReady:
		f.state = FeedSending
		return nil
	case FeedSending:
		return ErrFeedSending
	case FeedClosed:
		return ErrFeedClosed
	default:
		return ErrFeedNotReady
	}
}

// EndSend moves sending → ready, applying the echoed message if the append
// succeeded. It reports whether the echo was new: the live stream can win the
// race and deliver the message before the append call returns, in which case
// the caller must not render the echo a second time.
func (f *Feed) EndSend(m *models.Message) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	inserted := false
	if m != nil && f.state != FeedClosed {
		inserted = f.insert(m)
	}
	if f.state == FeedSending {
		f.state = FeedReady
	}
	return inserted
}

// Messages returns the current ordered view.
func (f *Feed) Messages() []*models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Message, len(f.msgs))
	copy(out, f.msgs)
	return out
}

func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = FeedClosed
}

// insert assumes f.mu is held.
func (f *Feed) insert(m *models.Message) bool {
	if _, dup := f.seen[m.ID]; dup {
		return false
	}
	f.seen[m.ID] = struct{}{}
	i := sort.Search(len(f.msgs), func(i int) bool {
		if !f.msgs[i].CreatedAt.Equal(m.CreatedAt) {
			return f.msgs[i].CreatedAt.After(m.CreatedAt)
		}
		return f.msgs[i].ID > m.ID
	})
	f.msgs = append(f.msgs, nil)
	copy(f.msgs[i+1:], f.msgs[i:])
	f.msgs[i] = m
	return true
}
