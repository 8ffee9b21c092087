package gallery

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jan-sykora/api-demo/internal/api"
	"github.com/jan-sykora/api-demo/internal/errdef"
	"github.com/jan-sykora/api-demo/internal/storage"
)

const (
	EventSubject = "users/anonymous"
	EventSource  = "animal-classifier"
	EventAction  = "classify"
)

type EventCreator interface {
	CreateEvent(ctx context.Context, req *api.CreateEventRequest) (*api.CreateEventResponse, error)
}

// Uploader runs an upload through save, classify and usage reporting.
// Concurrent uploads are allowed and finish in any order.
type Uploader struct {
	kv         storage.KV
	classifier *Classifier
	events     EventCreator
	now        func() time.Time

	mu    sync.Mutex
	state State
}

func NewUploader(ctx context.Context, kv storage.KV, classifier *Classifier, events EventCreator) (*Uploader, error) {
	state, err := Load(ctx, kv)
	if err != nil {
		return nil, err
	}
	if classifier == nil {
		classifier = NewClassifier()
	}
	return &Uploader{
		kv:         kv,
		classifier: classifier,
		events:     events,
		now:        time.Now,
		state:      state,
	}, nil
}

func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	items := make([]Item, len(u.state.Items))
	copy(items, u.state.Items)
	return State{Items: items}
}

// Upload checks data is an image and runs it through UploadItem.
func (u *Uploader) Upload(ctx context.Context, name string, data []byte) (Item, error) {
	item, err := NewItem(name, data)
	if err != nil {
		return Item{}, err
	}
	return u.UploadItem(ctx, item)
}

// UploadItem returns the classified item. When only the usage event fails
// the item is still returned alongside the error. An item whose
// classification does not finish is taken out of the gallery again.
func (u *Uploader) UploadItem(ctx context.Context, item Item) (Item, error) {
	if err := u.update(ctx, func(s State) State { return Add(s, item) }); err != nil {
		return Item{}, err
	}

	start := u.now()
	label, err := u.classifier.Classify(ctx)
	if err != nil {
		// ctx may already be cancelled; the rollback must still reach storage
		cleanup := context.WithoutCancel(ctx)
		if rerr := u.update(cleanup, func(s State) State { return Remove(s, item.ID) }); rerr != nil {
			zerolog.Ctx(ctx).Warn().Err(rerr).Str("id", item.ID).Msg("pending item left in gallery")
		}
		return Item{}, err
	}
	elapsed := u.now().Sub(start)
	if err := u.update(ctx, func(s State) State { return Classified(s, item.ID, label) }); err != nil {
		return item, err
	}
	item.Classification = label
	zerolog.Ctx(ctx).Debug().
		Str("id", item.ID).
		Str("label", label).
		Dur("elapsed", elapsed).
		Msg("image classified")

	if u.events == nil {
		return item, nil
	}
	_, err = u.events.CreateEvent(ctx, &api.CreateEventRequest{Event: &api.Event{
		Subject:           EventSubject,
		Source:            EventSource,
		Action:            EventAction,
		ExecutionDuration: api.NewDuration(elapsed),
	}})
	if err != nil {
		return item, errdef.Wrap(errdef.CodeRPC, err, "record classify event")
	}
	return item, nil
}

func (u *Uploader) update(ctx context.Context, fn func(State) State) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	next := fn(u.state)
	if err := Save(ctx, u.kv, next); err != nil {
		return err
	}
	u.state = next
	return nil
}
