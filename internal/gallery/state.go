package gallery

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jan-sykora/api-demo/internal/errdef"
	"github.com/jan-sykora/api-demo/internal/gateway"
	"github.com/jan-sykora/api-demo/internal/storage"
)

// StorageKey is where the gallery lives in the key/value store.
const StorageKey = "gallery.images"

const idLength = 7

type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	DataURL string `json:"dataUrl"`
	// Classification stays empty until the classifier answers.
	Classification string `json:"classification,omitempty"`
}

func (i Item) Pending() bool { return i.Classification == "" }

// State holds the gallery newest first.
type State struct {
	Items []Item
}

// Add puts item in front of the existing ones.
func Add(state State, item Item) State {
	items := make([]Item, 0, len(state.Items)+1)
	items = append(items, item)
	items = append(items, state.Items...)
	return State{Items: items}
}

// Classified sets the label of the item with id. Unknown ids leave state alone.
func Classified(state State, id, label string) State {
	idx := -1
	for i, item := range state.Items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return state
	}
	items := make([]Item, len(state.Items))
	copy(items, state.Items)
	items[idx].Classification = label
	return State{Items: items}
}

// Remove drops the item with id. Unknown ids leave state alone.
func Remove(state State, id string) State {
	items := make([]Item, 0, len(state.Items))
	for _, item := range state.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	if len(items) == len(state.Items) {
		return state
	}
	return State{Items: items}
}

func (s State) Find(id string) (Item, bool) {
	for _, item := range s.Items {
		if item.ID == id {
			return item, true
		}
	}
	return Item{}, false
}

// Load reads the saved gallery. Unreadable data is dropped in favour of an empty gallery.
func Load(ctx context.Context, kv storage.KV) (State, error) {
	data, ok, err := kv.Get(ctx, StorageKey)
	if err != nil {
		return State{}, err
	}
	if !ok || len(data) == 0 {
		return State{}, nil
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", StorageKey).Msg("discarding corrupt gallery state")
		return State{}, nil
	}
	return State{Items: items}, nil
}

func Save(ctx context.Context, kv storage.KV, state State) error {
	items := state.Items
	if items == nil {
		items = []Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errdef.Wrap(errdef.CodeStorage, err, "encode gallery")
	}
	return kv.Set(ctx, StorageKey, data)
}

// NewItem turns an uploaded file into a pending gallery item.
func NewItem(name string, data []byte) (Item, error) {
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Item{}, errdef.New(errdef.CodeParse, "%s is not an image (%s)", name, mime)
	}
	return Item{
		ID:      newID(),
		Name:    name,
		DataURL: "data:" + mime + ";base64," + gateway.EncodeBase64(data),
	}, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idLength]
}
