package directus

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/goccy/go-json"

	"hugo-directus/pkg/models"
)

type collectionEntry struct {
	Collection string `json:"collection"`
	Meta       *struct {
		Singleton bool `json:"singleton"`
		System    bool `json:"system"`
	} `json:"meta"`
}

// Collections lists every collection known to the instance, system ones included.
func (s *Session) Collections(ctx context.Context) ([]models.Collection, error) {
	var body struct {
		Data []collectionEntry `json:"data"`
	}
	if err := s.getJSON(ctx, "list collections", "/collections", &body); err != nil {
		return nil, err
	}

	cols := make([]models.Collection, 0, len(body.Data))
	for _, e := range body.Data {
		col := models.Collection{Name: e.Collection}
		if e.Meta != nil {
			col.Singleton = e.Meta.Singleton
			col.System = e.Meta.System
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// ItemsPayload is the raw data of an items response: an object for
// singletons, an array otherwise.
type ItemsPayload struct {
	Data json.RawMessage `json:"data"`
}

// Items reads the first page of a collection.
func (s *Session) Items(ctx context.Context, collection string) (*ItemsPayload, error) {
	var body ItemsPayload
	op := fmt.Sprintf("list items of %s", collection)
	if err := s.getJSON(ctx, op, "/items/"+url.PathEscape(collection), &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// List normalizes the payload to a slice. A null singleton yields no items.
func (p *ItemsPayload) List(singleton bool) ([]models.Item, error) {
	data := bytes.TrimSpace(p.Data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if singleton {
		var one map[string]interface{}
		if err := dec.Decode(&one); err != nil {
			return nil, fmt.Errorf("decode singleton: %w", err)
		}
		return []models.Item{normalizeItem(one)}, nil
	}

	var many []map[string]interface{}
	if err := dec.Decode(&many); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	items := make([]models.Item, 0, len(many))
	for _, m := range many {
		items = append(items, normalizeItem(m))
	}
	return items, nil
}

func normalizeItem(m map[string]interface{}) models.Item {
	item := make(models.Item, len(m))
	for k, v := range m {
		item[k] = normalizeValue(v)
	}
	return item
}

// normalizeValue turns json.Number into int64 or float64 so encoders
// render plain numbers.
func normalizeValue(v interface{}) interface{} {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]interface{}:
		for k, inner := range t {
			t[k] = normalizeValue(inner)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = normalizeValue(t[i])
		}
		return t
	default:
		return v
	}
}

// Asset is a streamed asset download. Callers must close Body.
type Asset struct {
	Disposition string
	ContentType string
	Body        io.ReadCloser
}

// Asset requests the binary content of a file. A 403 yields an error
// matching ErrAccessDenied.
func (s *Session) Asset(ctx context.Context, id string) (*Asset, error) {
	op := fmt.Sprintf("download asset %s", id)
	resp, err := s.get(ctx, "/assets/"+url.PathEscape(id), url.Values{"download": {""}})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := checkStatus(op, resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return &Asset{
		Disposition: resp.Header.Get("Content-Disposition"),
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
	}, nil
}
