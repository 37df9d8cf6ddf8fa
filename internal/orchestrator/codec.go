package orchestrator

import (
	"encoding/json"

	"github.com/mediadirectory/searchcore/internal/catalog"
)

// codec turns ranked result slices into cache-storable bytes and back.
// Pulled out behind an interface so a future binary encoding (e.g.
// protobuf, once the cache is backed by a remote store) can swap in
// without touching the orchestrator's control flow.
type codec interface {
	encodeStations([]catalog.StationItem) ([]byte, error)
	decodeStations([]byte) ([]catalog.StationItem, error)
	encodePodcasts([]catalog.PodcastItem) ([]byte, error)
	decodePodcasts([]byte) ([]catalog.PodcastItem, error)
}

type jsonCodec struct{}

func (jsonCodec) encodeStations(items []catalog.StationItem) ([]byte, error) {
	return json.Marshal(items)
}

func (jsonCodec) decodeStations(data []byte) ([]catalog.StationItem, error) {
	var items []catalog.StationItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (jsonCodec) encodePodcasts(items []catalog.PodcastItem) ([]byte, error) {
	return json.Marshal(items)
}

func (jsonCodec) decodePodcasts(data []byte) ([]catalog.PodcastItem, error) {
	var items []catalog.PodcastItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	return items, nil
}
