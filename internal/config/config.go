package config

import (
	"encoding/json"
	"fmt"
	"os"

	"streamplane/internal/index"
)

// Representation is one processed track variant of a stream.
type Representation struct {
	Id   string
	Lang string
	// Index is the initial index metadata derived from the configuration.
	// Template representations are fully described here; timeline, base and
	// list representations start with what the config declares and grow via
	// segment discovery.
	Index index.ManifestIndex
}

// Stream is a processed stream entry.
type Stream struct {
	Name            string
	Id              string
	BaseURL         string
	Representations []Representation
}

// Config holds the fully processed daemon configuration.
type Config struct {
	Name      string
	Id        string
	UserAgent string
	// IndexTypes optionally restricts which index variants the resolver
	// registers. Empty means all.
	IndexTypes []string
	Streams    []Stream
}

// rawRepresentation maps directly onto the JSON file.
type rawRepresentation struct {
	Id          string `json:"Id"`
	Lang        string `json:"Lang"`
	IndexType   string `json:"IndexType"`
	Timescale   uint64 `json:"Timescale"`
	Duration    uint64 `json:"Duration"`
	StartNumber uint64 `json:"StartNumber"`
	Media       string `json:"Media"`
	Init        string `json:"Init"`
}

type rawStream struct {
	Name            string              `json:"Name"`
	Id              string              `json:"Id"`
	BaseURL         string              `json:"BaseURL"`
	Representations []rawRepresentation `json:"Representations"`
}

type rawConfig struct {
	Name       string      `json:"Name"`
	Id         string      `json:"Id"`
	UserAgent  string      `json:"UserAgent"`
	IndexTypes []string    `json:"IndexTypes"`
	Streams    []rawStream `json:"Streams"`
}

// Load reads and parses the configuration file, applying the defaulting
// the index layer expects: timescale 1 and start number 1 when absent.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at %s: %w", path, err)
	}

	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config JSON: %w", err)
	}

	streams := make([]Stream, 0, len(raw.Streams))
	for _, rs := range raw.Streams {
		if rs.Id == "" {
			return nil, fmt.Errorf("stream %q has no Id", rs.Name)
		}
		reps := make([]Representation, 0, len(rs.Representations))
		for _, rr := range rs.Representations {
			rep, err := processRepresentation(rs.Id, rr)
			if err != nil {
				return nil, err
			}
			reps = append(reps, rep)
		}
		streams = append(streams, Stream{
			Name:            rs.Name,
			Id:              rs.Id,
			BaseURL:         rs.BaseURL,
			Representations: reps,
		})
	}

	return &Config{
		Name:       raw.Name,
		Id:         raw.Id,
		UserAgent:  raw.UserAgent,
		IndexTypes: raw.IndexTypes,
		Streams:    streams,
	}, nil
}

func processRepresentation(streamId string, rr rawRepresentation) (Representation, error) {
	if rr.Id == "" {
		return Representation{}, fmt.Errorf("stream %q has a representation with no Id", streamId)
	}
	switch rr.IndexType {
	case index.TypeTemplate, index.TypeTimeline, index.TypeBase, index.TypeList:
	case "":
		return Representation{}, fmt.Errorf("representation %q of stream %q declares no IndexType", rr.Id, streamId)
	default:
		return Representation{}, fmt.Errorf("representation %q of stream %q declares unknown IndexType %q", rr.Id, streamId, rr.IndexType)
	}
	if rr.IndexType == index.TypeTemplate && rr.Duration == 0 {
		return Representation{}, fmt.Errorf("template representation %q of stream %q needs a Duration", rr.Id, streamId)
	}

	timescale := rr.Timescale
	if timescale == 0 {
		timescale = 1
	}
	startNumber := rr.StartNumber
	if startNumber == 0 {
		startNumber = 1
	}

	return Representation{
		Id:   rr.Id,
		Lang: rr.Lang,
		Index: index.ManifestIndex{
			Type:           rr.IndexType,
			Timescale:      timescale,
			Duration:       rr.Duration,
			StartNumber:    startNumber,
			Media:          rr.Media,
			Initialization: rr.Init,
		},
	}, nil
}
