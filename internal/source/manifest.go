package source

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Manifest maps source collection names to JSON-lines dump files, one
// document per line.
type Manifest struct {
	Collections map[string]string `yaml:"collections"`
}

// LoadManifest reads and validates a manifest file. Collection names must
// be ones the pipeline knows about.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "source: read manifest")
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, eris.Wrap(err, "source: parse manifest")
	}
	if len(m.Collections) == 0 {
		return nil, eris.New("source: manifest lists no collections")
	}

	known := make(map[string]bool, len(Tables))
	for _, t := range Tables {
		known[t.Collection] = true
	}
	for coll := range m.Collections {
		if !known[coll] {
			return nil, eris.Errorf("source: unknown collection %q in manifest", coll)
		}
	}
	return &m, nil
}

// Import loads every file in the manifest into the sink, dropping each
// collection first. Collections load in name order so repeated imports
// behave the same way.
func (m *Manifest) Import(ctx context.Context, sink Sink, batchSize int) error {
	if batchSize <= 0 {
		batchSize = 1000
	}

	colls := make([]string, 0, len(m.Collections))
	for coll := range m.Collections {
		colls = append(colls, coll)
	}
	sort.Strings(colls)

	for _, coll := range colls {
		n, err := importFile(ctx, sink, coll, m.Collections[coll], batchSize)
		if err != nil {
			return eris.Wrapf(err, "source: import %s", coll)
		}
		zap.L().Info("source: file imported",
			zap.String("collection", coll),
			zap.String("file", m.Collections[coll]),
			zap.Int("rows", n),
		)
	}
	return nil
}

func importFile(ctx context.Context, sink Sink, coll, path string, batchSize int) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "source: open dump")
	}
	defer f.Close()

	if err := sink.DropSource(ctx, coll); err != nil {
		return 0, err
	}

	total := 0
	batch := make([]interface{}, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.InsertSourceRows(ctx, coll, batch); err != nil {
			return err
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	scanner := bufio.NewScanner(f)
	// Review comments can make for long lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Bytes()
		if len(text) == 0 {
			continue
		}
		var doc map[string]interface{}
		if err := json.Unmarshal(text, &doc); err != nil {
			return total, eris.Wrapf(err, "source: decode line %d", line)
		}
		batch = append(batch, doc)
		if len(batch) >= batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return total, eris.Wrap(err, "source: scan dump")
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}
