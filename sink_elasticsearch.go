package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Station-Manager/errors"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ElasticsearchTimestampField is the document field holding the event time.
const ElasticsearchTimestampField = "@timestamp"

// ElasticsearchSinkOptions configures an ElasticsearchSink.
type ElasticsearchSinkOptions struct {
	// IndexPrefix is followed by the event date (YYYY.MM.DD) to form the
	// index name, e.g. "usage-" -> "usage-2024.05.01".
	IndexPrefix string
	// AutoRegisterTemplate installs an index template for IndexPrefix* when
	// the sink is created.
	AutoRegisterTemplate bool
}

// ElasticsearchSink writes each event as one document into a daily index.
// Event fields are inlined at the top level of the document.
type ElasticsearchSink struct {
	client      *elasticsearch.Client
	indexPrefix string
	now         func() time.Time
}

// NewElasticsearchClient creates a client for a single node URI.
func NewElasticsearchClient(uri, username, password string) (*elasticsearch.Client, error) {
	return elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{uri},
		Username:  username,
		Password:  password,
	})
}

// NewElasticsearchSink creates a sink writing into opts.IndexPrefix indexes.
func NewElasticsearchSink(ctx context.Context, client *elasticsearch.Client, opts ElasticsearchSinkOptions) (*ElasticsearchSink, error) {
	const op errors.Op = "logging.NewElasticsearchSink"
	if client == nil {
		return nil, errors.New(op).Msg(errMsgSinkInit)
	}

	s := &ElasticsearchSink{
		client:      client,
		indexPrefix: opts.IndexPrefix,
		now:         time.Now,
	}

	if opts.AutoRegisterTemplate {
		if err := s.registerTemplate(ctx); err != nil {
			return nil, errors.New(op).Err(err).Msg(errMsgTemplate)
		}
	}

	return s, nil
}

// IndexName returns the index an event stamped at t is written to.
func (s *ElasticsearchSink) IndexName(t time.Time) string {
	if t.IsZero() {
		t = s.now()
	}
	return s.indexPrefix + t.UTC().Format(indexDateLayout)
}

// Write indexes evt with a random document id.
func (s *ElasticsearchSink) Write(ctx context.Context, evt Event) error {
	doc := make(map[string]any, len(evt)+1)
	for k, v := range evt {
		doc[k] = v
	}
	ts := evt.Time()
	if ts.IsZero() {
		ts = s.now()
	}
	delete(doc, zerolog.TimestampFieldName)
	doc[ElasticsearchTimestampField] = ts.UTC().Format(time.RFC3339Nano)

	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      s.IndexName(ts),
		DocumentID: uuid.NewString(),
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res)
	}
	_, _ = io.Copy(io.Discard, res.Body)
	return nil
}

// Close is a no-op; the client holds no resources that need releasing.
func (s *ElasticsearchSink) Close() error {
	return nil
}

func (s *ElasticsearchSink) templateName() string {
	name := strings.Trim(s.indexPrefix, "-_.")
	if name == emptyString {
		name = "logs"
	}
	return name + "-template"
}

func (s *ElasticsearchSink) registerTemplate(ctx context.Context) error {
	template := map[string]any{
		"index_patterns": []string{s.indexPrefix + "*"},
		"settings": map[string]any{
			"number_of_shards": 1,
		},
		"mappings": map[string]any{
			"properties": map[string]any{
				ElasticsearchTimestampField: map[string]any{"type": "date"},
				zerolog.LevelFieldName:      map[string]any{"type": "keyword"},
				zerolog.MessageFieldName:    map[string]any{"type": "text"},
				FieldMachineName:            map[string]any{"type": "keyword"},
				FieldAssembly:               map[string]any{"type": "keyword"},
				FieldUsageName:              map[string]any{"type": "keyword"},
				FieldErrorID:                map[string]any{"type": "keyword"},
				FieldElapsedMilliseconds:    map[string]any{"type": "long"},
			},
		},
	}

	body, err := json.Marshal(template)
	if err != nil {
		return err
	}

	req := esapi.IndicesPutTemplateRequest{
		Name: s.templateName(),
		Body: bytes.NewReader(body),
	}
	res, err := req.Do(ctx, s.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return responseError(res)
	}
	return nil
}

func responseError(res *esapi.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch: %s: %s", res.Status(), strings.TrimSpace(string(msg)))
}
