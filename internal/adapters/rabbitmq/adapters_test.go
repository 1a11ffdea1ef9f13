package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"wg-parser-service/internal/contextkeys"
	"wg-parser-service/internal/contracts"
	"wg-parser-service/internal/core/domain"
	"wg-parser-service/internal/core/port"
	"wg-parser-service/pkg/rabbitmq/rabbitmq_consumer"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	routingKey string
	msg        amqp.Publishing
	err        error
	calls      int
}

func (f *fakeProducer) Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error {
	f.calls++
	f.routingKey = routingKey
	f.msg = msg
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("publish context without deadline")
	}
	return f.err
}

type fakeUpdateUC struct {
	city string
	err  error
	ctx  context.Context
}

func (f *fakeUpdateUC) Execute(ctx context.Context, cityName string) (*domain.UpdateReport, error) {
	f.city = cityName
	f.ctx = ctx
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UpdateReport{CityName: cityName}, nil
}

type recordingLogger struct {
	fields port.Fields
	infos  []string
}

func (l *recordingLogger) Debug(msg string, fields port.Fields) {}
func (l *recordingLogger) Info(msg string, fields port.Fields)  { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warn(msg string, fields port.Fields)  {}
func (l *recordingLogger) Error(msg string, err error, fields port.Fields) {
	l.fields = fields
}
func (l *recordingLogger) WithFields(fields port.Fields) port.LoggerPort { return l }

func sampleReport() domain.UpdateReport {
	started := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return domain.UpdateReport{
		RunID:        uuid.New(),
		CityName:     "munich",
		StartedAt:    started,
		FinishedAt:   started.Add(3 * time.Minute),
		PagesFetched: 12,
		ActiveIDs:    240,
		Termination:  domain.TerminationInactiveMarker,
		Stats:        domain.ReconcileStats{Total: 300, Active: 240, Inactive: 60, Deactivated: 5},
		RowsUpdated:  5,
	}
}

func TestUpdateReportPublisher_PublishesValidMessage(t *testing.T) {
	producer := &fakeProducer{}
	adapter, err := NewUpdateReportPublisherAdapter(producer, "wg.update.results")
	require.NoError(t, err)

	ctx := contextkeys.ContextWithTraceID(context.Background(), "trace-1")
	require.NoError(t, adapter.PublishUpdateReport(ctx, sampleReport()))

	assert.Equal(t, "wg.update.results", producer.routingKey)
	assert.Equal(t, amqp.Persistent, producer.msg.DeliveryMode)
	assert.Equal(t, "application/json", producer.msg.ContentType)
	assert.Equal(t, "trace-1", producer.msg.Headers["x-trace-id"])
	assert.NoError(t, contracts.ValidateEvent(contracts.UpdateReportEvent, contracts.Version1, producer.msg.Body))

	var dto UpdateReportDTO
	require.NoError(t, json.Unmarshal(producer.msg.Body, &dto))
	assert.Equal(t, "inactive_marker", dto.Termination)
	assert.Equal(t, 5, dto.Stats.Deactivated)
}

func TestUpdateReportPublisher_WrapsProducerError(t *testing.T) {
	producer := &fakeProducer{err: errors.New("channel closed")}
	adapter, err := NewUpdateReportPublisherAdapter(producer, "wg.update.results")
	require.NoError(t, err)

	err = adapter.PublishUpdateReport(context.Background(), sampleReport())
	assert.ErrorContains(t, err, "channel closed")
}

func TestPublisherConstructors_Validate(t *testing.T) {
	_, err := NewUpdateReportPublisherAdapter(nil, "key")
	assert.Error(t, err)
	_, err = NewAdDiscoveredPublisherAdapter(&fakeProducer{}, "")
	assert.Error(t, err)
}

func TestAdDiscoveredPublisher_PublishesValidMessage(t *testing.T) {
	producer := &fakeProducer{}
	adapter, err := NewAdDiscoveredPublisherAdapter(producer, "wg.ads.new")
	require.NoError(t, err)

	rent, lat, lng := 650.0, 48.137, 11.575
	addr := "Leopoldstraße 1, 80802 München, Germany"
	ad := domain.Ad{
		AdRecord:         domain.AdRecord{AdID: 10234567, CityName: "munich", IsActive: true},
		Listing:          domain.ListingAd{AdID: 10234567, URL: "https://www.wg-gesucht.de/wg-zimmer-in-Munchen.10234567.html", Rent: &rent},
		TsScraped:        time.Now(),
		AddressFormatted: &addr,
		Latitude:         &lat,
		Longitude:        &lng,
	}
	require.NoError(t, adapter.PublishAdDiscovered(context.Background(), ad))

	assert.Equal(t, "wg.ads.new", producer.routingKey)
	assert.NotContains(t, producer.msg.Headers, "x-trace-id")
	assert.NoError(t, contracts.ValidateEvent(contracts.AdDiscoveredEvent, contracts.Version1, producer.msg.Body))

	var dto AdDiscoveredDTO
	require.NoError(t, json.Unmarshal(producer.msg.Body, &dto))
	assert.Equal(t, int64(10234567), dto.AdID)
	assert.Nil(t, dto.RoomSize)
}

func newTestConsumerAdapter(uc *fakeUpdateUC) *UpdateTasksConsumerAdapter {
	return &UpdateTasksConsumerAdapter{updateUC: uc, logger: &recordingLogger{}}
}

func TestUpdateTasksHandler_RunsUpdate(t *testing.T) {
	uc := &fakeUpdateUC{}
	adapter := newTestConsumerAdapter(uc)

	body := []byte(`{"city_name": "berlin", "task_id": "3f2b8c1e-6c1a-4e0e-9a59-1f5d6f8a2b10"}`)
	err := adapter.messageHandler(context.Background(), amqp.Delivery{
		Body:    body,
		Headers: amqp.Table{"x-trace-id": "abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, "berlin", uc.city)
	assert.Equal(t, "abc", contextkeys.TraceIDFromContext(uc.ctx))
}

func TestUpdateTasksHandler_ErrorClassification(t *testing.T) {
	validBody := []byte(`{"city_name": "berlin", "task_id": "3f2b8c1e-6c1a-4e0e-9a59-1f5d6f8a2b10"}`)

	tests := []struct {
		name          string
		body          []byte
		ucErr         error
		wantErr       bool
		wantPermanent bool
	}{
		{"invalid json", []byte(`not json`), nil, true, true},
		{"schema violation", []byte(`{"city_name": ""}`), nil, true, true},
		{"unknown city", validBody, domain.ErrUnknownCity, true, true},
		{"run in progress", validBody, domain.ErrRunInProgress, false, false},
		{"fetch failure", validBody, domain.ErrFetch, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter := newTestConsumerAdapter(&fakeUpdateUC{err: tt.ucErr})
			err := adapter.messageHandler(context.Background(), amqp.Delivery{Body: tt.body})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantPermanent, errors.Is(err, rabbitmq_consumer.ErrPermanent))
		})
	}
}
