//go:build integration

package main_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hearth-catering/service-booking/internal/application"
	bookingDomain "github.com/hearth-catering/service-booking/internal/domain/booking"
	bookingEvents "github.com/hearth-catering/service-booking/internal/events"
	"github.com/hearth-catering/service-booking/internal/gateway"
	"github.com/hearth-catering/service-booking/internal/repository"
	"github.com/hearth-catering/service-booking/pkg/database"
	"github.com/hearth-catering/service-booking/pkg/events"
	"github.com/hearth-catering/service-booking/pkg/kafka"
)

const testWebhookSecret = "whsec_integration"

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB           *gorm.DB
	KafkaBrokers []string
	Cleanup      func()
}

// bookingStack holds wired-up booking service components.
type bookingStack struct {
	Service         *application.BookingService
	Processor       *application.ReconciliationProcessor
	Consumer        *bookingEvents.GatewayNotificationConsumer
	CleanupProducer func()
}

// setupPostgres starts a PostgreSQL container and applies the goose migrations.
func setupPostgres(t *testing.T) (*gorm.DB, func()) {
	t.Helper()
	ctx := context.Background()
	log := zap.NewNop()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, log)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, repository.RunMigrations(ctx, db, log))

	return db, func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}
}

// setupContainers starts PostgreSQL and Kafka testcontainers.
func setupContainers(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	db, cleanupDB := setupPostgres(t)

	// Start Kafka container using confluent-local (supports KRaft natively).
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	kafkaBrokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	// Pre-create required topics.
	createTopics(t, kafkaBrokers,
		events.TopicBookingEvents,
		events.TopicEmailNotifications,
		events.TopicGatewayNotifications,
	)

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
		cleanupDB()
	}

	return &testInfra{
		DB:           db,
		KafkaBrokers: kafkaBrokers,
		Cleanup:      cleanup,
	}
}

func testCatalog() *bookingDomain.Catalog {
	return bookingDomain.NewCatalog(
		[]bookingDomain.Package{{ID: "classic", Name: "Classic Filipino", PricePerHead: bookingDomain.MoneyFromMajor(1200)}},
		[]bookingDomain.AddOn{{ID: "lechon", Name: "Whole Lechon", Kind: bookingDomain.AddOnFlat, Price: bookingDomain.MoneyFromMajor(9000)}},
	)
}

// newServices wires the services over the GORM repositories. With a nil
// producer, notifications and events are only logged.
func newServices(db *gorm.DB, producer *kafka.Producer, logger *zap.Logger) (*application.BookingService, *application.ReconciliationProcessor) {
	catalog := testCatalog()
	calc := bookingDomain.NewStandardSettlementCalculator(catalog, bookingDomain.DefaultTransportFee, bookingDomain.DefaultServiceChargeBps)

	var (
		notifier  application.Notifier       = application.NewLogNotifier(logger)
		publisher application.EventPublisher = application.NewLogPublisher(logger)
	)
	if producer != nil {
		notifier = bookingEvents.NewKafkaNotifier(producer)
		publisher = bookingEvents.NewKafkaPublisher(producer)
	}

	bookingRepo := repository.NewGormBookingRepository(db)
	svc := application.NewBookingService(
		bookingRepo,
		repository.NewGormBlockedDateRepository(db),
		catalog,
		calc,
		notifier,
		publisher,
		nil,
		logger,
	)
	processor := application.NewReconciliationProcessor(
		bookingRepo,
		repository.NewGormUnresolvedRepository(db),
		publisher,
		testWebhookSecret,
		gateway.DefaultSignatureTolerance,
		logger,
	)
	return svc, processor
}

// setupBookingStack wires up the full booking service stack.
func setupBookingStack(t *testing.T, db *gorm.DB, brokers []string) *bookingStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	producer := kafka.NewProducer(brokers, logger)
	svc, processor := newServices(db, producer, logger)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewGatewayNotificationConsumer(brokers, groupID, processor, logger)

	return &bookingStack{
		Service:         svc,
		Processor:       processor,
		Consumer:        consumer,
		CleanupProducer: func() { _ = producer.Close() },
	}
}

// seedContractedBooking walks a new booking to Contract Sent at 132,000.
func seedContractedBooking(t *testing.T, svc *application.BookingService, eventDate string) string {
	t.Helper()
	ctx := context.Background()

	created, err := svc.CreateBooking(ctx, application.CreateInquiryRequest{
		Name:      "Maria Santos",
		Email:     "maria@example.com",
		EventDate: eventDate,
		Guests:    100,
	})
	require.NoError(t, err)

	_, err = svc.SendProposal(ctx, created.Reference, application.SendProposalRequest{PackageID: "classic", AddOnIDs: []string{"lechon"}})
	require.NoError(t, err)
	_, err = svc.AcceptProposal(ctx, created.Reference, application.AcceptProposalRequest{PackageID: "classic", AddOnIDs: []string{"lechon"}})
	require.NoError(t, err)
	_, err = svc.SendContract(ctx, created.Reference, application.SendContractRequest{})
	require.NoError(t, err)
	return created.Reference
}

// paymentNotification builds a signed link.payment.paid body.
func paymentNotification(t *testing.T, txn, reference string, amount int64) ([]byte, string) {
	t.Helper()
	body, err := json.Marshal(gateway.Notification{
		ID:   "evt_" + txn,
		Type: gateway.EventLinkPaymentPaid,
		Data: gateway.PaymentData{
			TransactionID: txn,
			Amount:        amount,
			Currency:      gateway.Currency,
			Description:   "Catering " + gateway.ReferenceMarker(reference),
			PaidAt:        time.Now().UTC(),
		},
	})
	require.NoError(t, err)
	return body, gateway.Sign(body, testWebhookSecret, time.Now())
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForInquiryStatus polls the inquiries table until the status matches.
func waitForInquiryStatus(t *testing.T, db *gorm.DB, reference string, expected bookingDomain.InquiryStatus, timeout time.Duration) repository.InquiryModel {
	t.Helper()
	var result repository.InquiryModel
	require.Eventually(t, func() bool {
		var model repository.InquiryModel
		if err := db.Where("reference = ?", reference).First(&model).Error; err != nil {
			return false
		}
		if model.Status == string(expected) {
			result = model
			return true
		}
		return false
	}, timeout, 200*time.Millisecond, "booking did not transition to %s", expected)
	return result
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the
// expected type for the given subject.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType, subject string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType && ce.Subject == subject {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
