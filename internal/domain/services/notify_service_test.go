package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"rwportal-http-service/internal/infrastructure/config"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                     { return !t.timeout }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type publishedMessage struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeMQTTClient 只实现通知服务用到的方法
type fakeMQTTClient struct {
	mqtt.Client
	connected      bool
	connectErr     error
	connectTimeout bool
	publishErr     error
	publishTimeout bool
	published      []publishedMessage
	disconnects    int
}

func (c *fakeMQTTClient) IsConnected() bool { return c.connected }

func (c *fakeMQTTClient) Connect() mqtt.Token {
	if c.connectErr == nil && !c.connectTimeout {
		c.connected = true
	}
	return &fakeToken{err: c.connectErr, timeout: c.connectTimeout}
}

func (c *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.published = append(c.published, publishedMessage{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return &fakeToken{err: c.publishErr, timeout: c.publishTimeout}
}

func (c *fakeMQTTClient) Disconnect(uint) {
	c.connected = false
	c.disconnects++
}

func newTestNotifier(client *fakeMQTTClient) (*MQTTNotifier, *config.Config) {
	cfg := testConfig()
	cfg.MQTTBrokerURL = "tcp://127.0.0.1:1883"
	cfg.MQTTClientID = "rwportal_test"
	cfg.MQTTTopicPrefix = "rw-07"
	cfg.MQTTQoS = 1

	n := NewMQTTNotifier(cfg)
	n.Client = client
	return n, cfg
}

func TestMQTTNotifier(t *testing.T) {
	result := &GenerateResult{
		RunID:          "run-1",
		Period:         "2024-03-01",
		Total:          3,
		Inserted:       2,
		Skipped:        1,
		NoTarif:        0,
		SkippedPreview: []string{"Jl. Melati No. 1"},
		NoTarifList:    []string{},
	}

	t.Run("publishes summary on prefixed topic", func(t *testing.T) {
		client := &fakeMQTTClient{}
		n, cfg := newTestNotifier(client)

		require.NoError(t, n.BillsGenerated(result))
		require.Len(t, client.published, 1)

		msg := client.published[0]
		assert.Equal(t, cfg.MQTTTopicPrefix+"/dues/bills/generated", msg.topic)
		assert.Equal(t, byte(1), msg.qos)
		assert.False(t, msg.retained)

		var decoded GenerateResult
		require.NoError(t, json.Unmarshal(msg.payload, &decoded))
		assert.Equal(t, *result, decoded)
	})

	t.Run("connects only when disconnected", func(t *testing.T) {
		client := &fakeMQTTClient{connected: true, connectErr: errors.New("must not dial")}
		n, _ := newTestNotifier(client)

		require.NoError(t, n.BillsGenerated(result))
		require.NoError(t, n.BillsGenerated(result))
		assert.Len(t, client.published, 2)

		n.Disconnect()
		n.Disconnect()
		assert.Equal(t, 1, client.disconnects)
	})

	t.Run("connect error is wrapped", func(t *testing.T) {
		refused := errors.New("connection refused")
		client := &fakeMQTTClient{connectErr: refused}
		n, _ := newTestNotifier(client)

		err := n.BillsGenerated(result)
		assert.ErrorIs(t, err, refused)
		assert.Empty(t, client.published)
	})

	t.Run("connect timeout", func(t *testing.T) {
		client := &fakeMQTTClient{connectTimeout: true}
		n, _ := newTestNotifier(client)

		err := n.BillsGenerated(result)
		assert.ErrorIs(t, err, ErrMQTTTimeout)
		assert.Empty(t, client.published)
	})

	t.Run("publish error is wrapped", func(t *testing.T) {
		rejected := errors.New("not authorized")
		client := &fakeMQTTClient{publishErr: rejected}
		n, _ := newTestNotifier(client)

		err := n.BillsGenerated(result)
		assert.ErrorIs(t, err, rejected)
	})

	t.Run("publish timeout", func(t *testing.T) {
		client := &fakeMQTTClient{publishTimeout: true}
		n, _ := newTestNotifier(client)

		err := n.BillsGenerated(result)
		assert.ErrorIs(t, err, ErrMQTTTimeout)
	})

	t.Run("publish failure does not fail generation", func(t *testing.T) {
		db := newTestDB(t)
		seedBillingFixture(t, db)
		client := &fakeMQTTClient{publishErr: errors.New("broker down")}
		n, _ := newTestNotifier(client)
		svc := NewDuesService(NewGormDuesStore(db), testZones(t), NewLocalLocker(), n, 20)

		generated, err := svc.GenerateBills(context.Background(), rwAdmin(), "2024-03")
		require.NoError(t, err)
		assert.Equal(t, 3, generated.Inserted)
		require.Len(t, client.published, 1)
	})
}
