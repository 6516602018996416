package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"rwportal-http-service/internal/infrastructure/config"
	Logger "rwportal-http-service/pkg/logger"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// TopicBillsGenerated 账单生成事件主题后缀
const TopicBillsGenerated = "dues/bills/generated"

// ErrMQTTTimeout 连接或发布在限定时间内未完成
var ErrMQTTTimeout = errors.New("MQTT操作超时")

// BillNotifier 账单生成完成后的事件通知
type BillNotifier interface {
	BillsGenerated(result *GenerateResult) error
}

// NopNotifier 未启用MQTT时的空实现
type NopNotifier struct{}

// BillsGenerated 不做任何事
func (NopNotifier) BillsGenerated(*GenerateResult) error { return nil }

// MQTTNotifier 通过MQTT发布账单事件
type MQTTNotifier struct {
	Client mqtt.Client
	Topic  string
	QoS    byte

	publishMutex sync.Mutex
}

// NewMQTTNotifier 创建MQTT通知服务，连接在首次发布前建立
func NewMQTTNotifier(cfg *config.Config) *MQTTNotifier {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBrokerURL)
	// 多实例部署时客户端ID必须唯一
	opts.SetClientID(fmt.Sprintf("%s-%s", cfg.MQTTClientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetCleanSession(true)
	if cfg.MQTTUsername != "" {
		opts.SetUsername(cfg.MQTTUsername)
		opts.SetPassword(cfg.MQTTPassword)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		Logger.Warning("[MQTT] 连接丢失: %v", err)
	})
	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		Logger.Info("[MQTT] 成功连接到 %s", cfg.MQTTBrokerURL)
	})

	return &MQTTNotifier{
		Client: mqtt.NewClient(opts),
		Topic:  cfg.MQTTTopicPrefix + "/" + TopicBillsGenerated,
		QoS:    byte(cfg.MQTTQoS),
	}
}

// 1 Connect 连接到MQTT服务器
func (n *MQTTNotifier) Connect() error {
	if n.Client.IsConnected() {
		return nil
	}
	token := n.Client.Connect()
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("连接MQTT服务器: %w", ErrMQTTTimeout)
	}
	return token.Error()
}

// 2 BillsGenerated 发布生成摘要
func (n *MQTTNotifier) BillsGenerated(result *GenerateResult) error {
	n.publishMutex.Lock()
	defer n.publishMutex.Unlock()

	if err := n.Connect(); err != nil {
		return fmt.Errorf("MQTT客户端未连接: %w", err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("序列化消息失败: %w", err)
	}

	token := n.Client.Publish(n.Topic, n.QoS, false, payload)
	if !token.WaitTimeout(3 * time.Second) {
		return fmt.Errorf("发布消息: %w", ErrMQTTTimeout)
	}
	if token.Error() != nil {
		return fmt.Errorf("发布消息失败: %w", token.Error())
	}
	Logger.Info("[MQTT] 已发布账单生成事件到主题: %s", n.Topic)
	return nil
}

// 3 Disconnect 断开连接
func (n *MQTTNotifier) Disconnect() {
	if n.Client.IsConnected() {
		n.Client.Disconnect(250)
	}
}
