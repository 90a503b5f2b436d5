package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resume-ranker/internal/config"
	"resume-ranker/internal/constants"
	"resume-ranker/internal/logger"
	"resume-ranker/internal/tracing"
	"resume-ranker/internal/types"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var mqTracer = otel.Tracer("resume-ranker/storage/rabbitmq")

// message 一条待发布的消息
type message struct {
	exchange   string
	routingKey string
	body       []byte
	persistent bool
	msgType    string
	messageID  string
}

// RabbitMQ 提供消息队列功能
type RabbitMQ struct {
	conn         *amqp.Connection
	channelPool  sync.Pool
	declMu       sync.Mutex
	exchangeMap  map[string]bool // 记录已声明的exchange
	queueMap     map[string]bool // 记录已声明的queue
	bindingMap   map[string]bool // 记录已创建的binding (key格式: "exchange:queue:routingKey")
	publishMutex sync.Mutex      // 保护发布操作
	cfg          *config.RabbitMQConfig
	log          zerolog.Logger
}

// NewRabbitMQ 创建RabbitMQ客户端
func NewRabbitMQ(cfg *config.RabbitMQConfig) (*RabbitMQ, error) {
	if cfg == nil {
		return nil, fmt.Errorf("RabbitMQ配置不能为空")
	}
	if cfg.URL == "" {
		return nil, fmt.Errorf("RabbitMQ URL配置不能为空")
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("无法连接到RabbitMQ服务器: %w", err)
	}

	mq := &RabbitMQ{
		conn:        conn,
		exchangeMap: make(map[string]bool),
		queueMap:    make(map[string]bool),
		bindingMap:  make(map[string]bool),
		cfg:         cfg,
		log:         logger.Logger.With().Str("component", "rabbitmq").Logger(),
	}

	// 初始化channel池
	mq.channelPool = sync.Pool{
		New: func() interface{} {
			ch, errPool := mq.openChannel()
			if errPool != nil {
				mq.log.Error().Err(errPool).Msg("创建RabbitMQ通道失败")
				return nil
			}
			return ch
		},
	}

	// 测试连接和通道
	testCh := mq.getChannel()
	if testCh == nil {
		conn.Close()
		return nil, fmt.Errorf("无法创建RabbitMQ通道")
	}
	mq.putChannel(testCh)

	mq.log.Info().Bool("publisher_confirms", cfg.PublisherConfirms).Msg("成功连接到RabbitMQ服务器")
	return mq, nil
}

// openChannel 打开新通道，启用发布确认时切换到 confirm 模式
func (r *RabbitMQ) openChannel() (*amqp.Channel, error) {
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, err
	}
	if r.cfg.PublisherConfirms {
		if err := ch.Confirm(false); err != nil {
			ch.Close()
			return nil, fmt.Errorf("启用发布确认失败: %w", err)
		}
	}
	return ch, nil
}

// 获取可用通道
func (r *RabbitMQ) getChannel() *amqp.Channel {
	for {
		v := r.channelPool.Get()
		if v == nil {
			ch, err := r.openChannel()
			if err != nil {
				r.log.Error().Err(err).Msg("创建新RabbitMQ通道失败")
				return nil
			}
			return ch
		}
		// 丢弃已被服务端关闭的通道
		if ch := v.(*amqp.Channel); !ch.IsClosed() {
			return ch
		}
	}
}

// 归还通道到池
func (r *RabbitMQ) putChannel(ch *amqp.Channel) {
	if ch != nil && !ch.IsClosed() {
		r.channelPool.Put(ch)
	}
}

// Close 关闭连接
func (r *RabbitMQ) Close() error {
	return r.conn.Close()
}

// EnsureExchange 确保exchange存在
func (r *RabbitMQ) EnsureExchange(exchangeName, exchangeType string, durable bool) error {
	if exchangeName == "" {
		return fmt.Errorf("exchange名称不能为空")
	}
	// 防止尝试声明默认交换机
	if exchangeName == "amq.default" || exchangeName == "default" {
		return fmt.Errorf("不能声明默认交换机 '%s'", exchangeName)
	}

	r.declMu.Lock()
	defer r.declMu.Unlock()
	if r.exchangeMap[exchangeName] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.ExchangeDeclare(
		exchangeName, // exchange名称
		exchangeType, // exchange类型
		durable,      // 持久化
		false,        // 自动删除
		false,        // 内部专用
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("声明exchange失败: %w", err)
	}

	r.exchangeMap[exchangeName] = true
	r.log.Debug().Str("exchange", exchangeName).Str("type", exchangeType).Msg("已确保exchange存在")
	return nil
}

// declareQueue 确保队列存在并返回队列名，名称为空时由服务端生成自动删除的临时队列
func (r *RabbitMQ) declareQueue(queueName string, durable bool) (string, error) {
	r.declMu.Lock()
	defer r.declMu.Unlock()
	if queueName != "" && r.queueMap[queueName] {
		return queueName, nil
	}

	ch := r.getChannel()
	if ch == nil {
		return "", fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	temporary := queueName == ""
	q, err := ch.QueueDeclare(
		queueName, // 队列名称
		durable,   // 持久化
		temporary, // 自动删除
		false,     // 独占
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		return "", fmt.Errorf("声明队列失败: %w", err)
	}

	r.queueMap[q.Name] = true
	r.log.Debug().Str("queue", q.Name).Msg("已确保队列存在")
	return q.Name, nil
}

// BindQueue 绑定队列到exchange
func (r *RabbitMQ) BindQueue(queueName, exchangeName, routingKey string) error {
	bindingKey := fmt.Sprintf("%s:%s:%s", exchangeName, queueName, routingKey)

	r.declMu.Lock()
	defer r.declMu.Unlock()
	if r.bindingMap[bindingKey] {
		return nil
	}

	ch := r.getChannel()
	if ch == nil {
		return fmt.Errorf("无法获取RabbitMQ通道")
	}
	defer r.putChannel(ch)

	err := ch.QueueBind(
		queueName,    // 队列名
		routingKey,   // 路由键
		exchangeName, // exchange名
		false,        // 非阻塞
		nil,          // 参数
	)
	if err != nil {
		return fmt.Errorf("绑定队列到exchange失败: %w", err)
	}

	r.bindingMap[bindingKey] = true
	r.log.Debug().Str("queue", queueName).Str("exchange", exchangeName).Str("routing_key", routingKey).Msg("已绑定队列")
	return nil
}

// PublishRankingCompleted 发布排名完成事件，实现 processor.EventPublisher
func (r *RabbitMQ) PublishRankingCompleted(ctx context.Context, event *types.RankingCompletedEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}
	if err := r.EnsureExchange(r.cfg.RankingExchange, amqp.ExchangeTopic, true); err != nil {
		return err
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化排名事件失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, config.GetDuration(r.cfg.PublishTimeout, 5*time.Second))
	defer cancel()
	return r.publish(ctx, message{
		exchange:   r.cfg.RankingExchange,
		routingKey: r.cfg.RankedRoutingKey,
		body:       body,
		persistent: true,
		msgType:    constants.EventTypeRankingCompleted,
		messageID:  event.BatchID,
	})
}

func (r *RabbitMQ) publish(ctx context.Context, msg message) error {
	ctx, span := mqTracer.Start(ctx, "RabbitMQ.Publish", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()
	span.SetAttributes(
		attribute.String("messaging.system", "rabbitmq"),
		attribute.String("messaging.destination.name", msg.exchange),
		attribute.String("messaging.rabbitmq.routing_key", msg.routingKey),
		attribute.Int("messaging.message.body.size", len(msg.body)),
	)

	msgAttr := attribute.String("messaging.message_id", msg.messageID)

	r.publishMutex.Lock()
	defer r.publishMutex.Unlock()

	ch := r.getChannel()
	if ch == nil {
		err := fmt.Errorf("无法获取RabbitMQ通道")
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeRabbitMQ, msgAttr)
		return err
	}
	defer r.putChannel(ch)

	publishing := amqp.Publishing{
		DeliveryMode: deliveryMode(msg.persistent),
		ContentType:  "application/json",
		Type:         msg.msgType,
		MessageId:    msg.messageID,
		Body:         msg.body,
		Timestamp:    time.Now(),
	}

	if !r.cfg.PublisherConfirms {
		if err := ch.PublishWithContext(ctx, msg.exchange, msg.routingKey, false, false, publishing); err != nil {
			tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeRabbitMQ, msgAttr)
			return fmt.Errorf("发布消息失败: %w", err)
		}
		return nil
	}

	confirm, err := ch.PublishWithDeferredConfirmWithContext(ctx, msg.exchange, msg.routingKey, false, false, publishing)
	if err != nil {
		tracing.RecordErrorWithInfo(span, err, tracing.ErrorTypeRabbitMQ, msgAttr)
		return fmt.Errorf("发布消息失败: %w", err)
	}
	acked, err := confirm.WaitContext(ctx)
	if err != nil {
		tracing.RecordRabbitMQTimeout(span, msg.messageID, config.GetDuration(r.cfg.PublishTimeout, 5*time.Second).String())
		return fmt.Errorf("等待发布确认失败: %w", err)
	}
	if !acked {
		tracing.RecordRabbitMQNack(span, msg.messageID, "")
		return fmt.Errorf("消息 %s 被服务端拒绝", msg.messageID)
	}
	span.SetAttributes(attribute.Bool("messaging.rabbitmq.confirmed", true))
	return nil
}

func deliveryMode(persistent bool) uint8 {
	if persistent {
		return amqp.Persistent
	}
	return amqp.Transient
}

// SubscribeRankingEvents 声明临时队列并绑定到排名事件，
// 每收到一条事件调用一次 handler，ctx 结束时停止消费。
func (r *RabbitMQ) SubscribeRankingEvents(ctx context.Context, handler func(*types.RankingCompletedEvent)) error {
	if err := r.EnsureExchange(r.cfg.RankingExchange, amqp.ExchangeTopic, true); err != nil {
		return err
	}
	queue, err := r.declareQueue("", false)
	if err != nil {
		return err
	}
	if err := r.BindQueue(queue, r.cfg.RankingExchange, r.cfg.RankedRoutingKey); err != nil {
		return err
	}

	done, err := r.StartConsumer(queue, 10, func(body []byte) bool {
		var event types.RankingCompletedEvent
		if err := json.Unmarshal(body, &event); err != nil {
			r.log.Warn().Err(err).Msg("无法解析排名事件，丢弃")
			return true
		}
		handler(&event)
		return true
	})
	if err != nil {
		return err
	}
	<-ctx.Done()
	close(done)
	return nil
}

// StartConsumer 启动消费者处理函数，关闭返回的通道即停止消费
func (r *RabbitMQ) StartConsumer(queueName string, prefetchCount int, handler func([]byte) bool) (chan<- struct{}, error) {
	stopCh := make(chan struct{})

	// 消费者独占一个通道，不归还到发布池
	ch, err := r.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("无法获取RabbitMQ通道: %w", err)
	}

	// 设置QoS，控制预取数量
	if err := ch.Qos(prefetchCount, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("设置QoS失败: %w", err)
	}

	deliveries, err := ch.Consume(
		queueName, // 队列
		"",        // 消费者标签，留空由server生成唯一标签
		false,     // 自动确认
		false,     // 独占
		false,     // 非本地
		false,     // 非阻塞
		nil,       // 参数
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("注册消费者失败: %w", err)
	}

	go func() {
		defer ch.Close()
		defer r.log.Info().Str("queue", queueName).Msg("RabbitMQ消费者已停止")

		r.log.Info().Str("queue", queueName).Int("prefetch", prefetchCount).Msg("RabbitMQ消费者已启动")

		for {
			select {
			case <-stopCh:
				return
			case delivery, ok := <-deliveries:
				if !ok {
					r.log.Warn().Msg("RabbitMQ通道已关闭")
					return
				}

				if handler(delivery.Body) {
					if err := delivery.Ack(false); err != nil {
						r.log.Error().Err(err).Msg("确认消息失败")
					}
				} else {
					// 处理失败，拒绝并重新入队
					if err := delivery.Nack(false, true); err != nil {
						r.log.Error().Err(err).Msg("拒绝消息失败")
					}
				}
			}
		}
	}()

	return stopCh, nil
}
