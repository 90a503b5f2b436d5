package storage

import (
	"context"
	"fmt"

	"resume-ranker/internal/config"
	"resume-ranker/internal/logger"
)

// Storage 存储管理器，聚合可选的外部依赖。
// 未配置的组件保持为 nil，调用方按需判断。
type Storage struct {
	// 消息队列，发布排名完成事件
	RabbitMQ *RabbitMQ

	// 键值存储，解析结果缓存
	Redis *Redis
}

// NewStorage 创建存储管理器。
// 已配置的组件初始化失败时返回错误，不做静默降级。
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("配置不能为空")
	}

	storage := &Storage{}
	var err error

	if cfg.Redis.Address != "" {
		logger.Info().Str("address", cfg.Redis.Address).Msg("初始化Redis...")
		storage.Redis, err = NewRedisAdapter(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("初始化Redis失败: %w", err)
		}
	} else {
		logger.Info().Msg("Redis未配置, 跳过解析缓存")
	}

	if cfg.RabbitMQ.Enabled {
		logger.Info().Msg("初始化RabbitMQ...")
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			storage.Close()
			return nil, fmt.Errorf("初始化RabbitMQ失败: %w", err)
		}
		if err := storage.RabbitMQ.EnsureExchange(cfg.RabbitMQ.RankingExchange, "topic", true); err != nil {
			storage.Close()
			return nil, err
		}
	}

	if err := ctx.Err(); err != nil {
		storage.Close()
		return nil, err
	}
	return storage, nil
}

// Close 关闭所有连接
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭RabbitMQ连接失败")
		}
	}
	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			logger.Warn().Err(err).Msg("关闭Redis连接失败")
		}
	}
}
