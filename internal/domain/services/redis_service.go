package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	Logger "rwportal-http-service/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockHeld 锁已被其他生成任务持有
var ErrLockHeld = errors.New("lock is held")

// PeriodLocker 账期级互斥锁，同一账期同时只允许一个生成任务
type PeriodLocker interface {
	// Acquire 获取锁，成功时返回释放函数，锁被占用时返回 ErrLockHeld
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// releaseScript 仅当值与持有者令牌一致时删除，避免误删他人的锁
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// InterfaceRedisService defines the Redis service interface
type InterfaceRedisService interface {
	PeriodLocker
	Ping(ctx context.Context) error
	Close() error
}

// RedisService handles Redis operations
type RedisService struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

// NewRedisServiceWithClient 使用已有客户端创建Redis服务，锁有效期为 ttl
func NewRedisServiceWithClient(client *redis.Client, ttl time.Duration) *RedisService {
	return &RedisService{
		Client: client,
		TTL:    ttl,
		Prefix: "rwportal:lock:",
	}
}

// 1 Acquire 通过 SETNX 获取分布式锁
func (s *RedisService) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.New().String()
	ok, err := s.Client.SetNX(ctx, s.Prefix+key, token, s.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("获取锁失败: %w", err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			// 请求上下文可能已取消，释放使用独立的超时
			rctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, s.Client, []string{s.Prefix + key}, token).Err(); err != nil {
				Logger.Warning("释放锁失败，将在 %s 后过期: key=%s err=%v", s.TTL, s.Prefix+key, err)
			}
		})
	}
	return release, nil
}

// 2 Ping 检查Redis连接
func (s *RedisService) Ping(ctx context.Context) error {
	return s.Client.Ping(ctx).Err()
}

// 3 Close 关闭连接
func (s *RedisService) Close() error {
	return s.Client.Close()
}

// LocalLocker 单进程内的账期锁，未启用Redis时使用
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{held: make(map[string]struct{})}
}

// Acquire 获取进程内锁
func (l *LocalLocker) Acquire(_ context.Context, key string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return nil, ErrLockHeld
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, nil
}
